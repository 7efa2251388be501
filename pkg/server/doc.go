// Package server exposes ration optimization over HTTP: a POST /v1/rations
// endpoint backed by an ingredient library loaded at startup, plus health,
// readiness, and Prometheus metrics endpoints.
package server
