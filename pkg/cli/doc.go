// Package cli implements the feedopt command line interface.
package cli
