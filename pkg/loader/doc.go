// Package loader reads the run's external inputs: the herd and ingredient
// CSV tables and the YAML run configuration.
package loader
