// Package serializer provides format-aware reading and writing of feedopt
// inputs and results.
//
// Writers emit JSON, YAML, or a flattened table view to a file or stdout;
// readers deserialize JSON or YAML run configurations. See types.go for the
// Serializer interface consumed by the CLI.
package serializer
