// Package main is the entry point for the csvflow CLI application.
// It sends CSV files to a processing service and renders the results.
package main

import (
	"csvflow/cli/cmd"
)

// main is the entry point for the csvflow CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
