// =============================================================================
// rcli - Main Entry Point
// =============================================================================
//
// USAGE:
//   rcli csv       - Convert a CSV or XLSX file to JSON, YAML or TOML
//   rcli genpass   - Generate a random password with a strength score
//   rcli serve     - Serve both over HTTP
//   rcli version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, encoding, generation, config, HTTP API
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"os"

	"github.com/ginjaninja78/rcli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
