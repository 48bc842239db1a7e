// =============================================================================
// csv2wiki - Main Entry Point
// =============================================================================
//
// csv2wiki turns the rows of a CSV file into MediaWiki pages, and removes
// them again.
//
// USAGE:
//   csv2wiki -f config.yaml [username password]   - Create pages
//   csv2wiki -d <search> <username> <password>    - Delete matching pages
//   csv2wiki version                              - Display the version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, validation, wiki client and workflows
//   - pkg/           : Run report utilities
//
// =============================================================================

package main

import (
	"github.com/gtback/ots-tools/cmd"
)

func main() {
	cmd.Execute()
}
