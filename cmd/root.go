// =============================================================================
// csv2wiki - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command
// keeps the short forms of the two workflows so existing scripts work:
//
//   csv2wiki -f config.yaml [username password]     create pages
//   csv2wiki -d "Proposal " username password        delete matching pages
//
// COBRA CLI STRUCTURE:
//   rootCmd (csv2wiki)
//   ├── createCmd (csv2wiki create)
//   ├── deleteCmd (csv2wiki delete)
//   └── versionCmd (csv2wiki version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--file, --verbose, --log-format, --env-file)
//   2. Setting up logging before any command runs
//   3. Dispatching the -f / -d short forms
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gtback/ots-tools/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the YAML configuration file (-f/--file).
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat selects the log handler: "text" or "json".
var logFormat string

// envFile is the .env file loaded before reading CSV2WIKI_* variables.
var envFile string

// dryRun builds and logs the plan without logging in or writing.
var dryRun bool

// deleteSearch is the value of the root -d/--delete flag.
var deleteSearch string

// errMissingCredentials is returned when -d is used without both positional
// credentials.
var errMissingCredentials = errors.New("delete requires <search> <username> <password>")

// errDryRunDelete is returned for -d combined with --dry-run; deletion has no
// dry run.
var errDryRunDelete = errors.New("--dry-run cannot be combined with --delete")

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csv2wiki [-f config.yaml | -d search] [username password]",
	Short: "csv2wiki - Turn the rows of a CSV file into MediaWiki pages",
	Long: `csv2wiki creates one MediaWiki page per row of a CSV (or XLSX) file and
removes them again with a search-driven delete.

For every data row a page "Proposal_<n>: <first cell>" is created. Each
further cell becomes a section named after its column header, and the last
cell also files the page in a category. A table-of-contents page and one
page per category are written at the end.

Example Usage:
  csv2wiki -f config.yaml                      # create pages
  csv2wiki -f config.yaml admin secret         # create with explicit credentials
  csv2wiki -d "Proposal " admin secret         # delete matching pages
  csv2wiki create -f config.yaml --dry-run     # log the plan, write nothing
  csv2wiki delete --search "Proposal " -f config.yaml`,

	Args: cobra.MaximumNArgs(2),

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		logging.Setup(level, logFormat, cmd.ErrOrStderr())
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case cmd.Flags().Changed("delete"):
			if dryRun {
				_ = cmd.Usage()
				return errDryRunDelete
			}
			if len(args) < 2 {
				_ = cmd.Usage()
				return errMissingCredentials
			}
			return runDelete(cmd, deleteSearch, args)
		case cfgFile != "":
			return runCreate(cmd, args)
		default:
			return cmd.Help()
		}
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with status 1 on error.
// An interrupt cancels the run between API calls.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVarP(
		&cfgFile,
		"file",
		"f",
		"",
		"Path to the YAML configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"text",
		"Log format: text or json",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"File with CSV2WIKI_* variables; ignored when missing",
	)

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================

	rootCmd.Flags().StringVarP(
		&deleteSearch,
		"delete",
		"d",
		"",
		"Delete pages matching this search string (requires username and password)",
	)

	rootCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Log the pages that would be written without logging in",
	)
}
