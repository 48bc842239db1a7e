// =============================================================================
// csv2wiki - Delete Command
// =============================================================================
//
// This file defines the 'delete' command, which removes every page a wiki
// full-text search returns. `csv2wiki -d <search> <user> <pass>` is the same
// as `csv2wiki delete --search <search> <user> <pass>`.
//
// COMMAND USAGE:
//   csv2wiki delete [--search <text>] [-f config] [username password]
//
// There is no confirmation and no dry run.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gtback/ots-tools/internal/cleanup"
	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/pkg/utils"
)

// searchFlag is the --search value of the delete command.
var searchFlag string

var deleteCmd = &cobra.Command{
	Use:   "delete [username password]",
	Short: "Delete every page matching a search string",
	Long: `The delete command runs a full-text search against the wiki and deletes
every page it returns. The search defaults to pages.delete_search from the
configuration ("Proposal "). The site comes from --file when given, otherwise
localhost/mediawiki.`,

	Args: cobra.MaximumNArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, searchFlag, args)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(
		&searchFlag,
		"search",
		"",
		"Search string (default: pages.delete_search)",
	)
}

// runDelete executes the delete workflow. An empty search falls back to the
// configured default.
func runDelete(cmd *cobra.Command, search string, args []string) error {
	ctx := cmd.Context()
	startTime := time.Now()

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyPositionalCredentials(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.ValidateForDelete(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if search == "" {
		search = cfg.Pages.DeleteSearch
	}

	runID := uuid.NewString()
	logger = logger.With(logging.RunID(runID))

	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer disconnect(ctx, client, logger)

	result := cleanup.Run(ctx, client, search, cfg.Pages.DeleteReason, logger)

	writeReport(cfg, utils.RunSummary{
		RunID:     runID,
		Action:    "delete",
		Target:    search,
		Wiki:      wikiLabel(cfg),
		StartTime: startTime,
		EndTime:   time.Now(),
		Counts: []utils.Count{
			{Label: "Matched", Value: len(result.Matched)},
			{Label: "Deleted", Value: len(result.Deleted)},
		},
		Titles: result.Deleted,
		Error:  result.Error,
	}, logger)

	if result.Error != nil {
		return result.Error
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d pages matching %q\n", len(result.Deleted), search)
	return nil
}
