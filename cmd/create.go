// =============================================================================
// csv2wiki - Create Command
// =============================================================================
//
// This file defines the 'create' command, which imports the configured CSV
// (or XLSX) file into the wiki. `csv2wiki -f config.yaml` is the same as
// `csv2wiki create -f config.yaml`.
//
// COMMAND USAGE:
//   csv2wiki create -f <config> [username password] [flags]
//
// FLAGS:
//   --dry-run     : Log the planned writes without logging in
//
// PROCESSING PIPELINE:
//   1. Load configuration, .env and CSV2WIKI_* variables
//   2. Apply positional credentials
//   3. Validate the configuration
//   4. Log in (skipped for --dry-run)
//   5. Run the converter (parse, transform, validate, write)
//   6. Write the run report and print a summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gtback/ots-tools/internal/converter"
	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/internal/validation"
	"github.com/gtback/ots-tools/pkg/utils"
)

// =============================================================================
// CREATE COMMAND DEFINITION
// =============================================================================

var createCmd = &cobra.Command{
	Use:   "create [username password]",
	Short: "Create one wiki page per CSV row",
	Long: `The create command reads the source file named in the configuration and
writes one page per data row, one section per non-empty cell, a
table-of-contents page, and one page per category.

Credentials come from the configuration, CSV2WIKI_USERNAME and
CSV2WIKI_PASSWORD, or the positional arguments, in increasing priority.`,

	Args: cobra.MaximumNArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			_ = cmd.Usage()
			return errors.New("create requires --file")
		}
		return runCreate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Log the pages that would be written without logging in",
	)
}

// =============================================================================
// CREATE LOGIC
// =============================================================================

// runCreate executes the create workflow.
func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyPositionalCredentials(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.ValidateForCreate(dryRun); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runID := uuid.NewString()
	logger = logger.With(logging.RunID(runID))

	// =========================================================================
	// STEP 2: CONNECT
	// =========================================================================

	var writer converter.PageWriter
	if dryRun {
		logger.Info("Dry run: nothing will be written")
		writer = converter.NewDryRunWriter(logger)
	} else {
		client, err := connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer disconnect(ctx, client, logger)
		writer = client
	}

	// =========================================================================
	// STEP 3: RUN
	// =========================================================================

	result := converter.New(cfg, writer).WithLogger(logger).Run(ctx)

	if v := result.Validation; v != nil && !v.IsValid && cfg.ReportDir != "" {
		if err := utils.EnsureDir(cfg.ReportDir); err == nil {
			path := utils.ReportPath(cfg.ReportDir, "validation", runID)
			if err := validation.WriteErrorLog(v.Errors, path); err != nil {
				logger.Warn("Failed to write validation log", logging.Error(err))
			}
		}
	}

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	stats := result.Stats
	writeReport(cfg, utils.RunSummary{
		RunID:     runID,
		Action:    "create",
		Target:    cfg.Source.File,
		Wiki:      wikiLabel(cfg),
		DryRun:    dryRun,
		StartTime: startTime,
		EndTime:   time.Now(),
		Counts: []utils.Count{
			{Label: "Rows", Value: stats.RowsProcessed},
			{Label: "Pages", Value: stats.PagesWritten},
			{Label: "Sections", Value: stats.SectionsWritten},
			{Label: "Fallback sections", Value: stats.FallbackSections},
			{Label: "Categories", Value: stats.CategoriesCreated},
			{Label: "Validation warnings", Value: stats.ValidationWarnings},
		},
		Titles: result.Written,
		Error:  result.Error,
	}, logger)

	if result.Error != nil {
		return result.Error
	}

	verb := "Created"
	if dryRun {
		verb = "Would create"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d pages (%d sections, %d fallbacks) and %d categories in %s\n",
		verb,
		stats.PagesWritten,
		stats.SectionsWritten,
		stats.FallbackSections,
		stats.CategoriesCreated,
		stats.ProcessingTime.Round(time.Millisecond))
	return nil
}
