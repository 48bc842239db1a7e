// =============================================================================
// csv2wiki - Converter Module
// =============================================================================
//
// This module contains the create workflow. It orchestrates the whole import
// for one input file, from parsing to the last category page.
//
// CONVERSION PIPELINE:
//   1. Parse the input file (CSV or XLSX) into a table
//   2. Apply transformation rules to each cell
//   3. Validate the transformed table
//   4. Build the write plan (pages, TOC, categories)
//   5. Write one page per data row, one edit per non-empty cell
//   6. Write the table-of-contents page
//   7. Write one empty page per distinct category
//
// SECTION WRITES:
//   The N-th non-empty section of a page is saved as section N, heading
//   included, so a re-run replaces sections in place. When the wiki rejects
//   the section number (a new page has no sections yet) the content is
//   appended once as a new section. Every other failure ends the run.
//
// CONCURRENCY:
//   Writes are sequential: one API round trip per section. The run stops
//   between writes when the context is cancelled.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gtback/ots-tools/internal/config"
	"github.com/gtback/ots-tools/internal/csvparser"
	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/internal/mediawiki"
	"github.com/gtback/ots-tools/internal/types"
	"github.com/gtback/ots-tools/internal/validation"
	"github.com/gtback/ots-tools/internal/wikitext"
	"github.com/gtback/ots-tools/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one create run.
type Result struct {
	// Source is the path to the input file.
	Source string

	// Success indicates whether every write succeeded.
	Success bool

	// Error contains the error if the run failed.
	Error error

	// Validation holds the findings for the table, if it got that far.
	Validation *validation.ValidationResult

	// Plan is the write plan, if it got that far.
	Plan *Plan

	// Written lists the titles saved, in write order. On failure it shows
	// how far the run got.
	Written []string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows read.
	RowsProcessed int

	// PagesWritten counts row pages, not the TOC or category pages.
	PagesWritten int

	// SectionsWritten counts section writes, fallbacks included.
	SectionsWritten int

	// FallbackSections counts sections appended after an indexed edit failed.
	FallbackSections int

	// CategoriesCreated is the number of category pages saved.
	CategoriesCreated int

	// ValidationWarnings is the number of non-fatal validation findings.
	ValidationWarnings int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// PageWriter saves page content. *mediawiki.Client implements it, and so
// does DryRunWriter.
type PageWriter interface {
	Edit(ctx context.Context, req mediawiki.EditRequest) error
}

// Converter runs the create workflow for one configuration.
type Converter struct {
	cfg    *config.Config
	writer PageWriter
	logger *slog.Logger
}

// New creates a new Converter.
//
// PARAMETERS:
//   - cfg: The loaded and validated configuration.
//   - writer: Where pages are saved.
//
// RETURNS:
//   - A new Converter that logs to slog.Default().
func New(cfg *config.Config, writer PageWriter) *Converter {
	return &Converter{
		cfg:    cfg,
		writer: writer,
		logger: slog.Default(),
	}
}

// WithLogger replaces the logger.
func (c *Converter) WithLogger(logger *slog.Logger) *Converter {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the create pipeline.
//
// RETURNS:
//   - A Result struct containing the outcome of the run.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{
		Source:  c.cfg.Source.File,
		Success: false,
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	c.logger.Info("Reading source", logging.Source(c.cfg.Source.File))

	table, err := LoadTable(c.cfg.Source, c.cfg.SourceFormat())
	if err != nil {
		result.Error = fmt.Errorf("failed to read source: %w", err)
		return result
	}

	result.Stats.RowsProcessed = len(table.Rows)
	c.logger.Debug("Parsed source", slog.Int("rows", len(table.Rows)), slog.Int("columns", len(table.Headers)))

	// =========================================================================
	// STEP 2: APPLY TRANSFORMATION RULES
	// =========================================================================

	transformer, err := NewTransformer(c.cfg.Transformations)
	if err != nil {
		result.Error = fmt.Errorf("failed to load transformations: %w", err)
		return result
	}
	table = transformer.TransformTable(table)

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	findings := validation.Validate(table, validation.ValidationOptions{
		TitlePrefix:           c.cfg.Pages.TitlePrefix,
		TreatWarningsAsErrors: c.cfg.Validation.WarningsAsErrors,
	})
	result.Validation = findings
	result.Stats.ValidationWarnings = findings.WarningCount

	for _, w := range findings.Warnings() {
		c.logger.Warn("Validation warning", slog.Int("line", w.Line), slog.String("rule", w.Rule), slog.String("message", w.Message))
	}
	if !findings.IsValid {
		for _, e := range findings.Fatal() {
			c.logger.Error("Validation error", slog.Int("line", e.Line), slog.String("rule", e.Rule), slog.String("message", e.Message))
		}
		result.Error = fmt.Errorf("validation failed with %d error(s)", findings.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 4: BUILD PLAN
	// =========================================================================

	plan := BuildPlan(table, c.cfg.Pages.TitlePrefix, c.cfg.Pages.TOCPage)
	result.Plan = plan
	c.logger.Debug("Built plan",
		slog.Int("pages", len(plan.Pages)),
		slog.Int("sections", plan.SectionCount()),
		slog.Int("categories", len(plan.Categories)))

	// =========================================================================
	// STEP 5: WRITE PAGES
	// =========================================================================

	for _, page := range plan.Pages {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Errorf("run cancelled: %w", err)
			return result
		}
		if err := c.writePage(ctx, page, &result.Stats); err != nil {
			result.Error = err
			return result
		}
		result.Written = append(result.Written, page.Title)
		result.Stats.PagesWritten++
	}

	// =========================================================================
	// STEP 6: WRITE TABLE OF CONTENTS
	// =========================================================================

	c.logger.Info("Creating table of contents", logging.Title(plan.TOCTitle), slog.Int("entries", len(plan.Pages)))

	if err := c.save(ctx, plan.TOCTitle, plan.TOCText); err != nil {
		result.Error = fmt.Errorf("failed to save table of contents: %w", err)
		return result
	}
	result.Written = append(result.Written, plan.TOCTitle)

	// =========================================================================
	// STEP 7: WRITE CATEGORY PAGES
	// =========================================================================

	for _, category := range plan.Categories {
		title := wikitext.CategoryTitle(category)
		c.logger.Info("Creating category page", logging.Category(category))

		if err := c.save(ctx, title, ""); err != nil {
			result.Error = fmt.Errorf("failed to save category page: %w", err)
			return result
		}
		result.Written = append(result.Written, title)
		result.Stats.CategoriesCreated++
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LoadTable reads the configured source with the row source for format.
func LoadTable(source config.SourceConfig, format string) (*types.Table, error) {
	switch format {
	case config.FormatXLSX:
		return xlsxparser.Parse(source.File, source)
	case config.FormatCSV, "":
		return csvparser.Parse(source.File, source)
	default:
		return nil, fmt.Errorf("unsupported source format %q", format)
	}
}

// writePage saves every section of a page. Only an *mediawiki.APIError on the
// indexed edit triggers the new-section fallback; the fallback itself is
// tried once.
func (c *Converter) writePage(ctx context.Context, page Page, stats *ProcessingStats) error {
	c.logger.Info("Creating page", logging.Title(page.Title), logging.Row(page.Row))

	if len(page.Sections) == 0 {
		if err := c.save(ctx, page.Title, ""); err != nil {
			return fmt.Errorf("failed to save page %q: %w", page.Title, err)
		}
		return nil
	}

	for _, section := range page.Sections {
		err := c.writer.Edit(ctx, mediawiki.EditRequest{
			Title:   page.Title,
			Text:    section.Text(),
			Section: strconv.Itoa(section.Index),
			Summary: c.cfg.Pages.Summary,
		})

		var apiErr *mediawiki.APIError
		if errors.As(err, &apiErr) {
			c.logger.Debug("Section edit rejected, appending as new section",
				logging.Title(page.Title),
				logging.Section(section.Header),
				slog.String("code", apiErr.Code))

			err = c.writer.Edit(ctx, mediawiki.EditRequest{
				Title:        page.Title,
				Text:         section.Body,
				Section:      mediawiki.SectionNew,
				SectionTitle: section.Header,
				Summary:      c.cfg.Pages.Summary,
			})
			if err != nil {
				return fmt.Errorf("failed to append section %q to %q: %w", section.Header, page.Title, err)
			}
			stats.FallbackSections++
		} else if err != nil {
			return fmt.Errorf("failed to save section %q of %q: %w", section.Header, page.Title, err)
		}

		stats.SectionsWritten++
	}

	return nil
}

func (c *Converter) save(ctx context.Context, title, text string) error {
	return c.writer.Edit(ctx, mediawiki.EditRequest{
		Title:   title,
		Text:    text,
		Summary: c.cfg.Pages.Summary,
	})
}
