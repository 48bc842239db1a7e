// =============================================================================
// csv2wiki - Cleanup Module
// =============================================================================
//
// This module contains the delete workflow: run a full-text search against
// the wiki and delete every page it returns. There is no confirmation and no
// filtering beyond the search itself.
//
// PIPELINE:
//   1. Search, following continuation until every hit is collected
//   2. Delete each hit in result order
//
// All titles are collected before the first delete, so removing pages cannot
// shift later result pages. A failed delete ends the run.
//
// =============================================================================

package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/internal/mediawiki"
)

// PageRemover finds and deletes pages. *mediawiki.Client implements it.
type PageRemover interface {
	Search(ctx context.Context, query string) ([]mediawiki.SearchResult, error)
	Delete(ctx context.Context, title, reason string) error
}

// Result represents the outcome of one delete run.
type Result struct {
	Search  string
	Success bool
	Error   error

	// Matched lists every title the search returned.
	Matched []string

	// Deleted lists the titles removed, in order. On failure it shows how
	// far the run got.
	Deleted []string

	ProcessingTime time.Duration
}

// Run deletes every page matching search.
//
// PARAMETERS:
//   - ctx: Cancels the run between API calls.
//   - remover: The logged-in wiki client.
//   - search: The full-text search string ("Proposal ").
//   - reason: The deletion reason recorded in the wiki log.
//   - logger: Progress logger; nil means slog.Default().
//
// RETURNS:
//   - A Result describing what was matched and deleted.
func Run(ctx context.Context, remover PageRemover, search, reason string, logger *slog.Logger) (result Result) {
	if logger == nil {
		logger = slog.Default()
	}
	startTime := time.Now()
	result = Result{Search: search}
	defer func() {
		result.ProcessingTime = time.Since(startTime)
	}()

	logger.Info("Searching for pages", logging.Search(search))

	hits, err := remover.Search(ctx, search)
	if err != nil {
		result.Error = fmt.Errorf("failed to search wiki: %w", err)
		return result
	}

	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if seen[hit.Title] {
			continue
		}
		seen[hit.Title] = true
		result.Matched = append(result.Matched, hit.Title)
	}
	logger.Info("Search complete", logging.Search(search), slog.Int("matches", len(result.Matched)))

	for _, title := range result.Matched {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Errorf("run cancelled: %w", err)
			return result
		}

		logger.Info("Deleting page", logging.Title(title))
		if err := remover.Delete(ctx, title, reason); err != nil {
			result.Error = fmt.Errorf("failed to delete %q: %w", title, err)
			return result
		}
		result.Deleted = append(result.Deleted, title)
	}

	result.Success = true
	return result
}
