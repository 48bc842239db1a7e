package converter

import (
	"context"
	"log/slog"

	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/internal/mediawiki"
)

// DryRunWriter logs and records edits instead of sending them.
// Every edit succeeds, so a dry run never takes the section fallback.
type DryRunWriter struct {
	logger *slog.Logger
	Edits  []mediawiki.EditRequest
}

// NewDryRunWriter returns a DryRunWriter logging to logger, or to
// slog.Default() when logger is nil.
func NewDryRunWriter(logger *slog.Logger) *DryRunWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunWriter{logger: logger}
}

// Edit implements PageWriter.
func (w *DryRunWriter) Edit(ctx context.Context, req mediawiki.EditRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.Edits = append(w.Edits, req)

	section := req.Section
	if section == "" {
		section = "page"
	}
	w.logger.Info("Dry run: would edit",
		logging.Title(req.Title),
		logging.Section(section),
		slog.Int("bytes", len(req.Text)))
	return nil
}
