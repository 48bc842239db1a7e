// Package logging configures log/slog for csv2wiki and defines the canonical
// attribute keys used in log entries.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Canonical log field names.
const (
	KeyRunID    = "run_id"
	KeyTitle    = "title"
	KeySection  = "section"
	KeyRow      = "row"
	KeyCategory = "category"
	KeySearch   = "search"
	KeySource   = "source"
	KeyError    = "error"
)

// Setup builds a logger writing to w and installs it as the slog default.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RunID tags every record of one run.
func RunID(id string) slog.Attr { return slog.String(KeyRunID, id) }

// Title is the wiki page being written or deleted.
func Title(t string) slog.Attr { return slog.String(KeyTitle, t) }

// Section is the section value of an edit ("1", "new", ...).
func Section(s string) slog.Attr { return slog.String(KeySection, s) }

// Row is the row index used in the page title.
func Row(n int) slog.Attr { return slog.Int(KeyRow, n) }

// Category is a category name without the "Category:" prefix.
func Category(c string) slog.Attr { return slog.String(KeyCategory, c) }

// Search is the full-text search string of the delete workflow.
func Search(q string) slog.Attr { return slog.String(KeySearch, q) }

// Source is the path of the input file.
func Source(path string) slog.Attr { return slog.String(KeySource, path) }

// Error records err under KeyError. A nil error gives an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
