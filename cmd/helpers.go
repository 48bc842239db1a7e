package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gtback/ots-tools/internal/config"
	"github.com/gtback/ots-tools/internal/logging"
	"github.com/gtback/ots-tools/internal/mediawiki"
	"github.com/gtback/ots-tools/pkg/utils"
)

// loadConfig reads --file (or the defaults when it is empty), then the
// .env file and CSV2WIKI_* variables. Positional credentials are applied by
// the caller. The logger is rebuilt from the config unless flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	format := cfg.Logging.Format
	if cmd.Root().PersistentFlags().Changed("log-format") {
		format = logFormat
	}
	logger := logging.Setup(level, format, cmd.ErrOrStderr())

	return cfg, logger, nil
}

// applyPositionalCredentials handles the optional trailing
// "username password" arguments.
func applyPositionalCredentials(cmd *cobra.Command, cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 2:
		cfg.SetCredentials(args[0], args[1])
		return nil
	default:
		_ = cmd.Usage()
		return fmt.Errorf("expected <username> <password>, got %d argument(s)", len(args))
	}
}

// connect builds a client for the configured wiki and logs in.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mediawiki.Client, error) {
	apiURL, err := mediawiki.APIURL(cfg.Wiki.Scheme, cfg.Wiki.Site, cfg.Wiki.Path)
	if err != nil {
		return nil, err
	}

	client, err := mediawiki.New(apiURL, mediawiki.Options{
		UserAgent: cfg.Wiki.UserAgent,
		Timeout:   cfg.Wiki.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Logging in", slog.String("wiki", apiURL), slog.String("user", cfg.Wiki.Username))
	if err := client.Login(ctx, cfg.Wiki.Username, cfg.Wiki.Password); err != nil {
		return nil, fmt.Errorf("failed to log in to %s: %w", apiURL, err)
	}
	return client, nil
}

// disconnect logs out even when ctx has been cancelled.
func disconnect(ctx context.Context, client *mediawiki.Client, logger *slog.Logger) {
	if err := client.Logout(context.WithoutCancel(ctx)); err != nil {
		logger.Debug("Logout failed", logging.Error(err))
	}
}

// writeReport writes the run summary when report_dir is set. A report that
// cannot be written is logged, not returned: the wiki work already happened.
func writeReport(cfg *config.Config, summary utils.RunSummary, logger *slog.Logger) {
	if cfg.ReportDir == "" {
		return
	}
	path, err := utils.WriteSummaryLog(summary, cfg.ReportDir)
	if err != nil {
		logger.Warn("Failed to write run report", logging.Error(err))
		return
	}
	logger.Info("Wrote run report", slog.String("path", path))
}

func wikiLabel(cfg *config.Config) string {
	if u, err := mediawiki.APIURL(cfg.Wiki.Scheme, cfg.Wiki.Site, cfg.Wiki.Path); err == nil {
		return u
	}
	return cfg.Wiki.Site
}
