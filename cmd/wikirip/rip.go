package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikirip/internal/config"
	"github.com/nao1215/wikirip/internal/crawler"
	"github.com/nao1215/wikirip/internal/database"
	"github.com/nao1215/wikirip/internal/fetch"
	applog "github.com/nao1215/wikirip/internal/log"
	"github.com/nao1215/wikirip/internal/mirror"
	"github.com/nao1215/wikirip/internal/model"
	"github.com/nao1215/wikirip/internal/report"
)

// NewRipCmd creates the rip command.
func NewRipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rip",
		Short: "Mirror a site starting from one page",
		Long: `Rip downloads the starting page, follows every site-relative link it
finds, and repeats round by round until no new page turns up. Every image
referenced along the way is downloaded afterwards.

The output directory is deleted and recreated first. Pages or images that
cannot be fetched are skipped and listed in the report; they do not make
the command fail.

Examples:
  # Mirror a wiki into ./ripped
  wikirip rip --root https://wiki.example.org --starting-page /wiki/Main_Page

  # Use another directory and fewer parallel requests
  wikirip rip -r https://wiki.example.org -s /wiki/Main_Page -o mirror -n 4

  # Write a Markdown report to a file
  wikirip rip -r https://wiki.example.org -s /wiki/Main_Page -m --report-file rip.md`,
		Args: cobra.NoArgs,
		RunE: runRipCmd,
	}

	cmd.Flags().StringP("root", "r", "",
		"Root URL of the site, e.g. https://wiki.example.org (required)")
	cmd.Flags().StringP("starting-page", "s", "",
		"Suffix of the first page, e.g. /wiki/Main_Page (required)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Mirror directory (deleted and recreated on every run)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for a single request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of simultaneous requests")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Largest response body accepted, in bytes")
	cmd.Flags().StringP("config", "c", "",
		"Path to a .wikirip configuration file")
	cmd.Flags().BoolP("json", "j", false,
		"Output the report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report in Markdown format")
	cmd.Flags().String("report-file", "",
		"Write the report to this file instead of stdout")
	cmd.Flags().Bool("no-history", false,
		"Do not store this rip in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	_ = cmd.MarkFlagRequired("root")          //nolint:errcheck // flag is defined above
	_ = cmd.MarkFlagRequired("starting-page") //nolint:errcheck // flag is defined above

	return cmd
}

// runRipCmd executes the rip command.
func runRipCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.LogJSON {
		logger = applog.NewJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing in-flight requests")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runRip(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getGlobalFlag retrieves a persistent bool flag from the command or its parent.
func getGlobalFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// buildConfig creates a Config from flags and the optional config file.
// Values from the file replace defaults; flags set on the command line
// replace both.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	if cfg.Root, err = flags.GetString("root"); err != nil {
		return nil, err
	}
	if cfg.StartPage, err = flags.GetString("starting-page"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplySite(file.GetSiteConfig(cfg.Root))
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}

	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory
	cfg.Verbose = getGlobalFlag(cmd, "verbose")
	cfg.LogJSON = getGlobalFlag(cmd, "log-json")

	return cfg, nil
}

// runRip mirrors the site described by cfg. The report goes to out (or
// cfg.ReportFile) and the one-line summary to errOut.
func runRip(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	root, err := fetch.ParseRoot(cfg.Root)
	if err != nil {
		return fmt.Errorf("invalid root URL: %w", err)
	}

	m, err := mirror.New(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := m.Reset(); err != nil {
		return err
	}

	fetcher, err := fetch.New(root, m,
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)
	if err != nil {
		return err
	}

	spider := crawler.NewSpider(fetcher,
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithLogger(logger),
	)

	ripReport := model.NewRipReport(root.Redacted(), cfg.StartPage, m.Root())

	logger.Info("starting rip",
		"root", root,
		"startPage", cfg.StartPage,
		"output", m.Root(),
		"concurrency", cfg.Concurrency,
	)

	ripErr := spider.Rip(ctx, ripReport)
	if ripErr != nil && !errors.Is(ripErr, context.Canceled) && !errors.Is(ripErr, context.DeadlineExceeded) {
		return fmt.Errorf("rip failed: %w", ripErr)
	}

	if cfg.SaveHistory {
		// The history entry is written even when the rip was cancelled.
		if err := saveRipReport(context.WithoutCancel(ctx), cfg.DBDir, ripReport, logger); err != nil {
			logger.Warn("failed to save rip history", "error", err)
		}
	}

	if err := outputReport(cfg, ripReport, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(errOut, "%s: %d pages and %d resources saved to %s, %d skipped\n",
		ripReport.Status(),
		ripReport.PagesSaved,
		ripReport.ResourcesSaved,
		ripReport.OutputDir,
		ripReport.FailureCount(),
	)

	if ripErr != nil {
		return fmt.Errorf("rip cancelled: %w", ripErr)
	}
	return nil
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, ripReport *model.RipReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	if format := report.FormatFor(cfg.JSONReport, cfg.MarkdownReport); format == report.FormatText {
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	} else {
		writer = report.New(output, format)
	}

	_, err := writer.Write(ripReport)
	return err
}

// saveRipReport stores the report in the history database in dbDir.
func saveRipReport(ctx context.Context, dbDir string, ripReport *model.RipReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRipReport(ctx, ripReport)
	if err != nil {
		return err
	}

	logger.Info("rip saved to history", "id", id, "db", db.Path())
	return nil
}
