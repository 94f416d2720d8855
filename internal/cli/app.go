package cli

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/config"
	"github.com/artkeep/artkeep/internal/currency"
	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/format"
	"github.com/artkeep/artkeep/internal/model"
)

// App bundles the wired-up application for a single command run.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Dataset   *dataset.Dataset
	Currency  *currency.Currency
	Model     *model.Model
	Formatter *format.Formatter
}

// openApp loads the configuration, restores the dataset and wires the
// domain objects. Every command run gets a fresh run ID for log
// correlation.
func openApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler).With("run_id", uuid.NewString())

	ds := dataset.New(logger, cfg.DataFolder)
	if err := ds.Restore(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to restore the dataset", err)
	}

	cur, err := currency.New(logger, ds, cfg.Currencies)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up currencies", err)
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Dataset:   ds,
		Currency:  cur,
		Model:     model.New(logger, ds, cur),
		Formatter: format.New(cfg.Languages),
	}, nil
}

// Persist flushes the dataset to disk.
func (a *App) Persist() error {
	if err := a.Model.Persist(); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist the dataset", err)
	}
	return nil
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
