package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-flow/internal/config"
	"github.com/nguyentantai21042004/media-flow/internal/credentials"
	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/summarizer"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   logger.Logger
	executor executor.Executor
	jobs     job.Manager
}

func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return nil, err
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(path, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	exec := executor.New()

	return &app{
		cfg:      cfg,
		logger:   log,
		executor: exec,
		jobs: job.New(
			cfg,
			exec,
			summarizer.New(cfg.Gemini.Model, log),
			credentials.New(cfg.Gemini),
			log,
		),
	}, nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Output,
		cfg.Paths.Temp,
		cfg.Paths.Uploads,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (a *app) banner(ctx context.Context, title string) {
	a.logger.Info(ctx, "========================================")
	a.logger.Info(ctx, "%s", title)
	a.logger.Info(ctx, "Output: %s", a.cfg.Paths.Output)
	a.logger.Info(ctx, "Max concurrent jobs: %d", a.cfg.Performance.MaxConcurrent)
	a.logger.Info(ctx, "========================================")
}
