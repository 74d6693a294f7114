package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/assemblygo/internal/ctxlog"
	"github.com/specialistvlad/assemblygo/internal/manifest"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *manifest.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded,
// resolved manifest model.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	loader := manifest.NewLoader()
	model, err := loader.Load(ctx, cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded and resolved.",
		"blueprints", len(model.Blueprints))

	return &App{
		outW:   outW,
		logger: logger,
		model:  model,
	}, nil
}

// Model returns the loaded manifest model. This is primarily for testing.
func (a *App) Model() *manifest.Model {
	return a.model
}
