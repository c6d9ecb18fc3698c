package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetpack/internal/assets"
	"github.com/wolfeidau/assetpack/internal/logger"
	"github.com/wolfeidau/assetpack/internal/watch"
)

type BuildCmd struct {
	Assets AssetFlags `embed:""`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Msg("Starting build")

	defer startTelemetry(ctx, globals)()

	pipeline, err := newPipeline(c.Assets)
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}
	defer closePipeline(pipeline)

	if err := pipeline.Build(ctx); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	return nil
}

type WatchCmd struct {
	Assets   AssetFlags    `embed:""`
	Debounce time.Duration `help:"quiet period before rebuilding" default:"200ms" env:"ASSETPACK_DEBOUNCE"`
}

func (c *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Msg("Starting watch")

	defer startTelemetry(ctx, globals)()

	pipeline, err := newPipeline(c.Assets)
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}
	defer closePipeline(pipeline)

	if err := pipeline.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	w, err := newWatcher(c.Assets, c.Debounce, pipeline)
	if err != nil {
		return err
	}

	return w.Run(ctx)
}

func newWatcher(flags AssetFlags, debounce time.Duration, pipeline *assets.Pipeline) (*watch.Watcher, error) {
	root, err := filepath.Abs(flags.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir: %w", err)
	}

	return &watch.Watcher{
		Root:     root,
		Ignore:   []string{"node_modules", flags.OutputDir},
		Debounce: debounce,
		OnChange: pipeline.Rebuild,
		Logger:   log.Logger,
	}, nil
}

func closePipeline(pipeline *assets.Pipeline) {
	if err := pipeline.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close assets pipeline")
	}
}
