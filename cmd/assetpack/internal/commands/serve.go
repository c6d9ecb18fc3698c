package commands

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetpack/internal/assets"
	"github.com/wolfeidau/assetpack/internal/buildconfig"
	httpmiddleware "github.com/wolfeidau/assetpack/internal/http"
	"github.com/wolfeidau/assetpack/internal/logger"
	"golang.org/x/sync/errgroup"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{range .Stylesheets}}<link rel="stylesheet" href="{{.}}">
{{end}}</head>
<body>
<div id="root"></div>
{{range .Scripts}}<script type="module" src="{{.}}"></script>
{{end}}</body>
</html>
`

type ServeCmd struct {
	Assets   AssetFlags    `embed:""`
	Listen   string        `help:"HTTP server listen address" default:"localhost:8080" env:"ASSETPACK_LISTEN"`
	Template string        `help:"page template, a built in page is used when empty" default:"" env:"ASSETPACK_TEMPLATE"`
	Title    string        `help:"page title" default:"Application"`
	Bundle   string        `help:"bundle rendered by the page" default:"application"`
	Debounce time.Duration `help:"quiet period before rebuilding" default:"200ms" env:"ASSETPACK_DEBOUNCE"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Msg("Starting server")

	defer startTelemetry(ctx, globals)()

	pipeline, err := c.pipeline()
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}
	defer closePipeline(pipeline)

	if err := pipeline.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	mux, err := c.routes(pipeline)
	if err != nil {
		return err
	}

	w, err := newWatcher(c.Assets, c.Debounce, pipeline)
	if err != nil {
		return err
	}

	srv := configureHTTPServer(c.Listen, httpmiddleware.AccessLog(log.Logger)(httpmiddleware.NoStore()(mux)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx)
	})
	g.Go(func() error {
		log.Info().Str("listen", c.Listen).Msg("Listening for HTTP connections")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (c *ServeCmd) pipeline() (*assets.Pipeline, error) {
	if c.Template != "" {
		return assets.NewWithTemplate(c.Assets.Config(), buildconfig.Base(), c.Template, nil)
	}

	tmpl, err := template.New("index.html").Funcs(assets.TemplateFuncs(nil)).Parse(indexTemplate)
	if err != nil {
		return nil, err
	}
	return newPipeline(c.Assets, assets.WithTemplate(tmpl))
}

func (c *ServeCmd) routes(pipeline *assets.Pipeline) (*http.ServeMux, error) {
	templateName := "index.html"
	if c.Template != "" {
		templateName = filepath.Base(c.Template)
	}

	page, err := pipeline.Handler(templateName, c.Title, c.Bundle, nil)
	if err != nil {
		return nil, err
	}

	outputDir := c.Assets.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(c.Assets.ProjectDir, outputDir)
	}
	prefix := "/" + filepath.ToSlash(filepath.Clean(c.Assets.OutputDir)) + "/"

	mux := http.NewServeMux()

	// Serve built assets
	mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(outputDir))))
	mux.HandleFunc("/", page)

	return mux, nil
}
