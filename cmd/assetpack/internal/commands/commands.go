package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetpack/internal/assets"
	"github.com/wolfeidau/assetpack/internal/buildconfig"
	"github.com/wolfeidau/assetpack/internal/telemetry"
)

type Globals struct {
	Debug     bool
	Telemetry bool
	Version   string
}

// startTelemetry initializes exporters when enabled and returns the function
// flushing them on exit.
func startTelemetry(ctx context.Context, globals *Globals) func() {
	if !globals.Telemetry {
		return func() {}
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName: "assetpack",
		Version:     globals.Version,
		Traces:      true,
		Metrics:     true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// AssetFlags configures the asset pipeline.
type AssetFlags struct {
	ProjectDir   string `help:"project root" default:"." env:"ASSETPACK_PROJECT_DIR"`
	OutputDir    string `help:"output directory relative to the project root" default:"public" env:"ASSETPACK_OUTPUT_DIR"`
	Metafile     string `help:"metafile path relative to the project root" default:"public/meta.json" env:"ASSETPACK_METAFILE"`
	Minify       bool   `help:"minify output" default:"true" negatable:"" env:"ASSETPACK_MINIFY"`
	SourceMap    bool   `help:"emit linked source maps" default:"true" negatable:"" env:"ASSETPACK_SOURCEMAP"`
	SassCompiler string `help:"sass compiler (embedded or cli)" default:"embedded" enum:"embedded,cli" env:"ASSETPACK_SASS_COMPILER"`
	SassBinary   string `help:"dart sass executable" default:"sass" env:"ASSETPACK_SASS_BINARY"`
}

func (f AssetFlags) Config() assets.Config {
	return assets.Config{
		ProjectDir:   f.ProjectDir,
		OutputDir:    f.OutputDir,
		MetafilePath: f.Metafile,
		Minify:       f.Minify,
		SourceMap:    f.SourceMap,
		SassCompiler: f.SassCompiler,
		SassBinary:   f.SassBinary,
	}
}

func newPipeline(flags AssetFlags, opts ...assets.Option) (*assets.Pipeline, error) {
	return assets.New(flags.Config(), buildconfig.Base(), opts...)
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
