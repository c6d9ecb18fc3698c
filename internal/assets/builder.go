package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetpack/internal/buildconfig"
	"github.com/wolfeidau/assetpack/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrNotBuilt           = errors.New("assets not built yet, call Build() first")
	ErrEntryPointNotFound = errors.New("entrypoint not found in metadata")
)

// BuildError carries the messages of a failed build.
type BuildError struct {
	Messages []api.Message
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 0 {
		return "esbuild failed"
	}
	first := formatMessage(e.Messages[0])
	if len(e.Messages) == 1 {
		return "esbuild failed: " + first
	}
	return fmt.Sprintf("esbuild failed with %d errors: %s", len(e.Messages), first)
}

func formatMessage(msg api.Message) string {
	text := msg.Text
	if msg.PluginName != "" {
		text = "[plugin " + msg.PluginName + "] " + text
	}
	if msg.Location != nil {
		return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, text)
	}
	return text
}

// Build validates the build configuration, runs esbuild with it and emits the
// output files and metafile.
//
// On failure the previous metadata is kept when the configuration registers a
// NoErrorsPlugin and dropped otherwise. With FailFast only the first error is
// reported.
func (p *Pipeline) Build(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "assets.Build")
	defer span.End()

	metrics := telemetry.GetMetrics()
	started := time.Now()
	defer func() {
		metrics.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	}()
	metrics.BuildsTotal.Add(ctx, 1)

	if err := p.build.Validate(p.root); err != nil {
		span.SetStatus(codes.Error, "invalid build configuration")
		return fmt.Errorf("invalid build configuration: %w", err)
	}

	log.Info().Strs("entrypoints", p.build.EntryNames()).Str("root", p.root).Msg("Building assets")

	gate := &emitGate{}
	result := api.Build(p.buildOptions(ctx, gate))

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", formatMessage(msg)).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		berr := &BuildError{Messages: result.Errors}
		if p.build.FailFast {
			berr.Messages = berr.Messages[:1]
		}
		for _, msg := range berr.Messages {
			log.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		metrics.BuildErrorsTotal.Add(ctx, int64(len(berr.Messages)))
		span.RecordError(berr)
		span.SetStatus(codes.Error, "build failed")

		if gate.Suppressed() {
			log.Warn().Msg("Build failed, keeping previous output")
			metrics.BuildSkippedEmits.Add(ctx, 1)
			return berr
		}

		p.metadata = nil
		if _, err := p.emit(ctx, result.OutputFiles, nil); err != nil {
			return errors.Join(berr, err)
		}
		return berr
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}

	files, err := p.emit(ctx, result.OutputFiles, &metadata)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("assets.outputs", len(files)))

	for _, file := range files {
		log.Info().Str("file", file).Msg("Built file")
	}

	// Write metafile
	if err := writeFile(p.path(p.config.MetafilePath), []byte(result.Metafile)); err != nil {
		return err
	}

	p.metadata = &metadata
	return nil
}

// Rebuild runs Build and tolerates a failed build unless the configuration
// fails fast. Errors outside esbuild are always returned.
func (p *Pipeline) Rebuild(ctx context.Context) error {
	err := p.Build(ctx)

	var berr *BuildError
	if errors.As(err, &berr) && !p.build.FailFast {
		log.Warn().Err(err).Msg("Build failed, waiting for changes")
		return nil
	}

	return err
}

func (p *Pipeline) buildOptions(ctx context.Context, gate *emitGate) api.BuildOptions {
	entryPoints := make([]api.EntryPoint, 0, len(p.build.Entry))
	for _, name := range p.build.EntryNames() {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  p.build.Entry[name],
			OutputPath: name,
		})
	}

	var plugins []api.Plugin
	if p.build.HasNoErrors() {
		plugins = append(plugins, noErrorsPlugin(gate))
	}
	plugins = append(plugins, p.rulesPlugin(ctx))

	return api.BuildOptions{
		AbsWorkingDir:       p.root,
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Splitting:           true,
		Write:               false,
		JSX:                 api.JSXAutomatic,
		Outdir:              p.config.OutputDir,
		Format:              api.FormatESModule,
		EntryNames:          entryNames(p.build.Output.Filename),
		ChunkNames:          chunkNames(p.build.Output.ChunkFilename),
		AssetNames:          assetNames(p.build.Rules),
		MinifyWhitespace:    p.config.Minify,
		MinifyIdentifiers:   p.config.Minify,
		MinifySyntax:        p.config.Minify,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		Plugins:             plugins,
		LogLevel:            api.LogLevelSilent,
	}
}

// entryNames converts a bundle template to esbuild form, which appends the
// extension itself.
func entryNames(tmpl string) string {
	return strings.TrimSuffix(strings.TrimSuffix(tmpl, ".js"), ".[ext]")
}

// chunkNames converts a chunk template to esbuild form. Chunks have no
// numeric id in esbuild, the content hash identifies them instead.
func chunkNames(tmpl string) string {
	return strings.ReplaceAll(entryNames(tmpl), "[id]", "chunk-[hash]")
}

// assetNames takes the name template of the first file loader rule.
func assetNames(rules []buildconfig.Rule) string {
	for _, r := range rules {
		if r.Loader.Name == buildconfig.LoaderFile {
			if name, ok := r.Loader.Query["name"]; ok {
				return strings.TrimSuffix(name, ".[ext]")
			}
		}
	}
	return "[name]-[hash]"
}

func (p *Pipeline) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// LoadScripts returns the ordered list of script paths needed for the given entrypoint
// and the main entrypoint file path
func (p *Pipeline) LoadScripts(entryPointPath string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, "", ErrNotBuilt
	}

	scripts := []string{}
	visited := make(map[string]bool)
	var entrypoint string

	// Find the output file for this entrypoint
	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint == entryPointPath && strings.HasSuffix(outputPath, ".js") {
			entrypoint = "/" + outputPath
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			p.addDependencies(info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", ErrEntryPointNotFound
}

// ScriptsFor is LoadScripts for a bundle name.
func (p *Pipeline) ScriptsFor(name string) ([]string, string, error) {
	path, ok := p.build.Entry[name]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrEntryPointNotFound, name)
	}
	return p.LoadScripts(filepath.ToSlash(filepath.Clean(path)))
}

// StylesheetsFor returns the extracted stylesheet of a bundle, if any.
func (p *Pipeline) StylesheetsFor(name string) ([]string, error) {
	path, ok := p.build.Entry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryPointNotFound, name)
	}
	entryPointPath := filepath.ToSlash(filepath.Clean(path))

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}

	for _, info := range p.metadata.Outputs {
		if info.EntryPoint == entryPointPath && info.CSSBundle != "" {
			return []string{"/" + info.CSSBundle}, nil
		}
	}

	return nil, nil
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind != "" && imp.Kind != "import-statement" {
			continue
		}
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, "/"+imp.Path)

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

// Handler returns an http.HandlerFunc that renders the given template and bundle with its scripts
func (p *Pipeline) Handler(templateName, title, bundle string, contextFn func(ctx context.Context) any) (http.HandlerFunc, error) {
	if p.tmpl == nil {
		return nil, errors.New("template not loaded, use NewWithTemplate or WithTemplate")
	}

	if contextFn == nil {
		contextFn = func(ctx context.Context) any {
			return nil
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scripts, _, err := p.ScriptsFor(bundle)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load scripts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		stylesheets, err := p.StylesheetsFor(bundle)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load stylesheets")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := map[string]any{
			"Title":       title,
			"Scripts":     scripts,
			"Stylesheets": stylesheets,
			"Context":     contextFn(r.Context()),
		}

		if err := p.tmpl.ExecuteTemplate(w, templateName, data); err != nil {
			log.Error().Err(err).Msg("Failed to render template")
		}
	}, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
