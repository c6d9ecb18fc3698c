package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetpack/internal/buildconfig"
	"github.com/wolfeidau/assetpack/internal/telemetry"
)

// emit writes the output files and returns their paths relative to the
// project root. Extracted stylesheets are named by their extraction plugin
// and metadata is updated to match.
func (p *Pipeline) emit(ctx context.Context, files []api.OutputFile, metadata *BuildMetadata) ([]string, error) {
	metrics := telemetry.GetMetrics()
	written := make([]string, 0, len(files))

	for _, file := range files {
		path := file.Path
		if metadata != nil && strings.HasSuffix(path, ".css") {
			path = p.extractedName(file, metadata)
		}

		if err := writeFile(path, file.Contents); err != nil {
			return written, err
		}
		metrics.OutputFilesTotal.Add(ctx, 1)
		metrics.OutputBytes.Record(ctx, int64(len(file.Contents)))

		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			rel = path
		}
		written = append(written, filepath.ToSlash(rel))
	}

	return written, nil
}

// extractedName returns the path a stylesheet is written to. The first
// registered extraction plugin fed by one of its inputs names it.
func (p *Pipeline) extractedName(file api.OutputFile, metadata *BuildMetadata) string {
	rel, err := filepath.Rel(p.root, file.Path)
	if err != nil {
		return file.Path
	}
	key := filepath.ToSlash(rel)

	info, ok := metadata.Outputs[key]
	if !ok {
		return file.Path
	}

	plugin, ok := p.extractorFor(info)
	if !ok {
		return file.Path
	}

	base := filepath.Base(file.Path)
	name := buildconfig.Expand(plugin.Filename, buildconfig.Vars{
		Name: strings.TrimSuffix(base, ".css"),
		Hash: file.Hash,
		Ext:  "css",
	})
	if name == base {
		return file.Path
	}

	newPath := filepath.Join(filepath.Dir(file.Path), name)
	newKey := filepath.ToSlash(filepath.Join(filepath.Dir(rel), name))

	delete(metadata.Outputs, key)
	metadata.Outputs[newKey] = info
	for k, out := range metadata.Outputs {
		if out.CSSBundle == key {
			out.CSSBundle = newKey
			metadata.Outputs[k] = out
		}
	}

	log.Debug().Str("from", key).Str("to", newKey).Str("plugin", plugin.ID).Msg("Renamed extracted stylesheet")
	return newPath
}

func (p *Pipeline) extractorFor(info OutputInfo) (buildconfig.ExtractTextPlugin, bool) {
	ids := map[string]bool{}
	for input := range info.Inputs {
		if rule, _, ok := p.matcher.Match(p.path(filepath.FromSlash(input))); ok {
			if id, ok := rule.Loader.Extractor(); ok {
				ids[id] = true
			}
		}
	}

	for _, plugin := range p.build.Plugins {
		if ep, ok := plugin.(buildconfig.ExtractTextPlugin); ok && ids[ep.ID] {
			return ep, true
		}
	}

	return buildconfig.ExtractTextPlugin{}, false
}

// writeFile replaces path atomically, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}

	return nil
}
