package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/assetpack/internal/buildconfig"
	"github.com/wolfeidau/assetpack/internal/telemetry"
)

var ErrUnsupportedLoader = errors.New("unsupported loader")

// rulesPlugin assigns loaders from the rule table. Rules register in order
// and a rule whose scope excludes the file passes it on, so the first
// applicable rule wins.
func (p *Pipeline) rulesPlugin(ctx context.Context) api.Plugin {
	return api.Plugin{
		Name: "rules",
		Setup: func(build api.PluginBuild) {
			for i, rule := range p.matcher.Rules() {
				build.OnLoad(api.OnLoadOptions{
					Filter:    string(buildconfig.Alternation(rule.Test)),
					Namespace: "file",
				}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if !p.matcher.InScope(i, args.Path) {
						return api.OnLoadResult{}, nil
					}
					return p.load(ctx, rule, args.Path)
				})
			}
		},
	}
}

func (p *Pipeline) load(ctx context.Context, rule buildconfig.Rule, path string) (api.OnLoadResult, error) {
	var loader api.Loader

	switch l := rule.Loader; {
	case l.Uses(buildconfig.LoaderSass):
		started := time.Now()
		css, err := p.sass.Compile(ctx, path)
		telemetry.GetMetrics().SassCompileDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
		if err != nil {
			return api.OnLoadResult{}, err
		}
		return api.OnLoadResult{
			Contents:   &css,
			Loader:     api.LoaderCSS,
			ResolveDir: filepath.Dir(path),
		}, nil

	case l.Uses(buildconfig.LoaderCSS):
		loader = api.LoaderCSS

	case l.Name == buildconfig.LoaderFile:
		loader = api.LoaderFile

	case l.Name == buildconfig.LoaderBabel:
		loader = api.LoaderJSX

	default:
		return api.OnLoadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedLoader, l)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return api.OnLoadResult{}, err
	}
	contents := string(data)

	return api.OnLoadResult{
		Contents:   &contents,
		Loader:     loader,
		ResolveDir: filepath.Dir(path),
	}, nil
}

// emitGate records whether a build may emit its output.
type emitGate struct {
	suppressed atomic.Bool
}

func (g *emitGate) Suppressed() bool {
	return g.suppressed.Load()
}

// noErrorsPlugin closes the gate when the build ends with errors.
func noErrorsPlugin(gate *emitGate) api.Plugin {
	return api.Plugin{
		Name: "no-errors",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				gate.suppressed.Store(false)
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					gate.suppressed.Store(true)
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}
