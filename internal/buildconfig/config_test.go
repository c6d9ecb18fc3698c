package buildconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBaseEntry(t *testing.T) {
	cfg := Base()

	require.Len(t, cfg.Entry, 1)
	require.Equal(t, "./app/components/application.js", cfg.Entry["application"])
	require.Equal(t, []string{"application"}, cfg.EntryNames())
}

func TestBaseOutput(t *testing.T) {
	cfg := Base()

	require.Equal(t, "[name].js", cfg.Output.Filename)
	require.Equal(t, "[id].js", cfg.Output.ChunkFilename)
}

func TestBaseRules(t *testing.T) {
	cfg := Base()
	require.Len(t, cfg.Rules, 4)

	assets := cfg.Rules[0]
	require.Equal(t, []Pattern{
		`\.svg(\?|$)`,
		`\.eot(\?|$)`,
		`\.ttf(\?|$)`,
		`\.woff2?(\?|$)`,
		`\.png(\?|$)`,
		`\.jpe?g(\?|$)`,
	}, assets.Test)
	require.Equal(t, Pattern("node_modules"), assets.Include)
	require.Empty(t, assets.Exclude)
	require.Equal(t, "file?name=[name]-[hash].[ext]", assets.Loader.String())

	css := cfg.Rules[1]
	require.Equal(t, []Pattern{`\.css$`}, css.Test)
	require.Empty(t, css.Include)
	require.Empty(t, css.Exclude)
	id, ok := css.Loader.Extractor()
	require.True(t, ok)
	require.Equal(t, "extract-css", id)
	require.Equal(t, []string{"css"}, css.Loader.Chain)

	scss := cfg.Rules[2]
	require.Equal(t, []Pattern{`\.scss$`}, scss.Test)
	id, ok = scss.Loader.Extractor()
	require.True(t, ok)
	require.Equal(t, "extract-sass", id)
	require.Equal(t, []string{"css", "sass"}, scss.Loader.Chain)

	scripts := cfg.Rules[3]
	require.Equal(t, []Pattern{`\.jsx?$`}, scripts.Test)
	require.Empty(t, scripts.Include)
	require.Equal(t, Pattern("node_modules"), scripts.Exclude)
	require.Equal(t, LoaderBabel, scripts.Loader.Name)
}

func TestBasePlugins(t *testing.T) {
	cfg := Base()
	require.Len(t, cfg.Plugins, 3)

	require.IsType(t, NoErrorsPlugin{}, cfg.Plugins[0])

	css, ok := cfg.Plugins[1].(ExtractTextPlugin)
	require.True(t, ok)
	require.Equal(t, "extract-css", css.ID)

	sass, ok := cfg.Plugins[2].(ExtractTextPlugin)
	require.True(t, ok)
	require.Equal(t, "extract-sass", sass.ID)

	require.True(t, cfg.HasNoErrors())
}

func TestBaseFailFast(t *testing.T) {
	require.False(t, Base().FailFast)
}

func TestBaseIsIdempotent(t *testing.T) {
	a := Base()
	b := Base()

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("Base() mismatch (-first +second):\n%s", diff)
	}

	// the two records must not share mutable state
	a.Entry["other"] = "./other.js"
	a.Rules[0].Test[0] = `\.gif$`
	a.Rules[1].Loader.Query["id"] = "changed"
	require.NotContains(t, b.Entry, "other")
	require.Equal(t, Pattern(`\.svg(\?|$)`), b.Rules[0].Test[0])
	require.Equal(t, "extract-css", b.Rules[1].Loader.Query["id"])
}

func TestExtractPlugin(t *testing.T) {
	cfg := Base()

	p, ok := cfg.ExtractPlugin("extract-sass")
	require.True(t, ok)
	require.Equal(t, "[name].css", p.Filename)

	_, ok = cfg.ExtractPlugin("extract-less")
	require.False(t, ok)
}

func TestSchema(t *testing.T) {
	s := Base().Schema()

	require.Equal(t, map[string]string{"application": "./app/components/application.js"}, s.Entry)
	require.False(t, s.Bail)
	require.Equal(t, SchemaOutput{Filename: "[name].js", ChunkFilename: "[id].js"}, s.Output)

	require.Len(t, s.Module.Loaders, 4)
	require.Equal(t, "node_modules", s.Module.Loaders[0].Include)
	require.Equal(t, "file?name=[name]-[hash].[ext]", s.Module.Loaders[0].Loader)
	require.Equal(t, "extract-text?id=extract-css!css", s.Module.Loaders[1].Loader)
	require.Equal(t, "extract-text?id=extract-sass!css!sass", s.Module.Loaders[2].Loader)
	require.Equal(t, []string{`\.jsx?$`}, s.Module.Loaders[3].Test)
	require.Equal(t, "node_modules", s.Module.Loaders[3].Exclude)
	require.Equal(t, "babel", s.Module.Loaders[3].Loader)

	require.Equal(t, []SchemaPlugin{
		{Name: "NoErrorsPlugin"},
		{Name: "ExtractTextPlugin", ID: "extract-css", Filename: "[name].css"},
		{Name: "ExtractTextPlugin", ID: "extract-sass", Filename: "[name].css"},
	}, s.Plugins)
}
