package buildconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var samplePaths = []string{
	"/srv/web/node_modules/font-awesome/fonts/fontawesome-webfont.svg?v=4.7.0",
	"/srv/web/node_modules/font-awesome/fonts/fontawesome-webfont.eot",
	"/srv/web/node_modules/font-awesome/fonts/fontawesome-webfont.ttf?v=4.7.0",
	"/srv/web/node_modules/font-awesome/fonts/fontawesome-webfont.woff",
	"/srv/web/node_modules/font-awesome/fonts/fontawesome-webfont.woff2?v=4.7.0",
	"/srv/web/node_modules/leaflet/dist/images/marker.png",
	"/srv/web/node_modules/slick/ajax-loader.jpg",
	"/srv/web/node_modules/slick/ajax-loader.jpeg",
	"/srv/web/app/images/logo.png",
	"/srv/web/app/styles/main.css",
	"/srv/web/node_modules/normalize.css/normalize.css",
	"/srv/web/app/styles/theme.scss",
	"/srv/web/app/components/application.js",
	"/srv/web/app/components/header.jsx",
	"/srv/web/node_modules/react/index.js",
	"/srv/web/app/data/routes.json",
	"/srv/web/node_modules/icons/sprite.svgz",
}

func TestMatch(t *testing.T) {
	m, err := NewMatcher(Base().Rules)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantRule  int
		wantMatch bool
	}{
		{name: "svg with query in dependency", path: samplePaths[0], wantRule: 0, wantMatch: true},
		{name: "eot in dependency", path: samplePaths[1], wantRule: 0, wantMatch: true},
		{name: "ttf with query in dependency", path: samplePaths[2], wantRule: 0, wantMatch: true},
		{name: "woff in dependency", path: samplePaths[3], wantRule: 0, wantMatch: true},
		{name: "woff2 with query in dependency", path: samplePaths[4], wantRule: 0, wantMatch: true},
		{name: "png in dependency", path: samplePaths[5], wantRule: 0, wantMatch: true},
		{name: "jpg in dependency", path: samplePaths[6], wantRule: 0, wantMatch: true},
		{name: "jpeg in dependency", path: samplePaths[7], wantRule: 0, wantMatch: true},
		{name: "png outside dependencies", path: samplePaths[8], wantRule: -1, wantMatch: false},
		{name: "application stylesheet", path: samplePaths[9], wantRule: 1, wantMatch: true},
		{name: "dependency stylesheet", path: samplePaths[10], wantRule: 1, wantMatch: true},
		{name: "sass stylesheet", path: samplePaths[11], wantRule: 2, wantMatch: true},
		{name: "application script", path: samplePaths[12], wantRule: 3, wantMatch: true},
		{name: "jsx component", path: samplePaths[13], wantRule: 3, wantMatch: true},
		{name: "dependency script is excluded", path: samplePaths[14], wantRule: -1, wantMatch: false},
		{name: "json has no rule", path: samplePaths[15], wantRule: -1, wantMatch: false},
		{name: "svgz is not svg", path: samplePaths[16], wantRule: -1, wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, idx, ok := m.Match(tt.path)
			require.Equal(t, tt.wantMatch, ok)
			require.Equal(t, tt.wantRule, idx)
		})
	}
}

func TestRuleCategoriesDoNotOverlap(t *testing.T) {
	rules := Base().Rules

	// test patterns only, scope ignored
	unscoped := make([]Rule, len(rules))
	for i, r := range rules {
		unscoped[i] = Rule{Test: r.Test, Loader: r.Loader}
	}
	m, err := NewMatcher(unscoped)
	require.NoError(t, err)

	for _, path := range samplePaths {
		matches := 0
		for i := range unscoped {
			if m.Applies(i, path) {
				matches++
			}
		}
		require.LessOrEqual(t, matches, 1, "path %s matched %d rules", path, matches)
	}
}

func TestNewMatcherErrors(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{
			name:  "no test patterns",
			rules: []Rule{{Loader: MustParseLoader("babel")}},
		},
		{
			name:  "invalid test pattern",
			rules: []Rule{{Test: []Pattern{`\.js(`}, Loader: MustParseLoader("babel")}},
		},
		{
			name:  "invalid include",
			rules: []Rule{{Test: []Pattern{`\.js$`}, Include: `[`, Loader: MustParseLoader("babel")}},
		},
		{
			name:  "invalid exclude",
			rules: []Rule{{Test: []Pattern{`\.js$`}, Exclude: `*`, Loader: MustParseLoader("babel")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher(tt.rules)
			require.Error(t, err)
		})
	}
}

func TestAlternation(t *testing.T) {
	re, err := Alternation(Base().Rules[0].Test).Compile()
	require.NoError(t, err)

	require.True(t, re.MatchString("/x/font.woff2"))
	require.True(t, re.MatchString("/x/logo.jpeg"))
	require.False(t, re.MatchString("/x/app.js"))
}
