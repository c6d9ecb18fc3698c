package buildconfig

// Base returns the build configuration for the application bundle.
func Base() Configuration {
	extractCSS := NewExtractTextPlugin("extract-css", "[name].css")
	extractSass := NewExtractTextPlugin("extract-sass", "[name].css")

	return Configuration{
		FailFast: false,
		Entry: map[string]string{
			"application": "./app/components/application.js",
		},
		Rules: []Rule{
			{
				Test: []Pattern{
					`\.svg(\?|$)`,
					`\.eot(\?|$)`,
					`\.ttf(\?|$)`,
					`\.woff2?(\?|$)`,
					`\.png(\?|$)`,
					`\.jpe?g(\?|$)`,
				},
				Include: `node_modules`,
				Loader:  MustParseLoader("file?name=[name]-[hash].[ext]"),
			},
			{
				Test:   []Pattern{`\.css$`},
				Loader: extractCSS.Extract("css"),
			},
			{
				Test:   []Pattern{`\.scss$`},
				Loader: extractSass.Extract("css", "sass"),
			},
			{
				Test:    []Pattern{`\.jsx?$`},
				Exclude: `node_modules`,
				Loader:  MustParseLoader("babel"),
			},
		},
		Output: Output{
			Filename:      "[name].js",
			ChunkFilename: "[id].js",
		},
		Plugins: []Plugin{
			NoErrorsPlugin{},
			extractCSS,
			extractSass,
		},
	}
}
