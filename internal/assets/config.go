package assets

// Sass compiler implementations.
const (
	SassEmbedded = "embedded"
	SassCLI      = "cli"
)

type Config struct {
	// Project root, entry points and rule scopes resolve against it
	ProjectDir string
	// Output directory for built files (relative to ProjectDir)
	OutputDir string
	// Path to metafile (relative to ProjectDir)
	MetafilePath string
	// Whether to minify output
	Minify bool
	// Whether to enable source maps
	SourceMap bool
	// Sass compiler, "embedded" (Dart Sass embedded protocol) or "cli"
	SassCompiler string
	// Dart Sass executable
	SassBinary string
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		ProjectDir:   ".",
		OutputDir:    "public",
		MetafilePath: "public/meta.json",
		Minify:       true,
		SourceMap:    true,
		SassCompiler: SassEmbedded,
		SassBinary:   "sass",
	}
}
