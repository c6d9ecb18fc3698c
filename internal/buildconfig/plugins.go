package buildconfig

// Plugin is a build plugin handle. The asset pipeline maps each concrete
// plugin type to its own behaviour.
type Plugin interface {
	PluginName() string
}

// NoErrorsPlugin stops a failed build from emitting anything. The artifacts of
// the last good build are kept.
type NoErrorsPlugin struct{}

func (NoErrorsPlugin) PluginName() string { return "NoErrorsPlugin" }

// ExtractTextPlugin pulls stylesheet content out of the script bundle into a
// standalone file named by Filename.
type ExtractTextPlugin struct {
	ID       string
	Filename string
}

func NewExtractTextPlugin(id, filename string) ExtractTextPlugin {
	return ExtractTextPlugin{ID: id, Filename: filename}
}

func (ExtractTextPlugin) PluginName() string { return "ExtractTextPlugin" }

// Extract returns a loader that runs the given loader chain and hands the
// resulting stylesheet to this plugin.
func (p ExtractTextPlugin) Extract(loaders ...string) Loader {
	return Loader{
		Name:  LoaderExtractText,
		Query: map[string]string{"id": p.ID},
		Chain: loaders,
	}
}
