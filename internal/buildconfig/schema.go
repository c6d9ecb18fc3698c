package buildconfig

import "maps"

// Schema is the configuration in the classic bundler layout, used when the
// configuration is printed for other tools.
type Schema struct {
	Entry   map[string]string `json:"entry" yaml:"entry"`
	Module  SchemaModule      `json:"module" yaml:"module"`
	Output  SchemaOutput      `json:"output" yaml:"output"`
	Plugins []SchemaPlugin    `json:"plugins" yaml:"plugins"`
	Bail    bool              `json:"bail" yaml:"bail"`
}

type SchemaModule struct {
	Loaders []SchemaLoader `json:"loaders" yaml:"loaders"`
}

type SchemaLoader struct {
	Test    []string `json:"test" yaml:"test"`
	Include string   `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude string   `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Loader  string   `json:"loader" yaml:"loader"`
}

type SchemaOutput struct {
	Filename      string `json:"filename" yaml:"filename"`
	ChunkFilename string `json:"chunkFilename" yaml:"chunkFilename"`
}

type SchemaPlugin struct {
	Name     string `json:"name" yaml:"name"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

func (c Configuration) Schema() Schema {
	s := Schema{
		Entry: make(map[string]string, len(c.Entry)),
		Output: SchemaOutput{
			Filename:      c.Output.Filename,
			ChunkFilename: c.Output.ChunkFilename,
		},
		Bail: c.FailFast,
	}

	maps.Copy(s.Entry, c.Entry)

	for _, r := range c.Rules {
		l := SchemaLoader{
			Include: string(r.Include),
			Exclude: string(r.Exclude),
			Loader:  r.Loader.String(),
		}
		for _, p := range r.Test {
			l.Test = append(l.Test, string(p))
		}
		s.Module.Loaders = append(s.Module.Loaders, l)
	}

	for _, p := range c.Plugins {
		sp := SchemaPlugin{Name: p.PluginName()}
		if ep, ok := p.(ExtractTextPlugin); ok {
			sp.ID = ep.ID
			sp.Filename = ep.Filename
		}
		s.Plugins = append(s.Plugins, sp)
	}

	return s
}
