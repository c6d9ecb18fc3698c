// Package buildconfig holds the front-end build configuration: the entry
// points, the loader rules applied to each input file, the output name
// templates and the plugins the asset pipeline runs.
//
// The configuration is plain data. It is assembled once from literals by Base
// and handed to the asset pipeline, which validates it and translates it into
// esbuild options.
package buildconfig

import "slices"

// Configuration is the complete build configuration for one application.
type Configuration struct {
	// Entry maps a bundle name to the source file that roots its dependency graph.
	Entry map[string]string
	// Rules are evaluated in order for every input file, first match wins.
	Rules []Rule
	// Output holds the name templates for bundles and chunks.
	Output Output
	// Plugins run in order.
	Plugins []Plugin
	// FailFast aborts on the first error instead of reporting all of them and continuing.
	FailFast bool
}

// Rule selects input files by path and assigns them a loader.
type Rule struct {
	// Test matches when any pattern matches the file path.
	Test []Pattern
	// Include, when set, must match the file path.
	Include Pattern
	// Exclude, when set, must not match the file path.
	Exclude Pattern
	Loader  Loader
}

// Output holds the templates used to name emitted files. Supported placeholders
// are [name], [hash], [id] and [ext].
type Output struct {
	Filename      string
	ChunkFilename string
}

// EntryNames returns the bundle names in sorted order.
func (c Configuration) EntryNames() []string {
	names := make([]string, 0, len(c.Entry))
	for name := range c.Entry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExtractPlugin returns the registered extraction plugin with the given id.
func (c Configuration) ExtractPlugin(id string) (ExtractTextPlugin, bool) {
	for _, p := range c.Plugins {
		if ep, ok := p.(ExtractTextPlugin); ok && ep.ID == id {
			return ep, true
		}
	}
	return ExtractTextPlugin{}, false
}

// HasNoErrors reports whether the NoErrorsPlugin is registered.
func (c Configuration) HasNoErrors() bool {
	for _, p := range c.Plugins {
		if _, ok := p.(NoErrorsPlugin); ok {
			return true
		}
	}
	return false
}
