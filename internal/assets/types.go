package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"path/filepath"
	"sync"

	"github.com/wolfeidau/assetpack/internal/buildconfig"
)

type BuildMetadata struct {
	Inputs  map[string]InputInfo  `json:"inputs"`
	Outputs map[string]OutputInfo `json:"outputs"`
}

type InputInfo struct {
	Bytes int `json:"bytes"`
}

type OutputInfo struct {
	Bytes      int                `json:"bytes"`
	EntryPoint string             `json:"entryPoint"`
	CSSBundle  string             `json:"cssBundle"`
	Imports    []ImportInfo       `json:"imports"`
	Inputs     map[string]Contrib `json:"inputs"`
}

// Contrib is the share of an input file in an output file
type Contrib struct {
	BytesInOutput int `json:"bytesInOutput"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   Config
	build    buildconfig.Configuration
	root     string
	matcher  *buildconfig.Matcher
	sass     StyleCompiler
	metadata *BuildMetadata
	tmpl     *template.Template
	mu       sync.RWMutex
}

type Option func(*Pipeline)

// WithStyleCompiler replaces the Sass compiler selected by the config.
func WithStyleCompiler(c StyleCompiler) Option {
	return func(p *Pipeline) {
		p.sass = c
	}
}

// WithTemplate sets the template used by Handler.
func WithTemplate(tmpl *template.Template) Option {
	return func(p *Pipeline) {
		p.tmpl = tmpl
	}
}

// New creates a new asset pipeline for the build configuration
func New(config Config, build buildconfig.Configuration, opts ...Option) (*Pipeline, error) {
	root, err := filepath.Abs(config.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir: %w", err)
	}

	matcher, err := buildconfig.NewMatcher(build.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	p := &Pipeline{
		config:  config,
		build:   build,
		root:    root,
		matcher: matcher,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.sass == nil {
		switch config.SassCompiler {
		case SassCLI:
			p.sass = NewCLISass(config.SassBinary)
		case SassEmbedded, "":
			p.sass = NewEmbeddedSass(config.SassBinary)
		default:
			return nil, fmt.Errorf("unknown sass compiler %q", config.SassCompiler)
		}
	}

	return p, nil
}

// NewWithTemplate creates a new asset pipeline and loads a single template
func NewWithTemplate(config Config, build buildconfig.Configuration, templatePath string, customFuncs template.FuncMap) (*Pipeline, error) {
	tmpl, err := template.New(filepath.Base(templatePath)).Funcs(TemplateFuncs(customFuncs)).ParseFiles(templatePath)
	if err != nil {
		return nil, err
	}
	return New(config, build, WithTemplate(tmpl))
}

// TemplateFuncs returns the functions available to page templates merged with customFuncs
func TemplateFuncs(customFuncs template.FuncMap) template.FuncMap {
	funcs := template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}

	// Merge custom functions
	maps.Copy(funcs, customFuncs)

	return funcs
}

// Close releases the Sass compiler.
func (p *Pipeline) Close() error {
	if c, ok := p.sass.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
