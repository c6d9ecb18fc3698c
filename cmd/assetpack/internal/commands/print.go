package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wolfeidau/assetpack/internal/buildconfig"
	"gopkg.in/yaml.v3"
)

type PrintCmd struct {
	Format string `help:"output format" default:"json" enum:"json,yaml"`

	out io.Writer `kong:"-"`
}

func (c *PrintCmd) Run(ctx context.Context, globals *Globals) error {
	schema := buildconfig.Base().Schema()

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(c.writer())
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(c.writer())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(schema); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return nil
	}
}

func (c *PrintCmd) writer() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

type MatchCmd struct {
	ProjectDir string   `help:"project root" default:"." env:"ASSETPACK_PROJECT_DIR"`
	Paths      []string `arg:"" help:"paths to resolve, relative to the project root"`

	out io.Writer `kong:"-"`
}

func (c *MatchCmd) Run(ctx context.Context, globals *Globals) error {
	matcher, err := buildconfig.NewMatcher(buildconfig.Base().Rules)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(c.ProjectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project dir: %w", err)
	}

	w := c.out
	if w == nil {
		w = os.Stdout
	}

	for _, p := range c.Paths {
		path := p
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		rule, idx, ok := matcher.Match(path)
		if !ok {
			fmt.Fprintf(w, "%s\tno rule\n", p)
			continue
		}
		fmt.Fprintf(w, "%s\trule %d\t%s\n", p, idx, rule.Loader)
	}

	return nil
}
