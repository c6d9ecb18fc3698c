package buildconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNoEntryPoints   = errors.New("no entry points configured")
	ErrMissingEntry    = errors.New("entry point not found")
	ErrUnknownPlugin   = errors.New("extraction plugin not registered")
	ErrInvalidTemplate = errors.New("invalid output template")
)

// Validate checks the configuration against the project rooted at root and
// returns every problem found, joined.
func (c Configuration) Validate(root string) error {
	var errs []error

	if len(c.Entry) == 0 {
		errs = append(errs, ErrNoEntryPoints)
	}

	for _, name := range c.EntryNames() {
		path := c.Entry[name]
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		info, err := os.Stat(path)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%w: %s (%s)", ErrMissingEntry, name, c.Entry[name]))
		case info.IsDir():
			errs = append(errs, fmt.Errorf("%w: %s (%s) is a directory", ErrMissingEntry, name, c.Entry[name]))
		}
	}

	if _, err := NewMatcher(c.Rules); err != nil {
		errs = append(errs, err)
	}

	for i, r := range c.Rules {
		if err := r.Loader.validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		if id, ok := r.Loader.Extractor(); ok {
			if _, found := c.ExtractPlugin(id); !found {
				errs = append(errs, fmt.Errorf("rule %d: %w: %q", i, ErrUnknownPlugin, id))
			}
		}
	}

	if c.Output.Filename == "" {
		errs = append(errs, fmt.Errorf("%w: empty bundle filename", ErrInvalidTemplate))
	}
	if c.Output.ChunkFilename == "" {
		errs = append(errs, fmt.Errorf("%w: empty chunk filename", ErrInvalidTemplate))
	}

	return errors.Join(errs...)
}
