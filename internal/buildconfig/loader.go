package buildconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Loader names understood by the asset pipeline.
const (
	LoaderFile        = "file"
	LoaderBabel       = "babel"
	LoaderCSS         = "css"
	LoaderSass        = "sass"
	LoaderExtractText = "extract-text"
)

var knownLoaders = []string{LoaderFile, LoaderBabel, LoaderCSS, LoaderSass, LoaderExtractText}

var (
	ErrEmptyLoader   = errors.New("empty loader")
	ErrUnknownLoader = errors.New("unknown loader")
)

// Loader is a transform applied to a matched file, in loader string form
// "name?key=value!next!next". The chain is applied right to left.
type Loader struct {
	Name  string
	Query map[string]string
	Chain []string
}

// ParseLoader parses a loader string such as "file?name=[name]-[hash].[ext]"
// or "extract-text?id=extract-sass!css!sass".
func ParseLoader(s string) (Loader, error) {
	if strings.TrimSpace(s) == "" {
		return Loader{}, ErrEmptyLoader
	}

	segments := strings.Split(s, "!")
	head := segments[0]

	var l Loader
	name, query, hasQuery := strings.Cut(head, "?")
	l.Name = name
	if hasQuery {
		l.Query = map[string]string{}
		for pair := range strings.SplitSeq(query, "&") {
			if pair == "" {
				continue
			}
			k, v, _ := strings.Cut(pair, "=")
			l.Query[k] = v
		}
	}

	for _, seg := range segments[1:] {
		if seg == "" {
			return Loader{}, fmt.Errorf("%w: empty segment in %q", ErrEmptyLoader, s)
		}
		l.Chain = append(l.Chain, seg)
	}

	if err := l.validate(); err != nil {
		return Loader{}, err
	}

	return l, nil
}

// MustParseLoader is like ParseLoader but panics on error. It is intended for
// loader literals.
func MustParseLoader(s string) Loader {
	l, err := ParseLoader(s)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Loader) validate() error {
	if l.Name == "" {
		return ErrEmptyLoader
	}
	if !slices.Contains(knownLoaders, l.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownLoader, l.Name)
	}
	for _, c := range l.Chain {
		name, _, _ := strings.Cut(c, "?")
		if !slices.Contains(knownLoaders, name) {
			return fmt.Errorf("%w: %q", ErrUnknownLoader, name)
		}
	}
	return nil
}

// String renders the loader in loader string form. Query keys are sorted.
func (l Loader) String() string {
	var sb strings.Builder
	sb.WriteString(l.Name)

	if len(l.Query) > 0 {
		keys := make([]string, 0, len(l.Query))
		for k := range l.Query {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		sb.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(l.Query[k])
		}
	}

	for _, c := range l.Chain {
		sb.WriteByte('!')
		sb.WriteString(c)
	}

	return sb.String()
}

// Extractor returns the id of the extraction plugin this loader feeds, if any.
func (l Loader) Extractor() (string, bool) {
	if l.Name != LoaderExtractText {
		return "", false
	}
	id, ok := l.Query["id"]
	return id, ok
}

// Uses reports whether name is the loader itself or part of its chain.
func (l Loader) Uses(name string) bool {
	if l.Name == name {
		return true
	}
	for _, c := range l.Chain {
		if n, _, _ := strings.Cut(c, "?"); n == name {
			return true
		}
	}
	return false
}
