package buildconfig

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a regular expression in RE2 syntax, kept as source text so the
// configuration stays comparable. An empty pattern is unset.
type Pattern string

func (p Pattern) Compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(string(p))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", string(p), err)
	}
	return re, nil
}

// Alternation joins patterns into a single expression matching any of them.
func Alternation(patterns []Pattern) Pattern {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(?:" + string(p) + ")"
	}
	return Pattern(strings.Join(parts, "|"))
}

type compiledRule struct {
	test    []*regexp.Regexp
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// Matcher resolves input files against a compiled rule table.
type Matcher struct {
	rules    []Rule
	compiled []compiledRule
}

// NewMatcher compiles every pattern in rules.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{
		rules:    rules,
		compiled: make([]compiledRule, len(rules)),
	}

	for i, r := range rules {
		if len(r.Test) == 0 {
			return nil, fmt.Errorf("rule %d: no test patterns", i)
		}
		for _, p := range r.Test {
			re, err := p.Compile()
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			m.compiled[i].test = append(m.compiled[i].test, re)
		}

		var err error
		if r.Include != "" {
			if m.compiled[i].include, err = r.Include.Compile(); err != nil {
				return nil, fmt.Errorf("rule %d include: %w", i, err)
			}
		}
		if r.Exclude != "" {
			if m.compiled[i].exclude, err = r.Exclude.Compile(); err != nil {
				return nil, fmt.Errorf("rule %d exclude: %w", i, err)
			}
		}
	}

	return m, nil
}

// Match returns the first rule applying to path and its index.
func (m *Matcher) Match(path string) (Rule, int, bool) {
	for i := range m.rules {
		if m.Applies(i, path) {
			return m.rules[i], i, true
		}
	}
	return Rule{}, -1, false
}

// Applies reports whether rule i matches path and path is within its scope.
func (m *Matcher) Applies(i int, path string) bool {
	c := m.compiled[i]

	tested := false
	for _, re := range c.test {
		if re.MatchString(path) {
			tested = true
			break
		}
	}
	if !tested {
		return false
	}

	return m.InScope(i, path)
}

// InScope checks only the include and exclude patterns of rule i.
func (m *Matcher) InScope(i int, path string) bool {
	c := m.compiled[i]
	if c.include != nil && !c.include.MatchString(path) {
		return false
	}
	if c.exclude != nil && c.exclude.MatchString(path) {
		return false
	}
	return true
}

func (m *Matcher) Rules() []Rule {
	return m.rules
}
