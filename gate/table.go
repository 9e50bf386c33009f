package gate

import (
	"sort"
	"strings"
)

// Rule protects every path under Prefix. An empty Roles list admits any
// authenticated user.
type Rule struct {
	Prefix string   `yaml:"prefix"`
	Roles  []string `yaml:"roles"`
}

// Table resolves the rule governing a request path by longest prefix.
type Table struct {
	rules []Rule
}

// NewTable builds a Table. Prefixes are normalized to start with "/" and to
// carry no trailing slash (except the root).
func NewTable(rules ...Rule) *Table {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		r.Prefix = normalizePrefix(r.Prefix)
		r.Roles = append([]string(nil), r.Roles...)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Prefix) > len(out[j].Prefix)
	})
	return &Table{rules: out}
}

// Match returns the most specific rule covering path. ok is false when the
// path is unprotected.
func (t *Table) Match(path string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	path = normalizePrefix(path)
	for _, r := range t.rules {
		if r.Prefix == "/" || path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the table's rules, most specific first.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return append([]Rule(nil), t.rules...)
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
