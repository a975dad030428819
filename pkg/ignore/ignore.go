// Package ignore implements the glob-with-base ignore rules carried on an
// InstanceContext: each rule pairs a glob
// pattern with the base path it's relative to, since a project manifest's
// globIgnorePaths apply relative to the manifest, not the synchronization
// root.
package ignore

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule is a single parsed ignore rule.
type Rule struct {
	base    string
	pattern string
}

// New parses and validates a glob pattern relative to base, matching
// against a throwaway path purely to surface a malformed pattern early,
// at manifest-load time rather than at first use.
func New(base, pattern string) (Rule, error) {
	if pattern == "" {
		return Rule{}, fmt.Errorf("ignore: empty pattern")
	}
	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return Rule{}, fmt.Errorf("ignore: invalid pattern %q: %w", pattern, err)
	}
	return Rule{base: base, pattern: pattern}, nil
}

// Matches reports whether path (root-relative) falls under the rule's base
// and matches its glob, testing both the path relative to base and, for
// patterns with no slash, the path's final component — so a bare "*.tmp"
// matches at any depth under base, a leaf-matching convenience over a
// strict glob-from-base comparison.
func (r Rule) Matches(p string) bool {
	rel, ok := relativeTo(r.base, p)
	if !ok {
		return false
	}

	if match, _ := doublestar.Match(r.pattern, rel); match {
		return true
	}
	if !strings.Contains(r.pattern, "/") && rel != "" {
		if match, _ := doublestar.Match(r.pattern, path.Base(rel)); match {
			return true
		}
	}
	return false
}

// relativeTo computes p relative to base, reporting false if p doesn't
// fall under base.
func relativeTo(base, p string) (string, bool) {
	if base == "" {
		return p, true
	}
	if p == base {
		return "", true
	}
	if strings.HasPrefix(p, base+"/") {
		return p[len(base)+1:], true
	}
	return "", false
}

// Set is an ordered collection of ignore rules, as carried by an
// InstanceContext and inherited down a snapshot subtree.
type Set []Rule

// Matches reports whether any rule in the set matches p.
func (s Set) Matches(p string) bool {
	for _, r := range s {
		if r.Matches(p) {
			return true
		}
	}
	return false
}

// With returns a new Set with additional rules appended, leaving the
// receiver untouched — used when a project node augments the inherited
// ignore rules for its own subtree without mutating the parent's context.
func (s Set) With(rules ...Rule) Set {
	out := make(Set, 0, len(s)+len(rules))
	out = append(out, s...)
	out = append(out, rules...)
	return out
}
