// Package snapshot implements the InstanceSnapshot data model and its
// context-propagation rules.
package snapshot

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/ignore"
)

// Context is passed by value down a snapshot subtree: children
// inherit their parent's context unless a middleware augments it for its
// own descent (e.g. a project node adding ignore rules scoped to itself).
type Context struct {
	// Ignore holds the active path-ignore rules, each carrying its own
	// base path.
	Ignore ignore.Set
	// EmitLegacyScripts carries the project manifest's emitLegacyScripts
	// flag down the subtree. No middleware reads it: script classes are
	// chosen from file suffixes alone.
	EmitLegacyScripts bool
	// PluginHooks holds plugin names inherited down the subtree. Nothing
	// sets or invokes them.
	PluginHooks []string
}

// WithIgnore returns a copy of the context with additional ignore rules
// appended, leaving the receiver (and any sibling holding it) untouched.
func (c Context) WithIgnore(rules ...ignore.Rule) Context {
	c.Ignore = c.Ignore.With(rules...)
	return c
}

// WithEmitLegacyScripts returns a copy of the context with the flag set.
func (c Context) WithEmitLegacyScripts(emit bool) Context {
	c.EmitLegacyScripts = emit
	return c
}
