package rbxtree

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/ignore"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
)

// Metadata carries an instance's snapshot provenance: where it came from, which files it depends on for
// re-snapshotting, and the context it was produced under.
type Metadata struct {
	// InstigatingSource is the single file path (at most one) whose
	// pipeline re-run regenerates this instance, if any.
	InstigatingSource string
	// RelevantPaths is the full set of paths that, if changed, require
	// re-snapshotting this instance's subtree: its own path, adjacent
	// metadata files, and for init-directories the directory itself.
	RelevantPaths []string
	// IgnoreUnknownInstances suppresses removal patches for tree children
	// that have no corresponding snapshot child, letting external tools
	// (e.g. a plugin) own extra instances under this one.
	IgnoreUnknownInstances bool
	// Ignore holds the path-ignore rules active when this instance was
	// produced, inherited by children unless overridden.
	Ignore ignore.Set
}

// Instance is a single node in a RojoTree.
type Instance struct {
	ID         ID
	Parent     *ID
	Children   []ID
	Name       string
	Class      string
	Properties map[string]rbxvalue.Value
	Metadata   Metadata
}

// clone returns a deep copy of the instance, safe to mutate independently
// of the original (used when handing instances to external readers under
// the tree's shared-read lock).
func (inst *Instance) clone() *Instance {
	if inst == nil {
		return nil
	}
	out := *inst
	out.Children = append([]ID(nil), inst.Children...)
	out.Properties = make(map[string]rbxvalue.Value, len(inst.Properties))
	for k, v := range inst.Properties {
		out.Properties[k] = v
	}
	out.Metadata.RelevantPaths = append([]string(nil), inst.Metadata.RelevantPaths...)
	out.Metadata.Ignore = append(ignore.Set(nil), inst.Metadata.Ignore...)
	if inst.Parent != nil {
		p := *inst.Parent
		out.Parent = &p
	}
	return &out
}
