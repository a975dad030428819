package snapshot

import "github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"

// Metadata carries a snapshot's provenance: where it came from in the
// WVFS and which paths, if changed, should trigger re-snapshotting it.
type Metadata struct {
	// InstigatingSource is the path whose pipeline re-run regenerates this
	// snapshot, if the snapshot came from a single identifiable file or
	// directory rather than being synthesized (e.g. by a project node).
	InstigatingSource string
	// RelevantPaths is the set of paths this snapshot's production
	// consulted: its own path, any adjacent metadata files (present or
	// not), and for init-directories the directory itself.
	RelevantPaths []string
	// Context is the InstanceContext this snapshot (and its children, by
	// inheritance) was produced under.
	Context Context
	// IgnoreUnknownInstances suppresses removal patches for tree children
	// with no corresponding snapshot child under this instance.
	IgnoreUnknownInstances bool
}

// Instance is an InstanceSnapshot: an unidentified, structural
// description of an instance and its subtree, as produced by a middleware.
// Two snapshots compare structurally; snapshots carry no identity of their
// own, which is what lets the pipeline recompute them freely and leave
// matching against the existing tree to the patch engine.
type Instance struct {
	Name       string
	Class      string
	Properties map[string]rbxvalue.Value
	Children   []*Instance
	Metadata   Metadata
}

// New constructs a bare snapshot with an initialized property map, to save
// middlewares from nil-map bookkeeping.
func New(name, class string) *Instance {
	return &Instance{
		Name:       name,
		Class:      class,
		Properties: make(map[string]rbxvalue.Value),
	}
}

// WithProperty sets a property and returns the receiver, for fluent
// construction in middleware implementations.
func (s *Instance) WithProperty(name string, value rbxvalue.Value) *Instance {
	if s.Properties == nil {
		s.Properties = make(map[string]rbxvalue.Value)
	}
	s.Properties[name] = value
	return s
}

// WithChild appends a child snapshot and returns the receiver.
func (s *Instance) WithChild(child *Instance) *Instance {
	s.Children = append(s.Children, child)
	return s
}

// AddRelevantPath records an additional path in the snapshot's relevant
// paths, deduplicating against the existing set.
func (s *Instance) AddRelevantPath(path string) {
	for _, p := range s.Metadata.RelevantPaths {
		if p == path {
			return
		}
	}
	s.Metadata.RelevantPaths = append(s.Metadata.RelevantPaths, path)
}
