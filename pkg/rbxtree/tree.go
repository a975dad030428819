// Package rbxtree implements the RojoTree: the authoritative,
// identity-bearing instance tree that patches are applied to, along with
// its two secondary indexes (path → instance IDs, and instance ID →
// instigating source).
package rbxtree

import (
	"fmt"
	"sync"

	"github.com/rojo-rbx/rojo-sub001/pkg/pathindex"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// Tree is the authoritative instance tree. All mutation goes through
// Insert/Remove/Update; external readers take Get under the tree's shared
// lock, consistent with a "patch boundaries only" visibility rule.
type Tree struct {
	mu sync.RWMutex

	instances map[ID]*Instance
	rootID    ID

	// byPath is the reverse index of relevant_paths -> instance IDs,
	// maintained bidirectionally with each Instance's Metadata.RelevantPaths.
	byPath map[string]map[ID]bool

	// modeledPaths indexes every ancestor prefix of every relevant path
	// currently tracked in byPath, so the reconcile loop can walk up to
	// the nearest modeled ancestor of a path the tree doesn't know
	// directly.
	modeledPaths *pathindex.Index[bool]
	// ancestorRefs ref-counts modeledPaths entries, since multiple
	// relevant paths can share ancestor prefixes.
	ancestorRefs map[string]int
}

// New creates a tree rooted at a synthetic DataModel instance.
func New() *Tree {
	t := &Tree{
		instances:    make(map[ID]*Instance),
		byPath:       make(map[string]map[ID]bool),
		modeledPaths: pathindex.New[bool](),
		ancestorRefs: make(map[string]int),
	}
	t.modeledPaths.Insert("", true)
	root := &Instance{
		ID:         NewID(),
		Name:       "DataModel",
		Class:      "DataModel",
		Properties: map[string]rbxvalue.Value{},
	}
	t.rootID = root.ID
	t.instances[root.ID] = root
	return t
}

// NearestModeledAncestor walks up from path to the deepest prefix that is
// currently a key of the path index, via PathIndex.descend. If no ancestor is modeled, it returns "".
func (t *Tree) NearestModeledAncestor(path string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modeledPaths.Descend("", path)
}

// RootID returns the tree's root instance ID.
func (t *Tree) RootID() ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootID
}

// Get returns a deep copy of the instance with the given ID.
func (t *Tree) Get(id ID) (*Instance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	inst, ok := t.instances[id]
	if !ok {
		return nil, false
	}
	return inst.clone(), true
}

// IDsForPath returns the set of instance IDs whose relevant paths include
// path.
func (t *Tree) IDsForPath(path string) []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.byPath[path]
	if !ok {
		return nil
	}
	out := make([]ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Insert creates IDs for snap's entire subtree and attaches it under
// parent, returning the new subtree's root ID. It is the tree's only
// source of identity: IDs never come from outside.
func (t *Tree) Insert(parent ID, snap *snapshot.Instance) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parentInst, ok := t.instances[parent]
	if !ok {
		return ID{}, fmt.Errorf("rbxtree: insert: parent %s not found", parent)
	}

	id := t.insertSubtree(&parent, snap)
	parentInst.Children = append(parentInst.Children, id)
	return id, nil
}

// insertSubtree recursively materializes snap and its children into the
// instance map and the path index, returning the new root's ID. The caller
// must hold t.mu.
func (t *Tree) insertSubtree(parent *ID, snap *snapshot.Instance) ID {
	id := NewID()
	inst := &Instance{
		ID:         id,
		Parent:     parent,
		Name:       snap.Name,
		Class:      snap.Class,
		Properties: cloneProps(snap.Properties),
		Metadata: Metadata{
			InstigatingSource:      snap.Metadata.InstigatingSource,
			RelevantPaths:          append([]string(nil), snap.Metadata.RelevantPaths...),
			IgnoreUnknownInstances: snap.Metadata.IgnoreUnknownInstances,
			Ignore:                 snap.Metadata.Context.Ignore,
		},
	}
	t.instances[id] = inst
	t.indexRelevantPaths(id, inst.Metadata.RelevantPaths)

	for _, child := range snap.Children {
		childID := t.insertSubtree(&id, child)
		inst.Children = append(inst.Children, childID)
	}
	return id
}

// Remove deletes id and its entire subtree, cascading removal of the
// reverse path index entries.
func (t *Tree) Remove(id ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(id)
}

func (t *Tree) removeLocked(id ID) error {
	inst, ok := t.instances[id]
	if !ok {
		return fmt.Errorf("rbxtree: remove: %s not found", id)
	}

	for _, child := range append([]ID(nil), inst.Children...) {
		if err := t.removeLocked(child); err != nil {
			return err
		}
	}

	if inst.Parent != nil {
		if parentInst, ok := t.instances[*inst.Parent]; ok {
			parentInst.Children = removeID(parentInst.Children, id)
		}
	}

	t.unindexRelevantPaths(id, inst.Metadata.RelevantPaths)
	delete(t.instances, id)
	return nil
}

// Update applies a name and/or property change to an existing instance.
// changedProperties maps a property name to its new value, or to nil to
// remove the property. A class change is not
// expressible here: the patch engine always expresses a class change as a
// remove+add, so a class change reaching Update is a defect.
func (t *Tree) Update(id ID, changedName *string, changedProperties map[string]*rbxvalue.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	inst, ok := t.instances[id]
	if !ok {
		return fmt.Errorf("rbxtree: update: %s not found", id)
	}

	if changedName != nil {
		inst.Name = *changedName
	}
	for prop, val := range changedProperties {
		if val == nil {
			delete(inst.Properties, prop)
		} else {
			inst.Properties[prop] = *val
		}
	}
	return nil
}

// SetMetadata replaces id's metadata, re-indexing its relevant paths. Used
// by the reconcile loop after re-running the pipeline on an existing
// instance's instigating source.
func (t *Tree) SetMetadata(id ID, meta Metadata) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	inst, ok := t.instances[id]
	if !ok {
		return fmt.Errorf("rbxtree: set metadata: %s not found", id)
	}
	t.unindexRelevantPaths(id, inst.Metadata.RelevantPaths)
	inst.Metadata = meta
	t.indexRelevantPaths(id, meta.RelevantPaths)
	return nil
}

func (t *Tree) indexRelevantPaths(id ID, paths []string) {
	for _, p := range paths {
		set, ok := t.byPath[p]
		if !ok {
			set = make(map[ID]bool)
			t.byPath[p] = set
		}
		set[id] = true

		for _, ancestor := range append(ancestorPrefixes(p), p) {
			if ancestor == "" {
				continue
			}
			if t.ancestorRefs[ancestor] == 0 {
				t.modeledPaths.Insert(ancestor, true)
			}
			t.ancestorRefs[ancestor]++
		}
	}
}

// ancestorPrefixes returns every proper ancestor directory prefix of p
// (not including p itself or the root ""), ordered from shallowest to
// deepest, e.g. "a/b/c" -> ["a", "a/b"].
func ancestorPrefixes(p string) []string {
	var prefixes []string
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			prefixes = append(prefixes, p[:i])
		}
	}
	return prefixes
}

func (t *Tree) unindexRelevantPaths(id ID, paths []string) {
	for _, p := range paths {
		if set, ok := t.byPath[p]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(t.byPath, p)
			}
		}

		for _, ancestor := range append(ancestorPrefixes(p), p) {
			if ancestor == "" {
				continue
			}
			if _, ok := t.ancestorRefs[ancestor]; !ok {
				continue
			}
			t.ancestorRefs[ancestor]--
			if t.ancestorRefs[ancestor] <= 0 {
				delete(t.ancestorRefs, ancestor)
				t.modeledPaths.Remove(ancestor)
			}
		}
	}
}

func removeID(ids []ID, target ID) []ID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func cloneProps(props map[string]rbxvalue.Value) map[string]rbxvalue.Value {
	out := make(map[string]rbxvalue.Value, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
