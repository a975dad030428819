// Package patch implements the PatchEngine: computing a
// PatchSet between an InstanceSnapshot and the RojoTree, and applying it
// back to the tree.
package patch

import (
	"fmt"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/rojoerror"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// Addition describes a new subtree to add under an existing parent.
type Addition struct {
	Parent   rbxtree.ID
	Snapshot *snapshot.Instance

	// AssignedID is set by Apply once the new subtree's root ID has been
	// minted, so that callers publishing the applied patch (pkg/queue,
	// pkg/api) can reference the instance without re-deriving it.
	AssignedID rbxtree.ID
}

// Update describes a property-level change to an existing instance
//. ChangedProperties maps a property name to
// a pointer to its new value, or to nil for removal — the Option<Value>
// distinction the spec calls for.
type Update struct {
	ID                rbxtree.ID
	ChangedName       *string
	ChangedClass      *string
	ChangedProperties map[string]*rbxvalue.Value
}

// Set is a PatchSet: the three kinds of tree mutation a
// reconcile pass (or an external request) can produce.
type Set struct {
	Removed []rbxtree.ID
	Added   []Addition
	Updated []Update
}

// Empty reports whether the patch set has no content, the property the
// patch engine guarantees for repeated runs against an unchanged tree.
func (s Set) Empty() bool {
	return len(s.Removed) == 0 && len(s.Added) == 0 && len(s.Updated) == 0
}

// Compute computes the patch that would transform the subtree rooted at
// id into snap. snap may be nil, meaning the
// instance no longer corresponds to any snapshot and should be removed.
func Compute(tree *rbxtree.Tree, id rbxtree.ID, snap *snapshot.Instance) (Set, error) {
	var s Set
	inst, ok := tree.Get(id)
	if !ok {
		return s, rojoerror.Wrap("", fmt.Errorf("compute: instance %s not found", id))
	}
	computeNode(tree, inst, snap, &s)
	return s, nil
}

// computeNode implements the recursive comparison. inst is
// always non-nil (read fresh from the tree before recursing); snap may be
// nil when a reconcile determined the producing path no longer yields an
// instance.
func computeNode(tree *rbxtree.Tree, inst *rbxtree.Instance, snap *snapshot.Instance, s *Set) {
	if snap == nil {
		s.Removed = append(s.Removed, inst.ID)
		return
	}

	if inst.Class != snap.Class {
		// Classes are immutable in this model: a class change is a whole
		// subtree replacement, not an in-place update.
		s.Removed = append(s.Removed, inst.ID)
		if inst.Parent != nil {
			s.Added = append(s.Added, Addition{Parent: *inst.Parent, Snapshot: snap})
		}
		return
	}

	upd := diffProperties(inst, snap)
	if upd != nil {
		s.Updated = append(s.Updated, *upd)
	}

	matchChildren(tree, inst, snap, s)
}

// diffProperties compares inst and snap's name and properties, returning
// nil if nothing changed.
func diffProperties(inst *rbxtree.Instance, snap *snapshot.Instance) *Update {
	var changedName *string
	if inst.Name != snap.Name {
		name := snap.Name
		changedName = &name
	}

	changed := make(map[string]*rbxvalue.Value)
	for key, val := range snap.Properties {
		val := val
		old, existed := inst.Properties[key]
		if !existed || !old.Equal(val) {
			changed[key] = &val
		}
	}
	for key := range inst.Properties {
		if _, present := snap.Properties[key]; !present {
			changed[key] = nil
		}
	}

	if changedName == nil && len(changed) == 0 {
		return nil
	}
	return &Update{ID: inst.ID, ChangedName: changedName, ChangedProperties: changed}
}

// matchChildren implements the spec's child-matching algorithm: snapshot
// children are matched, in order, against the first unpaired instance
// child with the same name; unmatched snapshot children are additions,
// unmatched instance children are removals.
func matchChildren(tree *rbxtree.Tree, inst *rbxtree.Instance, snap *snapshot.Instance, s *Set) {
	paired := make(map[rbxtree.ID]bool, len(inst.Children))

	for _, childSnap := range snap.Children {
		var match *rbxtree.Instance
		for _, childID := range inst.Children {
			if paired[childID] {
				continue
			}
			childInst, ok := tree.Get(childID)
			if !ok {
				continue
			}
			if childInst.Name == childSnap.Name {
				match = childInst
				break
			}
		}

		if match == nil {
			s.Added = append(s.Added, Addition{Parent: inst.ID, Snapshot: childSnap})
			continue
		}
		paired[match.ID] = true
		computeNode(tree, match, childSnap, s)
	}

	if inst.Metadata.IgnoreUnknownInstances {
		return
	}
	for _, childID := range inst.Children {
		if !paired[childID] {
			s.Removed = append(s.Removed, childID)
		}
	}
}

// Apply applies removals, then additions, then updates, in that order
//. Failure to locate an ID is treated as a
// fatal inconsistency rather than a user-facing error.
func Apply(tree *rbxtree.Tree, s Set) error {
	for _, id := range s.Removed {
		if err := tree.Remove(id); err != nil {
			return rojoerror.Wrap("", fmt.Errorf("apply: removal: %w", err))
		}
	}
	for i := range s.Added {
		id, err := tree.Insert(s.Added[i].Parent, s.Added[i].Snapshot)
		if err != nil {
			return rojoerror.Wrap("", fmt.Errorf("apply: addition: %w", err))
		}
		s.Added[i].AssignedID = id
	}
	for _, upd := range s.Updated {
		if err := tree.Update(upd.ID, upd.ChangedName, upd.ChangedProperties); err != nil {
			return rojoerror.Wrap("", fmt.Errorf("apply: update: %w", err))
		}
	}
	return nil
}
