package livesession

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

// reconcile implements the per-batch state machine steps
// 2-4: reduce events to reconcile roots, re-run the pipeline on each,
// diff and apply against the tree, and publish the resulting patch.
func (s *Session) reconcile(events []vfs.Event) error {
	for _, e := range events {
		s.vfs.Invalidate(e)
	}

	roots := s.reconcileRoots(events)
	if len(roots) == 0 {
		return nil
	}

	s.patchLock.Lock()
	defer s.patchLock.Unlock()

	var combined patch.Set
	for _, id := range roots {
		set, err := s.reconcileOne(id)
		if err != nil {
			return err
		}
		combined.Removed = append(combined.Removed, set.Removed...)
		combined.Added = append(combined.Added, set.Added...)
		combined.Updated = append(combined.Updated, set.Updated...)
	}

	if combined.Empty() {
		return nil
	}
	if err := patch.Apply(s.tree, combined); err != nil {
		return err
	}
	s.queue.Push(combined)
	return nil
}

// reconcileRoots reduces a batch of events to the deduplicated set of
// instance IDs to re-reconcile: the union, across
// events, of instance IDs whose relevant_paths contain the event path;
// falling back to the nearest modeled ancestor's IDs when an event path
// isn't known to the tree at all.
func (s *Session) reconcileRoots(events []vfs.Event) []rbxtree.ID {
	seen := make(map[rbxtree.ID]bool)
	var roots []rbxtree.ID

	add := func(id rbxtree.ID) {
		if !seen[id] {
			seen[id] = true
			roots = append(roots, id)
		}
	}

	for _, e := range events {
		ids := s.tree.IDsForPath(e.Path)
		if len(ids) == 0 {
			ancestor := s.tree.NearestModeledAncestor(e.Path)
			ids = s.tree.IDsForPath(ancestor)
		}
		for _, id := range ids {
			add(id)
		}
	}
	return roots
}

// reconcileOne re-runs the pipeline on id's instigating source and
// computes the patch against id's current subtree. If
// the path no longer produces an instance, it emits a removal patch for
// id instead (step 4).
func (s *Session) reconcileOne(id rbxtree.ID) (patch.Set, error) {
	inst, ok := s.tree.Get(id)
	if !ok {
		return patch.Set{}, nil
	}

	sourcePath := inst.Metadata.InstigatingSource
	if sourcePath == "" {
		return patch.Compute(s.tree, id, nil)
	}

	snap, err := s.dispatcher.Snapshot(s.rootCtx, sourcePath)
	if err != nil {
		return patch.Set{}, err
	}
	return patch.Compute(s.tree, id, snap)
}
