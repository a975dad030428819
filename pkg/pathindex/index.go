// Package pathindex implements the PathIndex: a map
// from filesystem path to a node carrying an arbitrary value plus its known
// child paths. It backs both the WVFS entry cache (pkg/vfs) and the
// RojoTree's index of modeled paths used by NearestModeledAncestor
// (pkg/rbxtree).
package pathindex

import "sort"

// node is a single indexed path's bookkeeping: its value and the set of
// child paths currently known to exist beneath it.
type node[T any] struct {
	value    T
	children map[string]bool
}

// Index is a PathIndex: every non-root node's parent path, if indexed, has
// this node's path recorded in its children set (see Insert).
// The zero value is not usable; use New.
type Index[T any] struct {
	nodes map[string]*node[T]
}

// New creates an empty Index.
func New[T any]() *Index[T] {
	return &Index[T]{nodes: make(map[string]*node[T])}
}

// Insert places a node at path with the given value. If the parent path is
// already indexed, path is added to the parent's children set. Insert does
// not require the parent to be indexed first — paths may be inserted in any
// order — but descend and reverse-lookup operations only see edges between
// nodes that are both indexed.
func (idx *Index[T]) Insert(path string, value T) {
	n, ok := idx.nodes[path]
	if !ok {
		n = &node[T]{}
		idx.nodes[path] = n
	}
	n.value = value

	if path == "" {
		return
	}
	p := parent(path)
	if pn, ok := idx.nodes[p]; ok {
		if pn.children == nil {
			pn.children = make(map[string]bool)
		}
		pn.children[path] = true
	}
}

// Remove removes path and, recursively, every descendant currently indexed
// under it, returning the value that was stored at path (if any). It also
// detaches path from its parent's children set.
func (idx *Index[T]) Remove(path string) (value T, ok bool) {
	n, present := idx.nodes[path]
	if !present {
		return value, false
	}
	value = n.value

	idx.removeSubtree(path, n)

	if path != "" {
		p := parent(path)
		if pn, ok := idx.nodes[p]; ok && pn.children != nil {
			delete(pn.children, path)
		}
	}

	return value, true
}

// removeSubtree deletes path and all of its indexed descendants from nodes,
// without touching path's parent linkage (the caller handles that).
func (idx *Index[T]) removeSubtree(path string, n *node[T]) {
	for child := range n.children {
		if cn, ok := idx.nodes[child]; ok {
			idx.removeSubtree(child, cn)
		}
	}
	delete(idx.nodes, path)
}

// Get returns the value indexed at path.
func (idx *Index[T]) Get(path string) (value T, ok bool) {
	n, present := idx.nodes[path]
	if !present {
		return value, false
	}
	return n.value, true
}

// Mutate applies fn to the value stored at path in place, returning false if
// path isn't indexed. This is the Index's "get_mut" operation.
func (idx *Index[T]) Mutate(path string, fn func(*T)) bool {
	n, ok := idx.nodes[path]
	if !ok {
		return false
	}
	fn(&n.value)
	return true
}

// Children returns the sorted set of child paths recorded for path, or nil
// if path isn't indexed or has no indexed children.
func (idx *Index[T]) Children(path string) []string {
	n, ok := idx.nodes[path]
	if !ok || len(n.children) == 0 {
		return nil
	}
	result := make([]string, 0, len(n.children))
	for child := range n.children {
		result = append(result, child)
	}
	sort.Strings(result)
	return result
}

// Contains reports whether path is indexed.
func (idx *Index[T]) Contains(path string) bool {
	_, ok := idx.nodes[path]
	return ok
}

// Descend walks the components of target relative to start, stopping at the
// last intermediate path that is still indexed. It's used when an event
// reports a path deeper than the index currently models (e.g. the delete of
// an already-removed subdirectory): the caller reconciles at the returned
// ancestor instead of the nonexistent deeper path.
//
// If start itself isn't indexed, Descend returns start unchanged — the
// caller is expected to pass an already-indexed start (typically the tree
// or VFS root, which always exists).
func (idx *Index[T]) Descend(start, target string) string {
	if !idx.Contains(start) {
		return start
	}

	current := start
	var remainder []string
	if target == start {
		return start
	}
	if start == "" {
		remainder = components(target)
	} else if len(target) > len(start) && target[:len(start)] == start && target[len(start)] == '/' {
		remainder = components(target[len(start)+1:])
	} else {
		// target is not a descendant of start; nothing further to walk.
		return start
	}

	for _, c := range remainder {
		next := join(current, c)
		if !idx.Contains(next) {
			break
		}
		current = next
	}
	return current
}

// Len returns the number of indexed paths.
func (idx *Index[T]) Len() int {
	return len(idx.nodes)
}
