package vfs

import (
	"sync"

	"github.com/rojo-rbx/rojo-sub001/pkg/logging"
	"github.com/rojo-rbx/rojo-sub001/pkg/pathindex"
)

// VFS is the Watched Virtual Filesystem: a cache of Entry values over a
// Backend, invalidated by backend events and explicit calls, with a single
// exclusive lock held only for the duration of one operation.
type VFS struct {
	backend Backend
	logger  *logging.Logger

	mu    sync.Mutex
	cache *pathindex.Index[*Entry]
}

// New wraps backend in a VFS with an empty entry cache.
func New(backend Backend, logger *logging.Logger) *VFS {
	return &VFS{
		backend: backend,
		logger:  logger,
		cache:   pathindex.New[*Entry](),
	}
}

// Backend returns the underlying Backend, for callers (syncback) that need
// to issue writes directly.
func (v *VFS) Backend() Backend {
	return v.backend
}

// Events exposes the backend's raw event channel for the reconcile loop to
// consume; the VFS itself does not drain it automatically, since batching
// and coalescing are the reconcile loop's responsibility.
func (v *VFS) Events() <-chan Event {
	return v.backend.Events()
}

// Errors exposes the backend's error channel.
func (v *VFS) Errors() <-chan error {
	return v.backend.Errors()
}

// FileType returns the kind of the entry at path, populating the cache on
// first access.
func (v *VFS) FileType(path string) (Kind, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.cache.Get(path); ok && e != nil {
		return e.Kind, nil
	}
	kind, err := v.backend.FileType(path)
	if err != nil {
		return 0, err
	}
	v.cache.Insert(path, &Entry{Path: path, Kind: kind})
	return kind, nil
}

// ReadDir returns a directory's sorted child paths, populating the
// directory's children list (but not the children's own contents) on first
// access.
func (v *VFS) ReadDir(path string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.cache.Get(path); ok && e != nil && e.Children != nil {
		return append([]string(nil), e.Children...), nil
	}

	children, err := v.backend.ReadDir(path)
	if err != nil {
		return nil, err
	}

	e, ok := v.cache.Get(path)
	if !ok || e == nil {
		e = &Entry{Path: path, Kind: KindDir}
	}
	e.Kind = KindDir
	e.Children = append(make([]string, 0, len(children)), children...)
	v.cache.Insert(path, e)

	// Invariant: every listed child must itself have an Entry in
	// the index (its kind is not yet known in detail, but its existence is
	// recorded so Descend can walk through it).
	for _, child := range children {
		if _, ok := v.cache.Get(child); !ok {
			v.cache.Insert(child, nil)
		}
	}

	return append([]string(nil), children...), nil
}

// Read returns a file's contents, populating the cache on first access.
func (v *VFS) Read(path string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.cache.Get(path); ok && e != nil && e.Contents != nil {
		return append([]byte(nil), e.Contents...), nil
	}

	data, err := v.backend.Read(path)
	if err != nil {
		return nil, err
	}

	e, ok := v.cache.Get(path)
	if !ok || e == nil {
		e = &Entry{Path: path, Kind: KindFile}
	}
	e.Kind = KindFile
	e.Contents = append([]byte(nil), data...)
	v.cache.Insert(path, e)

	return append([]byte(nil), data...), nil
}

// Write writes through to the backend and drops the path's cached contents
// so the next Read repopulates from disk.
func (v *VFS) Write(path string, data []byte) error {
	if err := v.backend.Write(path, data); err != nil {
		return err
	}
	v.Invalidate(Event{Kind: EventModified, Path: path})
	return nil
}

// CreateDirAll writes through to the backend and invalidates path.
func (v *VFS) CreateDirAll(path string) error {
	if err := v.backend.CreateDirAll(path); err != nil {
		return err
	}
	v.Invalidate(Event{Kind: EventCreated, Path: path})
	return nil
}

// RemoveFile writes through to the backend and invalidates path.
func (v *VFS) RemoveFile(path string) error {
	if err := v.backend.RemoveFile(path); err != nil {
		return err
	}
	v.Invalidate(Event{Kind: EventRemoved, Path: path})
	return nil
}

// RemoveDirAll writes through to the backend and invalidates path.
func (v *VFS) RemoveDirAll(path string) error {
	if err := v.backend.RemoveDirAll(path); err != nil {
		return err
	}
	v.Invalidate(Event{Kind: EventRemoved, Path: path})
	return nil
}

// Watch installs a subtree-scoped watch at path, delegating to the backend
// (which implements the idempotent-nested-watch rule).
func (v *VFS) Watch(path string) error {
	return v.backend.Watch(path)
}

// Unwatch removes a previously installed watch.
func (v *VFS) Unwatch(path string) error {
	return v.backend.Unwatch(path)
}

// Invalidate applies a single filesystem event to the entry cache,
// following the caching rules:
//
//   - Modified invalidates only the entry's cached contents.
//   - Created inserts (or re-inserts) the entry, linking it under its
//     parent if the parent is cached.
//   - Removed removes the entire cached subtree.
//
// If the event's path isn't currently indexed, the invalidation is applied
// to the deepest cached ancestor instead (via PathIndex.Descend), by
// invalidating that ancestor's children list so the next ReadDir re-reads
// it from the backend.
func (v *VFS) Invalidate(event Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	path := event.Path
	if !v.cache.Contains(path) {
		ancestor := v.cache.Descend("", path)
		v.invalidateChildrenLocked(ancestor)
		return
	}

	switch event.Kind {
	case EventModified:
		v.cache.Mutate(path, func(e **Entry) {
			if *e != nil {
				(*e).Contents = nil
			}
		})
	case EventCreated:
		v.cache.Remove(path)
		v.cache.Insert(path, nil)
		v.invalidateChildrenLocked(parentPath(path))
	case EventRemoved:
		v.cache.Remove(path)
	}
}

// invalidateChildrenLocked drops a directory's cached children listing
// (but not its own Kind/existence) so ReadDir re-reads it. The caller must
// hold v.mu.
func (v *VFS) invalidateChildrenLocked(path string) {
	if !v.cache.Contains(path) {
		return
	}
	v.cache.Mutate(path, func(e **Entry) {
		if *e != nil {
			(*e).Children = nil
		}
	})
}

func parentPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}
