package vfs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// memoryNode is a single path's state within a MemoryBackend.
type memoryNode struct {
	kind     Kind
	contents []byte          // valid only for KindFile
	children map[string]bool // valid only for KindDir
}

// MemoryBackend is an in-memory Backend implementation used for
// deterministic testing. Watching is supported in-process: Watch and
// Unwatch just gate which paths' mutations are reported on Events.
type MemoryBackend struct {
	mu      sync.Mutex
	nodes   map[string]*memoryNode
	watches map[string]bool

	events chan Event
	errors chan error
}

// NewMemoryBackend creates an empty MemoryBackend with just a root
// directory.
func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		nodes:   make(map[string]*memoryNode),
		watches: make(map[string]bool),
		events:  make(chan Event, 256),
		errors:  make(chan error, 8),
	}
	b.nodes[""] = &memoryNode{kind: KindDir, children: make(map[string]bool)}
	return b
}

func parentOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i != -1 {
		return path[:i]
	}
	return ""
}

func joinPath(base, leaf string) string {
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}

// SeedFile directly installs a file at path with the given contents,
// without generating an event. Intended for constructing initial test
// fixtures before a session starts watching.
func (b *MemoryBackend) SeedFile(path string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureParentsLocked(path)
	b.nodes[path] = &memoryNode{kind: KindFile, contents: data}
	b.linkLocked(path)
}

// SeedDir directly installs an (empty, unless populated later) directory.
func (b *MemoryBackend) SeedDir(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureParentsLocked(path)
	if _, ok := b.nodes[path]; !ok {
		b.nodes[path] = &memoryNode{kind: KindDir, children: make(map[string]bool)}
	}
	b.linkLocked(path)
}

func (b *MemoryBackend) ensureParentsLocked(path string) {
	if path == "" {
		return
	}
	p := parentOf(path)
	if _, ok := b.nodes[p]; !ok {
		b.ensureParentsLocked(p)
		b.nodes[p] = &memoryNode{kind: KindDir, children: make(map[string]bool)}
		b.linkLocked(p)
	}
}

func (b *MemoryBackend) linkLocked(path string) {
	if path == "" {
		return
	}
	p := parentOf(path)
	if pn, ok := b.nodes[p]; ok {
		if pn.children == nil {
			pn.children = make(map[string]bool)
		}
		pn.children[path] = true
	}
}

// FileType implements Backend.FileType.
func (b *MemoryBackend) FileType(path string) (Kind, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		return 0, ErrNotExist
	}
	return n.kind, nil
}

// ReadDir implements Backend.ReadDir.
func (b *MemoryBackend) ReadDir(path string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		return nil, ErrNotExist
	}
	if n.kind != KindDir {
		return nil, fmt.Errorf("vfs: %q is not a directory", path)
	}
	children := make([]string, 0, len(n.children))
	for c := range n.children {
		children = append(children, c)
	}
	sort.Strings(children)
	return children, nil
}

// Read implements Backend.Read.
func (b *MemoryBackend) Read(path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		return nil, ErrNotExist
	}
	if n.kind != KindFile {
		return nil, fmt.Errorf("vfs: %q is not a file", path)
	}
	out := make([]byte, len(n.contents))
	copy(out, n.contents)
	return out, nil
}

// Write implements Backend.Write.
func (b *MemoryBackend) Write(path string, data []byte) error {
	b.mu.Lock()
	created := false
	if _, ok := b.nodes[path]; !ok {
		created = true
	}
	b.ensureParentsLocked(path)
	b.nodes[path] = &memoryNode{kind: KindFile, contents: append([]byte(nil), data...)}
	b.linkLocked(path)
	b.mu.Unlock()

	if created {
		b.emitIfWatched(Event{Kind: EventCreated, Path: path})
	} else {
		b.emitIfWatched(Event{Kind: EventModified, Path: path})
	}
	return nil
}

// CreateDir implements Backend.CreateDir.
func (b *MemoryBackend) CreateDir(path string) error {
	b.mu.Lock()
	p := parentOf(path)
	if path != "" {
		if pn, ok := b.nodes[p]; !ok || pn.kind != KindDir {
			b.mu.Unlock()
			return fmt.Errorf("vfs: parent of %q does not exist", path)
		}
	}
	if _, ok := b.nodes[path]; ok {
		b.mu.Unlock()
		return fmt.Errorf("vfs: %q already exists", path)
	}
	b.nodes[path] = &memoryNode{kind: KindDir, children: make(map[string]bool)}
	b.linkLocked(path)
	b.mu.Unlock()

	b.emitIfWatched(Event{Kind: EventCreated, Path: path})
	return nil
}

// CreateDirAll implements Backend.CreateDirAll.
func (b *MemoryBackend) CreateDirAll(path string) error {
	b.mu.Lock()
	b.ensureParentsLocked(path)
	created := false
	if _, ok := b.nodes[path]; !ok {
		b.nodes[path] = &memoryNode{kind: KindDir, children: make(map[string]bool)}
		b.linkLocked(path)
		created = true
	}
	b.mu.Unlock()

	if created {
		b.emitIfWatched(Event{Kind: EventCreated, Path: path})
	}
	return nil
}

// RemoveFile implements Backend.RemoveFile.
func (b *MemoryBackend) RemoveFile(path string) error {
	b.mu.Lock()
	n, ok := b.nodes[path]
	if !ok || n.kind != KindFile {
		b.mu.Unlock()
		return ErrNotExist
	}
	delete(b.nodes, path)
	if pn, ok := b.nodes[parentOf(path)]; ok {
		delete(pn.children, path)
	}
	b.mu.Unlock()

	b.emitIfWatched(Event{Kind: EventRemoved, Path: path})
	return nil
}

// RemoveDirAll implements Backend.RemoveDirAll.
func (b *MemoryBackend) RemoveDirAll(path string) error {
	b.mu.Lock()
	if _, ok := b.nodes[path]; !ok {
		b.mu.Unlock()
		return ErrNotExist
	}
	b.removeSubtreeLocked(path)
	if pn, ok := b.nodes[parentOf(path)]; ok {
		delete(pn.children, path)
	}
	b.mu.Unlock()

	b.emitIfWatched(Event{Kind: EventRemoved, Path: path})
	return nil
}

func (b *MemoryBackend) removeSubtreeLocked(path string) {
	n, ok := b.nodes[path]
	if !ok {
		return
	}
	for c := range n.children {
		b.removeSubtreeLocked(c)
	}
	delete(b.nodes, path)
}

// Canonicalize implements Backend.Canonicalize. The in-memory backend has
// no symlinks, so this is the identity function for existing paths.
func (b *MemoryBackend) Canonicalize(path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.nodes[path]; !ok {
		return "", ErrNotExist
	}
	return path, nil
}

// Watch implements Backend.Watch.
func (b *MemoryBackend) Watch(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for w := range b.watches {
		if w == path || strings.HasPrefix(path, w+"/") || w == "" {
			return nil
		}
	}
	b.watches[path] = true
	return nil
}

// Unwatch implements Backend.Unwatch.
func (b *MemoryBackend) Unwatch(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watches, path)
	return nil
}

func (b *MemoryBackend) isWatchedLocked(path string) bool {
	for w := range b.watches {
		if w == "" || w == path || strings.HasPrefix(path, w+"/") {
			return true
		}
	}
	return false
}

func (b *MemoryBackend) emitIfWatched(e Event) {
	b.mu.Lock()
	watched := b.isWatchedLocked(e.Path)
	b.mu.Unlock()
	if !watched {
		return
	}
	select {
	case b.events <- e:
	default:
	}
}

// Events implements Backend.Events.
func (b *MemoryBackend) Events() <-chan Event {
	return b.events
}

// Errors implements Backend.Errors.
func (b *MemoryBackend) Errors() <-chan error {
	return b.errors
}

// Close implements Backend.Close.
func (b *MemoryBackend) Close() error {
	return nil
}
