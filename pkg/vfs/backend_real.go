package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/groupcache/lru"
)

// realWatchMaxDirs bounds the number of live inotify/kqueue directory
// watches a single backend will hold open at once; the least-recently-
// touched directory watch is evicted first, via a golang/groupcache/lru
// cache, rather than letting an arbitrarily large tree exhaust the OS's
// watch-handle limit.
const realWatchMaxDirs = 8192

// RealBackend is the Backend implementation that operates on the actual
// operating system filesystem, rooted at a fixed directory. It emulates
// recursive watching on top of
// fsnotify, which only watches individual directories, by walking and
// re-watching subdirectories as they appear.
type RealBackend struct {
	root string

	watcher *fsnotify.Watcher

	mu           sync.Mutex
	watchedRoots map[string]bool // caller-facing logical watch roots (root-relative)
	dirWatches   *lru.Cache      // root-relative dir path -> struct{}, bounds live fsnotify watches

	events chan Event
	errors chan error
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRealBackend creates a Backend rooted at root, which must already exist
// and be a directory.
func NewRealBackend(root string) (*RealBackend, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vfs: unable to resolve root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("vfs: unable to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &RealBackend{
		root:         absRoot,
		watcher:      watcher,
		watchedRoots: make(map[string]bool),
		events:       make(chan Event, 64),
		errors:       make(chan error, 8),
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	b.dirWatches = lru.New(realWatchMaxDirs)
	b.dirWatches.OnEvicted = func(key lru.Key, _ interface{}) {
		if p, ok := key.(string); ok {
			_ = b.watcher.Remove(b.absolute(p))
		}
	}

	go b.run(ctx)

	return b, nil
}

// absolute converts a root-relative path to an absolute filesystem path.
func (b *RealBackend) absolute(path string) string {
	if path == "" {
		return b.root
	}
	return filepath.Join(b.root, filepath.FromSlash(path))
}

// relative converts an absolute filesystem path back to a root-relative,
// forward-slash path.
func (b *RealBackend) relative(abs string) (string, error) {
	rel, err := filepath.Rel(b.root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// FileType implements Backend.FileType.
func (b *RealBackend) FileType(path string) (Kind, error) {
	info, err := os.Lstat(b.absolute(path))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotExist
		}
		return 0, err
	}
	if info.IsDir() {
		return KindDir, nil
	}
	return KindFile, nil
}

// ReadDir implements Backend.ReadDir.
func (b *RealBackend) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(b.absolute(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	children := make([]string, len(names))
	for i, name := range names {
		if path == "" {
			children[i] = name
		} else {
			children[i] = path + "/" + name
		}
	}
	return children, nil
}

// Read implements Backend.Read.
func (b *RealBackend) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(b.absolute(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return data, nil
}

// Write implements Backend.Write.
func (b *RealBackend) Write(path string, data []byte) error {
	return os.WriteFile(b.absolute(path), data, 0o644)
}

// CreateDir implements Backend.CreateDir.
func (b *RealBackend) CreateDir(path string) error {
	return os.Mkdir(b.absolute(path), 0o755)
}

// CreateDirAll implements Backend.CreateDirAll.
func (b *RealBackend) CreateDirAll(path string) error {
	return os.MkdirAll(b.absolute(path), 0o755)
}

// RemoveFile implements Backend.RemoveFile.
func (b *RealBackend) RemoveFile(path string) error {
	return os.Remove(b.absolute(path))
}

// RemoveDirAll implements Backend.RemoveDirAll.
func (b *RealBackend) RemoveDirAll(path string) error {
	return os.RemoveAll(b.absolute(path))
}

// Canonicalize implements Backend.Canonicalize.
func (b *RealBackend) Canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(b.absolute(path))
	if err != nil {
		return "", err
	}
	return b.relative(resolved)
}

// Watch implements Backend.Watch. It installs watches for path and every
// subdirectory beneath it, and is a no-op if an ancestor of path is already
// (logically) watched.
func (b *RealBackend) Watch(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasWatchedAncestorLocked(path) {
		return nil
	}

	if err := b.watchSubtreeLocked(path); err != nil {
		return err
	}
	b.watchedRoots[path] = true
	return nil
}

// hasWatchedAncestorLocked reports whether path or any ancestor of path is
// already a logical watch root.
func (b *RealBackend) hasWatchedAncestorLocked(path string) bool {
	for {
		if b.watchedRoots[path] {
			return true
		}
		if path == "" {
			return false
		}
		if i := strings.LastIndexByte(path, '/'); i != -1 {
			path = path[:i]
		} else {
			path = ""
		}
	}
}

// watchSubtreeLocked walks path and watches every directory beneath it,
// recording each in the LRU-bounded dirWatches cache.
func (b *RealBackend) watchSubtreeLocked(path string) error {
	abs := b.absolute(path)
	return filepath.Walk(abs, func(walked string, info os.FileInfo, err error) error {
		if err != nil {
			// A path disappearing mid-walk isn't fatal to watch installation.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel, err := b.relative(walked)
		if err != nil {
			return err
		}
		b.addDirWatchLocked(rel)
		return nil
	})
}

// addDirWatchLocked installs (or refreshes the LRU recency of) a watch on a
// single directory.
func (b *RealBackend) addDirWatchLocked(path string) {
	if _, ok := b.dirWatches.Get(path); ok {
		b.dirWatches.Add(path, struct{}{})
		return
	}
	if err := b.watcher.Add(b.absolute(path)); err != nil {
		if !os.IsNotExist(err) {
			b.reportError(fmt.Errorf("vfs: watch error for %q: %w", path, err))
		}
		return
	}
	b.dirWatches.Add(path, struct{}{})
}

// Unwatch implements Backend.Unwatch.
func (b *RealBackend) Unwatch(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.watchedRoots[path] {
		return nil
	}
	delete(b.watchedRoots, path)

	prefix := path
	for _, key := range b.dirWatchKeysLocked() {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			_ = b.watcher.Remove(b.absolute(key))
			b.dirWatches.Remove(key)
		}
	}
	return nil
}

// dirWatchKeysLocked returns the root-relative paths of all currently
// installed directory watches. golang/groupcache/lru doesn't expose
// iteration, so this walks every directory under the backend root and
// Unwatch filters the result down to the subtree being unwatched. Only
// directories that still exist are found this way (removed directories
// are cleaned up automatically by the OS watch subsystem).
func (b *RealBackend) dirWatchKeysLocked() []string {
	var keys []string
	_ = filepath.Walk(b.absolute(""), func(walked string, info os.FileInfo, err error) error {
		if err != nil || info == nil || !info.IsDir() {
			return nil
		}
		rel, relErr := b.relative(walked)
		if relErr != nil {
			return nil
		}
		keys = append(keys, rel)
		return nil
	})
	return keys
}

// reportError relays a non-fatal backend error, dropping it if the errors
// channel is full rather than blocking the producer goroutine.
func (b *RealBackend) reportError(err error) {
	select {
	case b.errors <- err:
	default:
	}
}

// run is the event-producer goroutine: it translates fsnotify events into
// vfs.Event values and extends recursive watches onto newly created
// directories.
func (b *RealBackend) run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fsEvent, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			b.handle(fsEvent)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.reportError(fmt.Errorf("vfs: watcher error: %w", err))
		}
	}
}

func (b *RealBackend) handle(fsEvent fsnotify.Event) {
	rel, err := b.relative(fsEvent.Name)
	if err != nil {
		return
	}

	switch {
	case fsEvent.Op&fsnotify.Create != 0:
		if info, statErr := os.Stat(fsEvent.Name); statErr == nil && info.IsDir() {
			b.mu.Lock()
			if b.hasWatchedAncestorLocked(rel) {
				b.addDirWatchLocked(rel)
			}
			b.mu.Unlock()
		}
		b.emit(Event{Kind: EventCreated, Path: rel})
	case fsEvent.Op&fsnotify.Write != 0:
		b.emit(Event{Kind: EventModified, Path: rel})
	case fsEvent.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		b.emit(Event{Kind: EventRemoved, Path: rel})
	default:
		// Chmod and other attribute-only changes carry no WVFS meaning
		//.
	}
}

func (b *RealBackend) emit(e Event) {
	select {
	case b.events <- e:
	default:
		// The consumer (WVFS.Invalidate loop) isn't keeping up; rather than
		// block the single producer goroutine indefinitely, drop the event
		// and report the drop on the errors channel. The dropped change is
		// not invalidated or reconciled unless a later event covers its path.
		b.reportError(fmt.Errorf("vfs: dropped event for %q (consumer backlogged)", e.Path))
	}
}

// Events implements Backend.Events.
func (b *RealBackend) Events() <-chan Event {
	return b.events
}

// Errors implements Backend.Errors.
func (b *RealBackend) Errors() <-chan error {
	return b.errors
}

// Close implements Backend.Close.
func (b *RealBackend) Close() error {
	b.cancel()
	<-b.done
	return b.watcher.Close()
}
