package vfs

import "testing"

func TestReadDirCachesChildrenNotContents(t *testing.T) {
	backend := NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedFile("src/a.lua", []byte("return 1"))
	backend.SeedFile("src/b.lua", []byte("return 2"))

	v := New(backend, nil)

	children, err := v.ReadDir("src")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(children) != 2 || children[0] != "src/a.lua" || children[1] != "src/b.lua" {
		t.Fatalf("unexpected children: %v", children)
	}

	if e, ok := v.cache.Get("src/a.lua"); !ok || e != nil {
		t.Fatalf("child entry should be indexed but not yet populated, got %+v", e)
	}

	data, err := v.Read("src/a.lua")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "return 1" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestInvalidateModifiedDropsContentsOnly(t *testing.T) {
	backend := NewMemoryBackend()
	backend.SeedFile("a.txt", []byte("one"))
	v := New(backend, nil)

	if _, err := v.Read("a.txt"); err != nil {
		t.Fatalf("Read: %v", err)
	}

	backend.nodes["a.txt"].contents = []byte("two")
	v.Invalidate(Event{Kind: EventModified, Path: "a.txt"})

	e, ok := v.cache.Get("a.txt")
	if !ok || e == nil {
		t.Fatalf("entry should still be indexed after a Modified invalidation")
	}
	if e.Contents != nil {
		t.Fatalf("Modified invalidation should drop cached contents")
	}

	data, err := v.Read("a.txt")
	if err != nil {
		t.Fatalf("Read after invalidation: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("got stale contents: %q", data)
	}
}

func TestInvalidateRemovedDropsSubtree(t *testing.T) {
	backend := NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedFile("src/a.lua", []byte("return 1"))
	v := New(backend, nil)

	if _, err := v.ReadDir("src"); err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if _, err := v.Read("src/a.lua"); err != nil {
		t.Fatalf("Read: %v", err)
	}

	v.Invalidate(Event{Kind: EventRemoved, Path: "src"})

	if v.cache.Contains("src") || v.cache.Contains("src/a.lua") {
		t.Fatal("Removed invalidation should drop the entire cached subtree")
	}
}

func TestInvalidateUnknownPathDescendsToAncestor(t *testing.T) {
	backend := NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedDir("src/mod")
	v := New(backend, nil)

	if _, err := v.ReadDir(""); err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if _, err := v.ReadDir("src"); err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if _, err := v.ReadDir("src/mod"); err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	// Report the removal of an already-removed, never-cached deep path.
	v.Invalidate(Event{Kind: EventRemoved, Path: "src/mod/sub/deep.lua"})

	e, ok := v.cache.Get("src/mod")
	if !ok || e == nil {
		t.Fatal("ancestor should remain indexed")
	}
	if e.Children != nil {
		t.Fatal("ancestor's children listing should be invalidated so it is re-read")
	}
}
