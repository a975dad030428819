package middleware

import (
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/ignore"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

func TestSnapshotModuleScript(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedFile("hello.lua", []byte(`return "hi"`))
	d := New(vfs.New(backend, nil), nil)

	snap, err := d.Snapshot(snapshot.Context{}, "hello.lua")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Name != "hello" || snap.Class != "ModuleScript" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Properties["Source"].Str != `return "hi"` {
		t.Fatalf("unexpected source: %+v", snap.Properties["Source"])
	}
}

func TestSnapshotServerAndClientScriptSuffixes(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedFile("a.server.lua", []byte("1"))
	backend.SeedFile("b.client.lua", []byte("2"))
	d := New(vfs.New(backend, nil), nil)

	a, err := d.Snapshot(snapshot.Context{}, "a.server.lua")
	if err != nil || a.Name != "a" || a.Class != "Script" {
		t.Fatalf("unexpected server script snapshot: %+v, err=%v", a, err)
	}
	b, err := d.Snapshot(snapshot.Context{}, "b.client.lua")
	if err != nil || b.Name != "b" || b.Class != "LocalScript" {
		t.Fatalf("unexpected client script snapshot: %+v, err=%v", b, err)
	}
}

func TestSnapshotInitDirectoryUsesDirectoryName(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedDir("mod")
	backend.SeedFile("mod/init.lua", []byte("return {}"))
	backend.SeedFile("mod/child.lua", []byte("return 1"))
	d := New(vfs.New(backend, nil), nil)

	snap, err := d.Snapshot(snapshot.Context{}, "mod")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Name != "mod" || snap.Class != "ModuleScript" {
		t.Fatalf("unexpected init-directory snapshot: %+v", snap)
	}
	if len(snap.Children) != 1 || snap.Children[0].Name != "child" {
		t.Fatalf("unexpected children: %+v", snap.Children)
	}
}

func TestSnapshotGenericDirectoryBecomesFolder(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedFile("src/a.lua", []byte("return 1"))
	d := New(vfs.New(backend, nil), nil)

	snap, err := d.Snapshot(snapshot.Context{}, "src")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Name != "src" || snap.Class != "Folder" || len(snap.Children) != 1 {
		t.Fatalf("unexpected folder snapshot: %+v", snap)
	}
}

func TestSnapshotIgnoredPathProducesNoInstance(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedFile("skip.lua", []byte("return 1"))
	d := New(vfs.New(backend, nil), nil)

	rule, err := ignore.New("", "skip.lua")
	if err != nil {
		t.Fatalf("ignore.New: %v", err)
	}
	ctx := snapshot.Context{}.WithIgnore(rule)

	snap, err := d.Snapshot(ctx, "skip.lua")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected no snapshot for ignored path, got %+v", snap)
	}
}

func TestAdjacentMetaOverridesProperty(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedFile("a.txt", []byte("hello"))
	backend.SeedFile("a.txt.meta.json", []byte(`{"className": "StringValue", "properties": {"Value": "overridden"}}`))
	d := New(vfs.New(backend, nil), nil)

	snap, err := d.Snapshot(snapshot.Context{}, "a.txt")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Properties["Value"].Str != "overridden" {
		t.Fatalf("expected metadata property override, got %+v", snap.Properties)
	}
}
