package rbxtree

import (
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

func TestInsertAssignsIDsAndLinksChildren(t *testing.T) {
	tree := New()

	snap := snapshot.New("Main", "Folder")
	child := snapshot.New("init", "ModuleScript")
	child.Metadata.InstigatingSource = "src/main/init.lua"
	child.Metadata.RelevantPaths = []string{"src/main/init.lua", "src/main/init.meta.json"}
	snap.WithChild(child)

	id, err := tree.Insert(tree.RootID(), snap)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, ok := tree.Get(id)
	if !ok {
		t.Fatal("inserted instance not found")
	}
	if got.Name != "Main" || len(got.Children) != 1 {
		t.Fatalf("unexpected instance: %+v", got)
	}

	childID := got.Children[0]
	ids := tree.IDsForPath("src/main/init.lua")
	if len(ids) != 1 || ids[0] != childID {
		t.Fatalf("expected reverse index to map the path to the child, got %v", ids)
	}
}

func TestRemoveCascadesAndUnindexesPaths(t *testing.T) {
	tree := New()
	snap := snapshot.New("a", "Folder")
	snap.Metadata.RelevantPaths = []string{"a"}
	child := snapshot.New("b", "Folder")
	child.Metadata.RelevantPaths = []string{"a/b"}
	snap.WithChild(child)

	id, _ := tree.Insert(tree.RootID(), snap)
	got, _ := tree.Get(id)
	childID := got.Children[0]

	if err := tree.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := tree.Get(id); ok {
		t.Fatal("removed instance still present")
	}
	if _, ok := tree.Get(childID); ok {
		t.Fatal("removed instance's child still present")
	}
	if ids := tree.IDsForPath("a"); len(ids) != 0 {
		t.Fatalf("expected path index to be cleared, got %v", ids)
	}
}

func TestUpdateAppliesPropertyAssignmentAndRemoval(t *testing.T) {
	tree := New()
	snap := snapshot.New("a", "StringValue").WithProperty("Value", rbxvalue.String("one"))
	id, _ := tree.Insert(tree.RootID(), snap)

	newName := "b"
	newVal := rbxvalue.String("two")
	err := tree.Update(id, &newName, map[string]*rbxvalue.Value{"Value": &newVal})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := tree.Get(id)
	if got.Name != "b" || !got.Properties["Value"].Equal(rbxvalue.String("two")) {
		t.Fatalf("unexpected instance after update: %+v", got)
	}

	if err := tree.Update(id, nil, map[string]*rbxvalue.Value{"Value": nil}); err != nil {
		t.Fatalf("Update remove: %v", err)
	}
	got, _ = tree.Get(id)
	if _, ok := got.Properties["Value"]; ok {
		t.Fatal("property should have been removed")
	}
}

func TestNearestModeledAncestorFindsClosestIndexedPrefix(t *testing.T) {
	tree := New()
	snap := snapshot.New("src", "Folder")
	snap.Metadata.RelevantPaths = []string{"src"}
	child := snapshot.New("main", "ModuleScript")
	child.Metadata.RelevantPaths = []string{"src/main.lua"}
	snap.WithChild(child)

	id, _ := tree.Insert(tree.RootID(), snap)

	if got := tree.NearestModeledAncestor("src/main.lua"); got != "src/main.lua" {
		t.Fatalf("expected exact match for a directly modeled path, got %q", got)
	}
	if got := tree.NearestModeledAncestor("src/main.lua/sibling.lua"); got != "src/main.lua" {
		t.Fatalf("expected nearest ancestor src/main.lua, got %q", got)
	}
	if got := tree.NearestModeledAncestor("src/other.lua"); got != "src" {
		t.Fatalf("expected nearest ancestor src, got %q", got)
	}
	if got := tree.NearestModeledAncestor("unrelated/path.lua"); got != "" {
		t.Fatalf("expected empty-root ancestor for an unrelated path, got %q", got)
	}

	got, _ := tree.Get(id)
	childID := got.Children[0]
	if err := tree.Remove(childID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := tree.NearestModeledAncestor("src/main.lua"); got != "src" {
		t.Fatalf("expected src to remain modeled after removing its child, got %q", got)
	}
}
