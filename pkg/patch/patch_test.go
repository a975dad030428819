package patch

import (
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

func TestComputeEmptyForUnchangedTree(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("a", "Folder").WithChild(snapshot.New("b", "Folder"))
	id, err := tree.Insert(tree.RootID(), snap)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	s, err := Compute(tree, id, snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !s.Empty() {
		t.Fatalf("expected empty patch against unchanged tree, got %+v", s)
	}
}

func TestComputeDetectsPropertyChange(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("a", "StringValue").WithProperty("Value", rbxvalue.String("one"))
	id, _ := tree.Insert(tree.RootID(), snap)

	next := snapshot.New("a", "StringValue").WithProperty("Value", rbxvalue.String("two"))
	s, err := Compute(tree, id, next)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(s.Updated) != 1 {
		t.Fatalf("expected one update, got %+v", s.Updated)
	}
	val := s.Updated[0].ChangedProperties["Value"]
	if val == nil || !val.Equal(rbxvalue.String("two")) {
		t.Fatalf("unexpected changed value: %+v", val)
	}
}

func TestComputeClassChangeIsRemoveAndAdd(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("a", "Folder")
	id, _ := tree.Insert(tree.RootID(), snap)

	next := snapshot.New("a", "StringValue")
	s, err := Compute(tree, id, next)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(s.Removed) != 1 || s.Removed[0] != id {
		t.Fatalf("expected removal of %s, got %+v", id, s.Removed)
	}
	if len(s.Added) != 1 || s.Added[0].Snapshot.Class != "StringValue" {
		t.Fatalf("expected addition of new class, got %+v", s.Added)
	}
}

func TestComputeMatchesChildrenByNameAndDiffsChildless(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("root", "Folder").
		WithChild(snapshot.New("keep", "Folder")).
		WithChild(snapshot.New("gone", "Folder"))
	id, _ := tree.Insert(tree.RootID(), snap)

	next := snapshot.New("root", "Folder").
		WithChild(snapshot.New("keep", "Folder")).
		WithChild(snapshot.New("new", "Folder"))

	s, err := Compute(tree, id, next)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(s.Removed) != 1 {
		t.Fatalf("expected one removal (gone), got %+v", s.Removed)
	}
	if len(s.Added) != 1 || s.Added[0].Snapshot.Name != "new" {
		t.Fatalf("expected one addition (new), got %+v", s.Added)
	}
}

func TestApplyAppliesRemovalsThenAdditionsThenUpdates(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("a", "Folder").WithChild(snapshot.New("gone", "Folder"))
	id, _ := tree.Insert(tree.RootID(), snap)
	got, _ := tree.Get(id)
	goneID := got.Children[0]

	newVal := rbxvalue.String("hi")
	set := Set{
		Removed: []rbxtree.ID{goneID},
		Added:   []Addition{{Parent: id, Snapshot: snapshot.New("added", "Folder")}},
		Updated: []Update{{ID: id, ChangedProperties: map[string]*rbxvalue.Value{"Tag": &newVal}}},
	}
	if err := Apply(tree, set); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ = tree.Get(id)
	if len(got.Children) != 1 {
		t.Fatalf("expected one remaining child after remove+add, got %+v", got.Children)
	}
	if !got.Properties["Tag"].Equal(rbxvalue.String("hi")) {
		t.Fatalf("expected update applied, got %+v", got.Properties)
	}
}
