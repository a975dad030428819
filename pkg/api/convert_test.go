package api

import (
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/queue"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

func TestNewMessageRendersAddedInstanceFromAssignedID(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("Main", "Folder").WithProperty("Name", rbxvalue.String("Main"))

	set := patch.Set{Added: []patch.Addition{{Parent: tree.RootID(), Snapshot: snap}}}
	if err := patch.Apply(tree, set); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	msg := NewMessage(tree, queue.Message{Cursor: 0, Patch: set})
	if len(msg.Added) != 1 {
		t.Fatalf("expected one added entry, got %d", len(msg.Added))
	}
	if msg.Added[0].Instance.Name != "Main" {
		t.Fatalf("expected rendered instance name Main, got %q", msg.Added[0].Instance.Name)
	}
	if msg.Added[0].Instance.ID == "" {
		t.Fatal("expected a non-empty assigned instance ID")
	}
}

func TestNewInstanceRendersParentAndChildren(t *testing.T) {
	tree := rbxtree.New()
	snap := snapshot.New("Main", "Folder")
	snap.WithChild(snapshot.New("Child", "Folder"))
	id, err := tree.Insert(tree.RootID(), snap)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	inst, _ := tree.Get(id)
	wire := NewInstance(inst)
	if wire.Parent == nil || *wire.Parent != tree.RootID().String() {
		t.Fatalf("expected parent to be the root ID, got %v", wire.Parent)
	}
	if len(wire.Children) != 1 {
		t.Fatalf("expected one child ID, got %d", len(wire.Children))
	}
}
