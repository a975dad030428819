package rbxtree

import (
	"strings"
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

func TestVisualizeWritesEveryInstance(t *testing.T) {
	tree := New()
	snap := snapshot.New("Main", "Folder")
	snap.WithChild(snapshot.New("Child", "Script"))
	if _, err := tree.Insert(tree.RootID(), snap); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var buf strings.Builder
	if err := tree.Visualize(&buf); err != nil {
		t.Fatalf("Visualize: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "digraph RojoTree") {
		t.Fatal("expected graphviz header")
	}
	if !strings.Contains(out, `label="Main"`) || !strings.Contains(out, `label="Child"`) {
		t.Fatalf("expected both instance labels, got: %s", out)
	}
}
