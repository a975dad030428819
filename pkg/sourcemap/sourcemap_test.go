package sourcemap

import (
	"testing"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

func buildTestTree() (*rbxtree.Tree, rbxtree.ID) {
	tree := rbxtree.New()

	folder := snapshot.New("src", "Folder")
	folder.Metadata.RelevantPaths = []string{"src"}

	script := snapshot.New("main", "ModuleScript")
	script.Metadata.RelevantPaths = []string{"src/main.lua"}
	folder.WithChild(script)

	value := snapshot.New("config", "StringValue")
	value.Metadata.RelevantPaths = []string{"src/config.txt"}
	folder.WithChild(value)

	id, _ := tree.Insert(tree.RootID(), folder)
	return tree, id
}

func TestBuildExcludesNonScriptLeavesByDefault(t *testing.T) {
	tree, id := buildTestTree()

	node := Build(tree, id, false)
	if node == nil {
		t.Fatal("expected a node for the folder, since it has a script descendant")
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected only the script child to survive, got %d children", len(node.Children))
	}
	if node.Children[0].ClassName != "ModuleScript" {
		t.Fatalf("expected the surviving child to be the ModuleScript, got %q", node.Children[0].ClassName)
	}
}

func TestBuildIncludesNonScriptsWhenRequested(t *testing.T) {
	tree, id := buildTestTree()

	node := Build(tree, id, true)
	if len(node.Children) != 2 {
		t.Fatalf("expected both children with includeNonScripts, got %d", len(node.Children))
	}
}

func TestBuildReturnsNilForUnknownRoot(t *testing.T) {
	tree := rbxtree.New()
	if Build(tree, rbxtree.NewID(), false) != nil {
		t.Fatal("expected nil for an ID not present in the tree")
	}
}
