// Package sourcemap builds the `{name, className, filePaths?, children?}`
// document the `sourcemap` CLI command emits, a debugging aid that maps
// the instance tree back onto the files that produced it.
package sourcemap

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
)

// Node is a single entry in the sourcemap tree.
type Node struct {
	Name      string   `json:"name"`
	ClassName string   `json:"className"`
	FilePaths []string `json:"filePaths,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
}

// Build walks tree from root, producing a Node for every instance that is
// either a script (Script, LocalScript, ModuleScript) or has at least one
// qualifying descendant, unless includeNonScripts is set, in which case
// every instance is included.
func Build(tree *rbxtree.Tree, root rbxtree.ID, includeNonScripts bool) *Node {
	return build(tree, root, includeNonScripts)
}

func build(tree *rbxtree.Tree, id rbxtree.ID, includeNonScripts bool) *Node {
	inst, ok := tree.Get(id)
	if !ok {
		return nil
	}

	var children []*Node
	for _, childID := range inst.Children {
		if child := build(tree, childID, includeNonScripts); child != nil {
			children = append(children, child)
		}
	}

	if !includeNonScripts && len(children) == 0 && !isScriptClass(inst.Class) {
		return nil
	}

	return &Node{
		Name:      inst.Name,
		ClassName: inst.Class,
		FilePaths: relevantFilePaths(inst),
		Children:  children,
	}
}

func isScriptClass(class string) bool {
	switch class {
	case "Script", "LocalScript", "ModuleScript":
		return true
	default:
		return false
	}
}

// relevantFilePaths returns a copy of the instance's relevant paths as
// recorded during snapshotting. No existence check is made, so the result
// can include adjacent .meta.json paths that are not present on disk.
func relevantFilePaths(inst *rbxtree.Instance) []string {
	if len(inst.Metadata.RelevantPaths) == 0 {
		return nil
	}
	return append([]string(nil), inst.Metadata.RelevantPaths...)
}
