package middleware

import (
	"fmt"
	"path"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
)

// FileWrite is a single filesystem write syncback produces: either file
// contents or a bare directory creation (Contents nil).
type FileWrite struct {
	Path     string
	Contents []byte
	IsDir    bool
}

// FsSnapshot is the output of Syncback: the set of
// writes, directory creations, and removals needed to make the
// filesystem match a new-tree instance, given the old-tree instance's
// file provenance.
type FsSnapshot struct {
	Writes  []FileWrite
	Removed []string
}

// Syncback computes the FsSnapshot for writing newInst (from new) back to
// disk, given oldInst's recorded provenance (from old, may be nil for a
// brand-new instance with no prior file). It mirrors the dispatch table:
// a ModuleScript's old instigating source of the form foo.lua writes
// foo.lua; a Folder writes a directory. Children recurse with
// set-difference semantics.
func (d *Dispatcher) Syncback(tree *rbxtree.Tree, newID rbxtree.ID, oldID *rbxtree.ID) (FsSnapshot, error) {
	var out FsSnapshot
	newInst, ok := tree.Get(newID)
	if !ok {
		return out, fmt.Errorf("middleware: syncback: %s not found", newID)
	}
	var oldInst *rbxtree.Instance
	if oldID != nil {
		oldInst, _ = tree.Get(*oldID)
	}

	targetPath := syncbackTargetPath(newInst, oldInst)
	if err := d.syncbackNode(tree, newInst, oldInst, targetPath, &out); err != nil {
		return out, err
	}
	return out, nil
}

// syncbackTargetPath derives the filesystem path a node should be written
// to: the old instigating source's path if one exists (preserving the
// original file's location and extension), otherwise a path synthesized
// from the instance's name and class under its parent's directory.
func syncbackTargetPath(newInst, oldInst *rbxtree.Instance) string {
	if oldInst != nil && oldInst.Metadata.InstigatingSource != "" {
		return oldInst.Metadata.InstigatingSource
	}
	return syncbackDefaultPath(newInst)
}

func syncbackDefaultPath(inst *rbxtree.Instance) string {
	switch inst.Class {
	case "Script":
		return inst.Name + ".server.lua"
	case "LocalScript":
		return inst.Name + ".client.lua"
	case "ModuleScript":
		return inst.Name + ".lua"
	case "StringValue":
		return inst.Name + ".txt"
	case "LocalizationTable":
		return inst.Name + ".csv"
	default:
		return inst.Name
	}
}

func (d *Dispatcher) syncbackNode(tree *rbxtree.Tree, newInst, oldInst *rbxtree.Instance, targetPath string, out *FsSnapshot) error {
	switch newInst.Class {
	case "Script", "LocalScript", "ModuleScript":
		out.Writes = append(out.Writes, FileWrite{Path: targetPath, Contents: []byte(newInst.Properties["Source"].Str)})
	case "StringValue":
		out.Writes = append(out.Writes, FileWrite{Path: targetPath, Contents: []byte(newInst.Properties["Value"].Str)})
	case "LocalizationTable":
		out.Writes = append(out.Writes, FileWrite{Path: targetPath, Contents: []byte(newInst.Properties["Contents"].Str)})
	case "Folder":
		out.Writes = append(out.Writes, FileWrite{Path: targetPath, IsDir: true})
	default:
		out.Writes = append(out.Writes, FileWrite{Path: targetPath, IsDir: true})
	}

	return d.syncbackChildren(tree, newInst, oldInst, targetPath, out)
}

// syncbackChildren implements the set-difference recursion:
// old-only children become removals, new-only children become additions,
// common children (matched by name) recurse.
func (d *Dispatcher) syncbackChildren(tree *rbxtree.Tree, newInst, oldInst *rbxtree.Instance, dir string, out *FsSnapshot) error {
	oldByName := make(map[string]*rbxtree.Instance)
	if oldInst != nil {
		for _, childID := range oldInst.Children {
			if child, ok := tree.Get(childID); ok {
				oldByName[child.Name] = child
			}
		}
	}

	seen := make(map[string]bool, len(newInst.Children))
	for _, childID := range newInst.Children {
		newChild, ok := tree.Get(childID)
		if !ok {
			continue
		}
		seen[newChild.Name] = true

		oldChild := oldByName[newChild.Name]
		childTarget := syncbackTargetPath(newChild, oldChild)
		if oldChild == nil || oldChild.Metadata.InstigatingSource == "" {
			childTarget = joinPath(dir, path.Base(syncbackDefaultPath(newChild)))
		}
		if err := d.syncbackNode(tree, newChild, oldChild, childTarget, out); err != nil {
			return err
		}
	}

	for name, oldChild := range oldByName {
		if !seen[name] && oldChild.Metadata.InstigatingSource != "" {
			out.Removed = append(out.Removed, oldChild.Metadata.InstigatingSource)
		}
	}
	return nil
}

// filterDefaultProperties drops properties equal to the class's
// reflection default, non-scriptable properties (unless explicitly
// opted into via includeNonScriptable), and Ref/SharedString values,
// implementing's syncback property filtering.
func (d *Dispatcher) filterDefaultProperties(class string, props map[string]rbxvalue.Value, includeNonScriptable bool) map[string]rbxvalue.Value {
	out := make(map[string]rbxvalue.Value, len(props))
	for name, val := range props {
		if val.Kind == rbxvalue.KindRef || val.Kind == rbxvalue.KindSharedString {
			continue
		}
		if !includeNonScriptable && !d.Reflection.Scriptable(class, name) {
			continue
		}
		if d.Reflection.IsDefault(class, name, val) {
			continue
		}
		out[name] = val
	}
	return out
}
