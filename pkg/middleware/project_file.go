package middleware

import (
	"fmt"
	"path"
	"sort"

	"github.com/rojo-rbx/rojo-sub001/pkg/ignore"
	"github.com/rojo-rbx/rojo-sub001/pkg/project"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// snapshotProjectFile implements middleware kind 1: a
// `*.project.json` manifest is parsed and its tree recursively
// snapshotted, with `$path` nodes deferring to the ordinary dispatch
// table and `globIgnorePaths` folded into the context for the manifest's
// own subtree.
func (d *Dispatcher) snapshotProjectFile(ctx snapshot.Context, p string) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}
	proj, err := project.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("middleware: %s: %w", p, err)
	}

	base := path.Dir(p)
	rules := make([]ignore.Rule, 0, len(proj.GlobIgnorePaths))
	for _, pattern := range proj.GlobIgnorePaths {
		rule, err := ignore.New(base, pattern)
		if err != nil {
			return nil, fmt.Errorf("middleware: %s: globIgnorePaths: %w", p, err)
		}
		rules = append(rules, rule)
	}
	nodeCtx := ctx.WithIgnore(rules...).WithEmitLegacyScripts(proj.EmitLegacyScripts)

	snap, err := d.snapshotProjectNode(nodeCtx, proj.Name, proj.Tree, base)
	if err != nil {
		return nil, err
	}
	snap.Metadata.InstigatingSource = p
	return snap, nil
}

// snapshotProjectNode recursively builds a snapshot for a single project
// manifest node: `$path` snapshots the referenced filesystem
// path via the ordinary dispatch table (so a `$path` directory can itself
// contain further project files, scripts, and so on); explicit
// `$properties` and named children always layer on top of whatever a
// `$path` produced.
func (d *Dispatcher) snapshotProjectNode(ctx snapshot.Context, name string, node *project.Node, base string) (*snapshot.Instance, error) {
	var snap *snapshot.Instance

	if node.Path != "" {
		resolved := joinPath(base, node.Path)
		pathSnap, err := d.Snapshot(ctx, resolved)
		if err != nil {
			return nil, err
		}
		if pathSnap == nil {
			snap = snapshot.New(name, node.ClassName)
		} else {
			snap = pathSnap
		}
	} else {
		snap = snapshot.New(name, node.ClassName)
	}

	snap.Name = name
	if node.ClassName != "" {
		snap.Class = node.ClassName
	}
	for prop, val := range node.Properties {
		snap.WithProperty(prop, val)
	}
	snap.Metadata.IgnoreUnknownInstances = node.IgnoreUnknownInstances

	childNames := make([]string, 0, len(node.Children))
	for childName := range node.Children {
		childNames = append(childNames, childName)
	}
	sort.Strings(childNames)

	for _, childName := range childNames {
		childSnap, err := d.snapshotProjectNode(ctx, childName, node.Children[childName], base)
		if err != nil {
			return nil, err
		}
		snap.WithChild(childSnap)
	}
	return snap, nil
}
