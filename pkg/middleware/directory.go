package middleware

import (
	"path"
	"sort"

	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// snapshotInitDirectory implements middleware kind 2: a
// directory containing an init file becomes an instance whose class and
// properties come from that file, with siblings (everything except the
// init file itself) as children.
func (d *Dispatcher) snapshotInitDirectory(ctx snapshot.Context, dir, initName string, kind initKind, children []string) (*snapshot.Instance, error) {
	var snap *snapshot.Instance
	var err error

	switch kind {
	case initKindModuleScript:
		snap, err = d.snapshotScript(initName, "ModuleScript")
	case initKindScript:
		snap, err = d.snapshotScript(initName, "Script")
	case initKindLocalScript:
		snap, err = d.snapshotScript(initName, "LocalScript")
	case initKindModel:
		snap, err = d.snapshotJSONModel(initName)
	case initKindCSV:
		snap, err = d.snapshotCSV(initName)
	case initKindMeta:
		snap = snapshot.New(path.Base(dir), "Folder")
		data, readErr := d.VFS.Read(initName)
		if readErr != nil {
			return nil, readErr
		}
		m, parseErr := parseMeta(data)
		if parseErr != nil {
			return nil, parseErr
		}
		if applyErr := m.apply(snap); applyErr != nil {
			return nil, applyErr
		}
	}
	if err != nil || snap == nil {
		return nil, err
	}

	// The directory's own name wins over whatever name the init file's
	// middleware assigned (a Script named "init" would otherwise produce
	// an instance literally named "init").
	snap.Name = path.Base(dir)
	snap.Metadata.InstigatingSource = dir
	snap.AddRelevantPath(dir)
	snap.AddRelevantPath(initName)

	for _, child := range sortedSiblings(children, initName) {
		childSnap, err := d.Snapshot(ctx, child)
		if err != nil {
			return nil, err
		}
		if childSnap != nil {
			snap.WithChild(childSnap)
		}
	}
	return snap, nil
}

// snapshotGenericDirectory implements middleware kind 9: a
// plain directory becomes a Folder, with every child path snapshotted in
// lexicographic order (the WVFS guarantees ReadDir already returns that
// order).
func (d *Dispatcher) snapshotGenericDirectory(ctx snapshot.Context, dir string, children []string) (*snapshot.Instance, error) {
	snap := snapshot.New(path.Base(dir), "Folder")
	snap.Metadata.InstigatingSource = dir
	snap.AddRelevantPath(dir)

	for _, child := range children {
		childSnap, err := d.Snapshot(ctx, child)
		if err != nil {
			return nil, err
		}
		if childSnap != nil {
			snap.WithChild(childSnap)
		}
	}
	return snap, nil
}

// sortedSiblings returns children minus the init file itself, sorted
// lexicographically so dispatch order doesn't depend on directory-read
// order beyond what the backend already guarantees.
func sortedSiblings(children []string, initName string) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		if c != initName {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
