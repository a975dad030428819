// Package middleware implements the Snapshot Middleware Pipeline (spec
// §4.4): an ordered, first-match dispatcher mapping filesystem entries to
// InstanceSnapshot subtrees, and its syncback inverse.
package middleware

import (
	"fmt"
	"path"
	"strings"

	"github.com/rojo-rbx/rojo-sub001/pkg/reflection"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

type snapshotInstance = snapshot.Instance

// Dispatcher runs the ordered middleware table against WVFS paths.
type Dispatcher struct {
	VFS        *vfs.VFS
	Reflection *reflection.Database
	// Codec deserializes .rbxm/.rbxmx files; nil unless the caller wires
	// one in, since the model format itself is an opaque external codec
	//.
	Codec ModelCodec
}

// New constructs a Dispatcher over the given VFS.
func New(v *vfs.VFS, refl *reflection.Database) *Dispatcher {
	if refl == nil {
		refl = reflection.New()
	}
	return &Dispatcher{VFS: v, Reflection: refl}
}

// Snapshot runs the pipeline on path under ctx, implementing the
// first-match dispatch order. It returns (nil, nil) when the
// path produces no instance (an ignored path, a bare metadata file, or a
// plain file with no matching middleware).
func (d *Dispatcher) Snapshot(ctx snapshot.Context, p string) (*snapshot.Instance, error) {
	if ctx.Ignore.Matches(p) {
		return nil, nil
	}

	kind, err := d.VFS.FileType(p)
	if err != nil {
		if err == vfs.ErrNotExist {
			return nil, nil
		}
		return nil, err
	}

	var snap *snapshot.Instance
	var skipAdjacentMeta bool
	if kind == vfs.KindDir {
		snap, skipAdjacentMeta, err = d.snapshotDirectory(ctx, p)
	} else {
		snap, err = d.snapshotFile(ctx, p)
	}
	if err != nil || snap == nil {
		return snap, err
	}

	if !skipAdjacentMeta {
		if err := d.applyAdjacentMetadata(p, kind, snap); err != nil {
			return nil, err
		}
	}
	snap.Metadata.Context = ctx
	snap.AddRelevantPath(p)
	return snap, nil
}

// snapshotFile dispatches a file path through middleware kinds 1 and 3-8
// (project files are files too, handled first).
func (d *Dispatcher) snapshotFile(ctx snapshot.Context, p string) (*snapshot.Instance, error) {
	lower := strings.ToLower(path.Base(p))

	switch {
	case strings.HasSuffix(lower, ".project.json"):
		return d.snapshotProjectFile(ctx, p)
	case strings.HasSuffix(lower, ".meta.json"):
		// A bare metadata file with no corresponding instance-producing
		// sibling yields no instance of its own.
		return nil, nil
	case strings.HasSuffix(lower, ".server.lua") || strings.HasSuffix(lower, ".server.luau"):
		return d.snapshotScript(p, "Script")
	case strings.HasSuffix(lower, ".client.lua") || strings.HasSuffix(lower, ".client.luau"):
		return d.snapshotScript(p, "LocalScript")
	case strings.HasSuffix(lower, ".lua") || strings.HasSuffix(lower, ".luau"):
		return d.snapshotScript(p, "ModuleScript")
	case strings.HasSuffix(lower, ".csv"):
		return d.snapshotCSV(p)
	case strings.HasSuffix(lower, ".model.json"):
		return d.snapshotJSONModel(p)
	case strings.HasSuffix(lower, ".json"):
		return d.snapshotDataModule(p, decodeJSON)
	case strings.HasSuffix(lower, ".toml"):
		return d.snapshotDataModule(p, decodeTOML)
	case strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml"):
		return d.snapshotDataModule(p, decodeYAML)
	case strings.HasSuffix(lower, ".txt"):
		return d.snapshotText(p)
	case strings.HasSuffix(lower, ".rbxm") || strings.HasSuffix(lower, ".rbxmx"):
		return d.snapshotBinaryModel(p)
	default:
		return nil, nil
	}
}

// snapshotDirectory dispatches a directory path through middleware kinds
// 2 and 9. The returned bool reports whether adjacent
// metadata has already been folded in (true for an init.meta.json
// directory, which consumes the file as its primary source rather than
// an adjacent one).
func (d *Dispatcher) snapshotDirectory(ctx snapshot.Context, p string) (*snapshot.Instance, bool, error) {
	children, err := d.VFS.ReadDir(p)
	if err != nil {
		return nil, false, err
	}

	if initName, initKind, ok := findInitFile(children); ok {
		snap, err := d.snapshotInitDirectory(ctx, p, initName, initKind, children)
		return snap, initKind == initKindMeta, err
	}

	snap, err := d.snapshotGenericDirectory(ctx, p, children)
	return snap, false, err
}

type initKind int

const (
	initKindModuleScript initKind = iota
	initKindScript
	initKindLocalScript
	initKindModel
	initKindCSV
	initKindMeta
)

// initFileOrder lists the init-file basenames in priority order; spec
// §4.4 lists them together as equally qualifying an "init-directory", so
// this fixed order just makes dispatch deterministic when more than one
// is present.
var initFileOrder = []struct {
	name string
	kind initKind
}{
	{"init.luau", initKindModuleScript},
	{"init.lua", initKindModuleScript},
	{"init.server.lua", initKindScript},
	{"init.client.lua", initKindLocalScript},
	{"init.model.json", initKindModel},
	{"init.csv", initKindCSV},
	{"init.meta.json", initKindMeta},
}

func findInitFile(children []string) (name string, kind initKind, ok bool) {
	basenames := make(map[string]string, len(children))
	for _, c := range children {
		basenames[strings.ToLower(path.Base(c))] = c
	}
	for _, candidate := range initFileOrder {
		if full, ok := basenames[candidate.name]; ok {
			return full, candidate.kind, true
		}
	}
	return "", 0, false
}

// applyAdjacentMetadata looks for X.meta.json (files) or
// <dir>/init.meta.json (directories) and layers its overrides onto snap.
func (d *Dispatcher) applyAdjacentMetadata(p string, kind vfs.Kind, snap *snapshot.Instance) error {
	metaPath := p + ".meta.json"
	if kind == vfs.KindDir {
		metaPath = joinPath(p, "init.meta.json")
	}

	snap.AddRelevantPath(metaPath)

	data, err := d.VFS.Read(metaPath)
	if err != nil {
		if err == vfs.ErrNotExist {
			return nil
		}
		return err
	}
	m, err := parseMeta(data)
	if err != nil {
		return fmt.Errorf("middleware: %s: %w", metaPath, err)
	}
	return m.apply(snap)
}

func joinPath(base, leaf string) string {
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}
