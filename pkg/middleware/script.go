package middleware

import (
	"path"
	"strings"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// scriptNameSuffixes maps the longest-matching suffix (tested in order,
// longest first) to the bare instance name it implies.
var scriptNameSuffixes = []string{
	".server.lua", ".server.luau",
	".client.lua", ".client.luau",
	".lua", ".luau",
}

// snapshotScript implements middleware kind 3: a Lua source
// file becomes a Script/LocalScript/ModuleScript instance named for its
// suffix-stripped basename, with Source set from the file's bytes.
func (d *Dispatcher) snapshotScript(p, class string) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}

	snap := snapshot.New(scriptName(p), class).
		WithProperty("Source", rbxvalue.String(string(data)))
	snap.Metadata.InstigatingSource = p
	return snap, nil
}

func scriptName(p string) string {
	base := path.Base(p)
	for _, suffix := range scriptNameSuffixes {
		if strings.HasSuffix(strings.ToLower(base), suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
