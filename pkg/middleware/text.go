package middleware

import (
	"path"
	"strings"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// snapshotText implements middleware kind 7: a plain text
// file becomes a StringValue instance with Value set from the file's
// bytes.
func (d *Dispatcher) snapshotText(p string) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(path.Base(p), ".txt")
	snap := snapshot.New(name, "StringValue").
		WithProperty("Value", rbxvalue.String(string(data)))
	snap.Metadata.InstigatingSource = p
	return snap, nil
}
