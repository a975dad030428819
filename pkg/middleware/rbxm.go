package middleware

import (
	"fmt"

	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// ModelCodec deserializes a binary (.rbxm) or XML (.rbxmx) model file
// into an instance snapshot, and the inverse for build/syncback. The
// place/model serializer itself is an external collaborator the pipeline
// treats as opaque; callers plug in
// a concrete implementation.
type ModelCodec interface {
	Decode(data []byte) (*snapshot.Instance, error)
	Encode(snap *snapshot.Instance) ([]byte, error)
}

// snapshotBinaryModel implements middleware kind 8
// delegating to the configured ModelCodec.
func (d *Dispatcher) snapshotBinaryModel(p string) (*snapshot.Instance, error) {
	if d.Codec == nil {
		return nil, fmt.Errorf("middleware: %s: no model codec configured", p)
	}
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}
	snap, err := d.Codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("middleware: %s: %w", p, err)
	}
	snap.Metadata.InstigatingSource = p
	return snap, nil
}
