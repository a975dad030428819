package middleware

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// jsonModelNode mirrors a `*.model.json` document: a simple recursive instance description independent of the
// project manifest's `$`-prefixed node shape.
type jsonModelNode struct {
	Name       string                     `json:"Name"`
	ClassName  string                     `json:"ClassName"`
	Properties map[string]json.RawMessage `json:"Properties"`
	Children   []jsonModelNode            `json:"Children"`
}

// snapshotJSONModel implements middleware kind 5.
func (d *Dispatcher) snapshotJSONModel(p string) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}

	var doc jsonModelNode
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("middleware: %s: %w", p, err)
	}

	snap := buildJSONModelSnapshot(&doc)
	if snap.Name == "" {
		snap.Name = strings.TrimSuffix(path.Base(p), ".model.json")
	}
	snap.Metadata.InstigatingSource = p
	return snap, nil
}

func buildJSONModelSnapshot(node *jsonModelNode) *snapshot.Instance {
	snap := snapshot.New(node.Name, node.ClassName)
	for name, raw := range node.Properties {
		if v, err := decodeRawValue(raw); err == nil {
			snap.WithProperty(name, v)
		}
	}
	for i := range node.Children {
		snap.WithChild(buildJSONModelSnapshot(&node.Children[i]))
	}
	return snap
}
