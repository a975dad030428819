// Package project parses the project manifest: a JSON document describing a named tree of nodes, each
// optionally bound to a filesystem path for the pipeline to snapshot in
// place.
package project

import (
	"encoding/json"
	"fmt"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
)

// Node is a single node of a project manifest's tree: it may
// bind a class name, a filesystem path for the pipeline to snapshot, an
// explicit property map, the ignore-unknown-instances flag, and any
// number of named children (themselves Nodes).
type Node struct {
	ClassName              string
	Path                   string
	Properties             map[string]rbxvalue.Value
	IgnoreUnknownInstances bool
	Children               map[string]*Node
}

// Project is the parsed form of a project manifest.
type Project struct {
	Name              string
	Tree              *Node
	ServePort         int
	GlobIgnorePaths   []string
	EmitLegacyScripts bool
}

type rawProject struct {
	Name              string          `json:"name"`
	Tree              json.RawMessage `json:"tree"`
	ServePort         int             `json:"servePort"`
	GlobIgnorePaths   []string        `json:"globIgnorePaths"`
	EmitLegacyScripts bool            `json:"emitLegacyScripts"`
}

// Parse parses a project manifest document. A missing "name" or "tree"
// field is a malformed-manifest error.
func Parse(data []byte) (*Project, error) {
	var raw rawProject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("project: parse: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("project: parse: missing required \"name\"")
	}
	if len(raw.Tree) == 0 {
		return nil, fmt.Errorf("project: parse: missing required \"tree\"")
	}

	tree, err := parseNode(raw.Tree)
	if err != nil {
		return nil, fmt.Errorf("project: parse: tree: %w", err)
	}

	if raw.ServePort == 0 {
		raw.ServePort = 34872
	}

	return &Project{
		Name:              raw.Name,
		Tree:              tree,
		ServePort:         raw.ServePort,
		GlobIgnorePaths:   raw.GlobIgnorePaths,
		EmitLegacyScripts: raw.EmitLegacyScripts,
	}, nil
}

func parseNode(data json.RawMessage) (*Node, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	node := &Node{Children: make(map[string]*Node)}

	for key, value := range fields {
		switch key {
		case "$className":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.ClassName = s
		case "$path":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Path = s
		case "$ignoreUnknownInstances":
			var b bool
			if err := json.Unmarshal(value, &b); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.IgnoreUnknownInstances = b
		case "$properties":
			props, err := parseProperties(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Properties = props
		default:
			child, err := parseNode(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Children[key] = child
		}
	}
	return node, nil
}

// parseProperties interprets a $properties block: each entry is either a
// bare JSON scalar (string/bool/number) or an object with a single
// type-tagged key (e.g. {"Vector3": [1,2,3]}) for composite types.
func parseProperties(data json.RawMessage) (map[string]rbxvalue.Value, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]rbxvalue.Value, len(raw))
	for name, value := range raw {
		v, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func parseValue(data json.RawMessage) (rbxvalue.Value, error) {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return rbxvalue.String(str), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return rbxvalue.Bool(b), nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return rbxvalue.Float(f), nil
	}

	var tagged map[string][]float64
	if err := json.Unmarshal(data, &tagged); err == nil {
		if v, ok := tagged["Vector3"]; ok && len(v) == 3 {
			return rbxvalue.Vector3(v[0], v[1], v[2]), nil
		}
		if v, ok := tagged["Color3"]; ok && len(v) == 3 {
			return rbxvalue.Color3(v[0], v[1], v[2]), nil
		}
		if v, ok := tagged["CFrame"]; ok && len(v) == 12 {
			var c [12]float64
			copy(c[:], v)
			return rbxvalue.CFrame(c), nil
		}
	}

	return rbxvalue.Value{}, fmt.Errorf("unrecognized property value: %s", data)
}
