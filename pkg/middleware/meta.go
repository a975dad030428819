package middleware

import (
	"encoding/json"
	"fmt"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
)

// meta is the parsed form of an adjacent `X.meta.json` or
// `init.meta.json` file.
type meta struct {
	ClassName              string                     `json:"className"`
	Properties             map[string]json.RawMessage `json:"properties"`
	Attributes             map[string]json.RawMessage `json:"attributes"`
	IgnoreUnknownInstances *bool                      `json:"ignoreUnknownInstances"`
}

func parseMeta(data []byte) (*meta, error) {
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("middleware: malformed metadata: %w", err)
	}
	return &m, nil
}

// apply layers the metadata file's overrides onto an already-produced
// snapshot: class override, property overrides, the
// ignore-unknown-instances flag, and attributes. Errors here are treated
// by the caller as fatal for the subtree.
func (m *meta) apply(snap *snapshotInstance) error {
	if m.ClassName != "" {
		snap.Class = m.ClassName
	}
	for name, raw := range m.Properties {
		v, err := decodeRawValue(raw)
		if err != nil {
			return fmt.Errorf("middleware: metadata property %q: %w", name, err)
		}
		snap.WithProperty(name, v)
	}
	if len(m.Attributes) > 0 {
		attrs := make(map[string]rbxvalue.Value, len(m.Attributes))
		for name, raw := range m.Attributes {
			v, err := decodeRawValue(raw)
			if err != nil {
				return fmt.Errorf("middleware: metadata attribute %q: %w", name, err)
			}
			attrs[name] = v
		}
		snap.WithProperty("Attributes", rbxvalue.Attributes(attrs))
	}
	if m.IgnoreUnknownInstances != nil {
		snap.Metadata.IgnoreUnknownInstances = *m.IgnoreUnknownInstances
	}
	return nil
}

// decodeRawValue interprets a bare JSON scalar as a property Value; this
// mirrors project.parseValue but metadata files don't carry the
// project-manifest's tagged composite-value shape, so only scalars are
// supported here.
func decodeRawValue(raw json.RawMessage) (rbxvalue.Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return rbxvalue.String(s), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return rbxvalue.Bool(b), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return rbxvalue.Float(f), nil
	}
	return rbxvalue.Value{}, fmt.Errorf("unrecognized metadata value: %s", raw)
}
