package middleware

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"gopkg.in/yaml.v3"
)

// decoder parses a structured-data file into a generic Go value tree
// (maps, slices, and scalars), the common representation
// snapshotDataModule renders into Lua.
type decoder func([]byte) (interface{}, error)

func decodeJSON(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeTOML(data []byte) (interface{}, error) {
	var v interface{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeYAML(data []byte) (interface{}, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// snapshotDataModule implements middleware kind 6:
// name.json/.toml/.yaml become a ModuleScript whose Source is a Lua
// return-statement rendering of the parsed value.
func (d *Dispatcher) snapshotDataModule(p string, decode decoder) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}
	value, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("middleware: %s: %w", p, err)
	}

	var b strings.Builder
	b.WriteString("return ")
	renderLua(&b, value)

	name := strings.TrimSuffix(path.Base(p), path.Ext(p))
	snap := snapshot.New(name, "ModuleScript").
		WithProperty("Source", rbxvalue.String(b.String()))
	snap.Metadata.InstigatingSource = p
	return snap, nil
}

// renderLua renders a generic decoded value (as produced by
// encoding/json, BurntSushi/toml, or gopkg.in/yaml.v3) as a Lua literal.
// Maps become Lua tables whose keys are all written as quoted strings
// (non-string keys are converted with fmt.Sprint); slices become
// array-style tables.
func renderLua(b *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case string:
		b.WriteString(strconv.Quote(val))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []interface{}:
		b.WriteString("{")
		for i, item := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			renderLua(b, item)
		}
		b.WriteString("}")
	case map[string]interface{}:
		renderLuaMap(b, val)
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(val))
		for k, item := range val {
			converted[fmt.Sprint(k)] = item
		}
		renderLuaMap(b, converted)
	default:
		b.WriteString(strconv.Quote(fmt.Sprint(val)))
	}
}

func renderLuaMap(b *strings.Builder, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[")
		b.WriteString(strconv.Quote(k))
		b.WriteString("] = ")
		renderLua(b, m[k])
	}
	b.WriteString("}")
}
