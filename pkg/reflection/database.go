// Package reflection provides a minimal class reflection database: default
// property values and scriptability flags, used by syncback property
// filtering.
package reflection

import "github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"

// PropertyInfo describes a single class property's reflection metadata.
type PropertyInfo struct {
	Default    rbxvalue.Value
	Scriptable bool
	Serializes bool
}

// ClassInfo describes a class's known properties and its superclass, for
// default lookups that fall back through the inheritance chain.
type ClassInfo struct {
	Superclass string
	Properties map[string]PropertyInfo
}

// Database is a class reflection database. The zero Database is usable and
// reports every class as unknown.
type Database struct {
	classes map[string]ClassInfo
}

// New returns a Database seeded with the built-in class table.
func New() *Database {
	return &Database{classes: builtinClasses()}
}

// Class returns the ClassInfo for name, if known.
func (d *Database) Class(name string) (ClassInfo, bool) {
	if d == nil {
		return ClassInfo{}, false
	}
	c, ok := d.classes[name]
	return c, ok
}

// PropertyDefault looks up a property's default value, walking the
// superclass chain (e.g. Instance.Name is inherited by every class).
func (d *Database) PropertyDefault(class, property string) (rbxvalue.Value, bool) {
	if d == nil {
		return rbxvalue.Value{}, false
	}
	for class != "" {
		c, ok := d.classes[class]
		if !ok {
			return rbxvalue.Value{}, false
		}
		if p, ok := c.Properties[property]; ok {
			return p.Default, true
		}
		class = c.Superclass
	}
	return rbxvalue.Value{}, false
}

// IsDefault reports whether value equals the class's default for property,
// per the approximate-equality rules of rbxvalue.Value.Equal.
func (d *Database) IsDefault(class, property string, value rbxvalue.Value) bool {
	def, ok := d.PropertyDefault(class, property)
	return ok && def.Equal(value)
}

// Scriptable reports whether a property is scriptable (readable/writable
// from Lua, and therefore eligible to round-trip through syncback without
// an explicit opt-in). Unknown properties default to non-scriptable, the
// conservative choice.
func (d *Database) Scriptable(class, property string) bool {
	if d == nil {
		return false
	}
	for class != "" {
		c, ok := d.classes[class]
		if !ok {
			return false
		}
		if p, ok := c.Properties[property]; ok {
			return p.Scriptable
		}
		class = c.Superclass
	}
	return false
}

// builtinClasses seeds the small set of classes the pipeline itself
// produces, enough to drive default-property
// filtering for synced content without requiring an external dump.
func builtinClasses() map[string]ClassInfo {
	str := func(s string) rbxvalue.Value { return rbxvalue.String(s) }
	return map[string]ClassInfo{
		"Instance": {
			Properties: map[string]PropertyInfo{
				"Name": {Default: str(""), Scriptable: true, Serializes: true},
			},
		},
		"Folder": {Superclass: "Instance"},
		"Script": {
			Superclass: "LuaSourceContainer",
			Properties: map[string]PropertyInfo{
				"Source":    {Default: str(""), Scriptable: true, Serializes: true},
				"Disabled":  {Default: rbxvalue.Bool(false), Scriptable: true, Serializes: true},
				"RunContext": {Default: rbxvalue.Enum("Legacy"), Scriptable: true, Serializes: true},
			},
		},
		"LocalScript": {
			Superclass: "Script",
		},
		"ModuleScript": {
			Superclass: "LuaSourceContainer",
			Properties: map[string]PropertyInfo{
				"Source": {Default: str(""), Scriptable: true, Serializes: true},
			},
		},
		"LuaSourceContainer": {Superclass: "Instance"},
		"StringValue": {
			Superclass: "Instance",
			Properties: map[string]PropertyInfo{
				"Value": {Default: str(""), Scriptable: true, Serializes: true},
			},
		},
		"LocalizationTable": {
			Superclass: "Instance",
			Properties: map[string]PropertyInfo{
				"Contents": {Default: str(""), Scriptable: true, Serializes: true},
			},
		},
	}
}
