// Package rbxvalue implements the instance property value system: the
// typed union described informally (InstanceSnapshot's
// `properties: map<string, Value>`), with the approximate-equality rules
// the patch engine needs for floating-point components.
package rbxvalue

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/comparison"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	// KindString holds arbitrary text, including a ModuleScript/Script's
	// Source property.
	KindString Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindInt holds a 64-bit signed integer (covers Roblox's int/int64).
	KindInt
	// KindFloat holds a 64-bit float (covers Roblox's float/double).
	KindFloat
	// KindVector3 holds three float components.
	KindVector3
	// KindColor3 holds three float components in [0, 1].
	KindColor3
	// KindCFrame holds a position plus a 3x3 rotation matrix, 12 floats
	// total (position.x/y/z then the 9 rotation matrix entries).
	KindCFrame
	// KindEnum holds a named enum value (e.g. Material.Plastic).
	KindEnum
	// KindRef holds a reference to another instance by its stable ID. Refs
	// are never round-tripped through syncback.
	KindRef
	// KindSharedString holds a content hash reference into a shared string
	// table. Never round-tripped through syncback.
	KindSharedString
	// KindAttributes holds a nested string-keyed map of Values, used for
	// the attributes a .meta.json can inject.
	KindAttributes
)

// String returns the variant's name, for diagnostics and sourcemap-style
// serialization.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindVector3:
		return "Vector3"
	case KindColor3:
		return "Color3"
	case KindCFrame:
		return "CFrame"
	case KindEnum:
		return "Enum"
	case KindRef:
		return "Ref"
	case KindSharedString:
		return "SharedString"
	case KindAttributes:
		return "Attributes"
	default:
		return "Unknown"
	}
}

// Value is a single property value. Only the fields relevant to Kind are
// populated; the zero Value is an empty KindString.
type Value struct {
	Kind Kind

	Str       string
	Bool      bool
	Int       int64
	Float     float64
	Vector    [3]float64 // Vector3 or Color3
	CFrame    [12]float64
	EnumValue string
	RefID     string
	SharedKey string
	Attrs     map[string]Value
}

// String constructs a KindString value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool constructs a KindBool value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int constructs a KindInt value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float constructs a KindFloat value.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Vector3 constructs a KindVector3 value.
func Vector3(x, y, z float64) Value {
	return Value{Kind: KindVector3, Vector: [3]float64{x, y, z}}
}

// Color3 constructs a KindColor3 value.
func Color3(r, g, b float64) Value {
	return Value{Kind: KindColor3, Vector: [3]float64{r, g, b}}
}

// CFrame constructs a KindCFrame value from a position and a row-major 3x3
// rotation matrix.
func CFrame(components [12]float64) Value {
	return Value{Kind: KindCFrame, CFrame: components}
}

// Enum constructs a KindEnum value.
func Enum(name string) Value { return Value{Kind: KindEnum, EnumValue: name} }

// Ref constructs a KindRef value pointing at the instance with the given
// stable ID.
func Ref(id string) Value { return Value{Kind: KindRef, RefID: id} }

// SharedString constructs a KindSharedString value.
func SharedString(key string) Value { return Value{Kind: KindSharedString, SharedKey: key} }

// Attributes constructs a KindAttributes value.
func Attributes(attrs map[string]Value) Value {
	return Value{Kind: KindAttributes, Attrs: attrs}
}

// Equal performs an approximate-equality comparison matching the patch
// engine's semantics: floating-point components (Float,
// Vector3, Color3, CFrame) compare within comparison.DefaultFloatEpsilon;
// everything else compares exactly.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return comparison.Float64ApproximatelyEqual(v.Float, other.Float)
	case KindVector3, KindColor3:
		return comparison.Float64SlicesApproximatelyEqual(v.Vector[:], other.Vector[:])
	case KindCFrame:
		return comparison.Float64SlicesApproximatelyEqual(v.CFrame[:], other.CFrame[:])
	case KindEnum:
		return v.EnumValue == other.EnumValue
	case KindRef:
		return v.RefID == other.RefID
	case KindSharedString:
		return v.SharedKey == other.SharedKey
	case KindAttributes:
		if len(v.Attrs) != len(other.Attrs) {
			return false
		}
		for k, a := range v.Attrs {
			b, ok := other.Attrs[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
