package model

// Value is a tagged variant for output and tool metadata. The source data
// arrives as loosely typed JSON-like structures; Value keeps the dynamic
// ergonomics while accessors stay type-checked. An accessor returns the
// zero value and false when the kind does not match.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	i64  int64
	b    bool
	list []Value
	m    map[string]Value
}

type ValueKind string

const (
	ValueKindNull   ValueKind = "null"
	ValueKindString ValueKind = "string"
	ValueKindFloat  ValueKind = "float"
	ValueKindInt    ValueKind = "int"
	ValueKindBool   ValueKind = "bool"
	ValueKindList   ValueKind = "list"
	ValueKindMap    ValueKind = "map"
)

func StringValue(s string) Value { return Value{kind: ValueKindString, str: s} }
func FloatValue(f float64) Value { return Value{kind: ValueKindFloat, num: f} }
func IntValue(i int64) Value     { return Value{kind: ValueKindInt, i64: i} }
func BoolValue(b bool) Value     { return Value{kind: ValueKindBool, b: b} }

func ListValue(items ...Value) Value {
	return Value{kind: ValueKindList, list: items}
}

func MapValue(m map[string]Value) Value {
	return Value{kind: ValueKindMap, m: m}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == ValueKindString
}

func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case ValueKindFloat:
		return v.num, true
	case ValueKindInt:
		return float64(v.i64), true
	}
	return 0, false
}

func (v Value) AsInt() (int64, bool) {
	return v.i64, v.kind == ValueKindInt
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == ValueKindBool
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != ValueKindList {
		return nil, false
	}
	items := make([]Value, len(v.list))
	copy(items, v.list)
	return items, true
}

func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != ValueKindMap {
		return nil, false
	}
	m := make(map[string]Value, len(v.m))
	for k, item := range v.m {
		m[k] = item
	}
	return m, true
}

// FromAny converts a decoded JSON value (string, float64, int, bool,
// []any, map[string]any) into a Value. Unsupported types map to null.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case string:
		return StringValue(x)
	case float64:
		return FloatValue(x)
	case int:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case bool:
		return BoolValue(x)
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			items = append(items, FromAny(item))
		}
		return ListValue(items...)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			m[k] = FromAny(item)
		}
		return MapValue(m)
	default:
		return Value{kind: ValueKindNull}
	}
}

// ToAny converts a Value back to a plain JSON-encodable representation.
func (v Value) ToAny() any {
	switch v.kind {
	case ValueKindString:
		return v.str
	case ValueKindFloat:
		return v.num
	case ValueKindInt:
		return v.i64
	case ValueKindBool:
		return v.b
	case ValueKindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.ToAny()
		}
		return items
	case ValueKindMap:
		m := make(map[string]any, len(v.m))
		for k, item := range v.m {
			m[k] = item.ToAny()
		}
		return m
	default:
		return nil
	}
}
