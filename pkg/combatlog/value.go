package combatlog

import (
	"encoding/json"
	"strconv"
)

// ValueKind tags which member of a Value is meaningful.
type ValueKind uint8

const (
	KindAbsent ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindFlags
	KindEnum
	KindGUID
	KindList
	// KindRaw marks a field that failed to parse as its declared kind and
	// carries the original text in Str.
	KindRaw
	// KindSchool is a SpellSchool mask held in Uint.
	KindSchool
)

var valueKindNames = [...]string{
	KindAbsent: "absent",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindFlags:  "flags",
	KindEnum:   "enum",
	KindGUID:   "guid",
	KindList:   "list",
	KindRaw:    "raw",
	KindSchool: "school",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one decoded suffix field.
// Value 是一个已解码的后缀字段。
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	List  []Token

	// Unknown is set on enum values outside the declared set.
	Unknown bool
	// Coded is set on enum values read from an integer code held in Int.
	Coded bool
	// Defaulted is set when a nil sentinel was replaced by the field's
	// NilPolicy default.
	Defaulted bool
}

// Absent is the value carried by a nil sentinel with no default.
var Absent = Value{Kind: KindAbsent}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func IntValue(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func RawValue(s string) Value    { return Value{Kind: KindRaw, Str: s} }

func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// AsInt returns the value as an integer where that is meaningful.
// AsInt 在有意义时将值作为整数返回。
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFlags, KindSchool:
		return int64(v.Uint), true
	case KindEnum:
		return v.Int, v.Coded
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindFloat:
		return int64(v.Float), true
	}
	return 0, false
}

func (v Value) AsFloat() (float64, bool) {
	if v.Kind == KindFloat {
		return v.Float, true
	}
	n, ok := v.AsInt()
	return float64(n), ok
}

// AsBool reports truthiness: absent is false, numbers are true when non-zero.
func (v Value) AsBool() bool {
	switch v.Kind {
	case KindAbsent:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFlags, KindSchool:
		return v.Uint != 0
	case KindFloat:
		return v.Float != 0
	}
	return v.Str != ""
}

// String renders the value the way it would appear in a text report.
func (v Value) String() string {
	switch v.Kind {
	case KindAbsent:
		return NilLiteral
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindFlags:
		return "0x" + strconv.FormatUint(v.Uint, 16)
	case KindSchool:
		return SpellSchool(v.Uint).String()
	case KindList:
		return "[" + Join(v.List) + "]"
	}
	return v.Str
}

// MarshalJSON emits the natural JSON form: null, number, bool or string.
// Unknown enums and raw fields are wrapped so consumers can tell them apart.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBool:
		return []byte(strconv.FormatBool(v.Bool)), nil
	case KindFlags:
		return []byte(strconv.FormatUint(v.Uint, 10)), nil
	case KindSchool:
		return json.Marshal(SpellSchool(v.Uint).String())
	case KindList:
		return json.Marshal(Texts(v.List))
	case KindEnum:
		if v.Unknown {
			return json.Marshal(map[string]string{"unknown": v.Str})
		}
		return json.Marshal(v.Str)
	case KindRaw:
		return json.Marshal(map[string]string{"raw": v.Str})
	}
	return json.Marshal(v.Str)
}
