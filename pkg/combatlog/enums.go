package combatlog

import (
	"sort"
	"strconv"
)

// EnumSet is the declared value set of an enum field. String enums match
// the raw text case-sensitively. Coded enums parse the raw text as an
// integer first and map the code to a name.
// EnumSet 是枚举字段声明的取值集合。
type EnumSet struct {
	Name   string
	values map[string]struct{}
	codes  map[int64]string
	// Open marks sets known to be incomplete; unknown values are still
	// kept, only the warning is suppressed.
	Open bool
}

// NewEnumSet builds a string enum set.
// NewEnumSet 构建字符串枚举集合。
func NewEnumSet(name string, values ...string) *EnumSet {
	e := &EnumSet{Name: name, values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		e.values[v] = struct{}{}
	}
	return e
}

// NewCodedEnumSet builds an integer-coded enum set.
func NewCodedEnumSet(name string, codes map[int64]string) *EnumSet {
	e := &EnumSet{Name: name, codes: make(map[int64]string, len(codes))}
	for k, v := range codes {
		e.codes[k] = v
	}
	return e
}

func (e *EnumSet) Coded() bool { return e.codes != nil }

// Contains reports whether raw is a declared member.
func (e *EnumSet) Contains(raw string) bool {
	if e.Coded() {
		n, err := parseInt(raw)
		if err != nil {
			return false
		}
		_, ok := e.codes[n]
		return ok
	}
	_, ok := e.values[raw]
	return ok
}

// Values lists the declared members in a stable order.
func (e *EnumSet) Values() []string {
	if e.Coded() {
		keys := make([]int64, 0, len(e.codes))
		for k := range e.codes {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = e.codes[k]
		}
		return out
	}
	out := make([]string, 0, len(e.values))
	for v := range e.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Match converts raw text into an enum Value. It fails only when a coded
// enum receives a non-integer; undeclared members come back with
// Unknown set.
// Match 将原始文本转换为枚举值。仅当编码枚举收到非整数时失败。
func (e *EnumSet) Match(raw string) (Value, error) {
	if e.Coded() {
		n, err := parseInt(raw)
		if err != nil {
			return Value{}, err
		}
		name, ok := e.codes[n]
		if !ok {
			return Value{Kind: KindEnum, Str: strconv.FormatInt(n, 10), Int: n, Coded: true, Unknown: true}, nil
		}
		return Value{Kind: KindEnum, Str: name, Int: n, Coded: true}, nil
	}
	_, ok := e.values[raw]
	return Value{Kind: KindEnum, Str: raw, Unknown: !ok}, nil
}

// Built-in enum sets.
var (
	EnvironmentalTypes = NewEnumSet("environmentalType",
		"DROWNING", "FALLING", "FATIGUE", "FIRE", "LAVA", "SLIME")

	MissTypes = NewEnumSet("missType",
		"MISS", "DODGE", "PARRY", "IMMUNE", "ABSORB", "BLOCK",
		"DEFLECT", "EVADE", "REFLECT", "RESIST")

	AuraTypes = NewEnumSet("auraType", "BUFF", "DEBUFF")

	// FailedTypes holds the common cast failure texts. The client emits
	// many more, localized, so the set is open.
	FailedTypes = func() *EnumSet {
		e := NewEnumSet("failedType",
			"Interrupted",
			"Not yet recovered",
			"No target",
			"Invalid target",
			"Item is not ready yet",
			"Another action is in progress",
			"Out of range")
		e.Open = true
		return e
	}()

	PowerTypes = NewCodedEnumSet("powerType", map[int64]string{
		-2: "HEALTH",
		-1: "NONE",
		0:  "MANA",
		1:  "RAGE",
		2:  "FOCUS",
		3:  "ENERGY",
		4:  "COMBOPOINTS",
		5:  "RUNES",
		6:  "RUNIC_POWER",
	})
)

var builtinEnums = map[string]*EnumSet{
	EnvironmentalTypes.Name: EnvironmentalTypes,
	MissTypes.Name:          MissTypes,
	AuraTypes.Name:          AuraTypes,
	FailedTypes.Name:        FailedTypes,
	PowerTypes.Name:         PowerTypes,
}

// LookupEnum returns a built-in enum set by name.
func LookupEnum(name string) (*EnumSet, bool) {
	e, ok := builtinEnums[name]
	return e, ok
}
