package combatlog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// FieldKind is the declared type of one suffix field.
// FieldKind 是一个后缀字段声明的类型。
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInteger
	FieldFloat
	FieldGUID
	FieldFlags
	FieldEnum
	FieldList
	FieldBool
	FieldSchool
)

var fieldKindNames = map[FieldKind]string{
	FieldString:  "string",
	FieldInteger: "integer",
	FieldFloat:   "float",
	FieldGUID:    "guid",
	FieldFlags:   "flags",
	FieldEnum:    "enum",
	FieldList:    "list",
	FieldBool:    "bool",
	FieldSchool:  "school",
}

func (k FieldKind) String() string {
	if s, ok := fieldKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FieldKind(%d)", uint8(k))
}

// ParseFieldKind accepts the names printed by FieldKind.String plus a few
// common aliases.
func ParseFieldKind(s string) (FieldKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str":
		return FieldString, nil
	case "integer", "int":
		return FieldInteger, nil
	case "float", "number":
		return FieldFloat, nil
	case "guid":
		return FieldGUID, nil
	case "flags", "bitmask":
		return FieldFlags, nil
	case "enum":
		return FieldEnum, nil
	case "list":
		return FieldList, nil
	case "bool", "boolean":
		return FieldBool, nil
	case "school", "spellschool":
		return FieldSchool, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// NilPolicy decides what a bare nil turns into for a given field.
// NilPolicy 决定某个字段中的 nil 被解码为何值。
type NilPolicy uint8

const (
	// NilAbsent keeps nil as the absent marker.
	NilAbsent NilPolicy = iota
	// NilFalse turns nil into boolean false.
	NilFalse
	// NilZero turns nil into the zero value of the field kind.
	NilZero
)

func (p NilPolicy) String() string {
	switch p {
	case NilFalse:
		return "false"
	case NilZero:
		return "zero"
	default:
		return "absent"
	}
}

func ParseNilPolicy(s string) (NilPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absent":
		return NilAbsent, nil
	case "false":
		return NilFalse, nil
	case "zero", "0":
		return NilZero, nil
	}
	return 0, fmt.Errorf("unknown nil policy %q", s)
}

// FieldSpec describes one positional suffix field.
type FieldSpec struct {
	Name string
	Kind FieldKind
	// Enum is required when Kind is FieldEnum.
	Enum *EnumSet
	// Optional fields may be missing from the end of the line.
	Optional   bool
	NilDefault NilPolicy
}

// Schema is the ordered field list that follows the 6-field prefix of one
// event name.
// Schema 是某个事件名在 6 字段前缀之后的有序字段列表。
type Schema struct {
	Event  string
	Fields []FieldSpec
}

// Arity is the number of declared suffix fields.
func (s *Schema) Arity() int { return len(s.Fields) }

// MinArity is the number of suffix fields that must be present.
func (s *Schema) MinArity() int {
	n := 0
	for _, f := range s.Fields {
		if f.Optional {
			break
		}
		n++
	}
	return n
}

// Field returns the spec for a named field.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (s *Schema) validate() error {
	if strings.TrimSpace(s.Event) == "" {
		return errs.NewSchemaError("<empty>", "event name is empty")
	}
	seen := make(map[string]struct{}, len(s.Fields))
	optional := false
	for i, f := range s.Fields {
		if f.Name == "" {
			return errs.NewSchemaError(s.Event, fmt.Sprintf("field %d has no name", i))
		}
		if _, dup := seen[f.Name]; dup {
			return errs.NewSchemaError(s.Event, fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		if f.Kind == FieldEnum && f.Enum == nil {
			return errs.NewSchemaError(s.Event, fmt.Sprintf("enum field %q has no value set", f.Name))
		}
		if _, ok := fieldKindNames[f.Kind]; !ok {
			return errs.NewSchemaError(s.Event, fmt.Sprintf("field %q has invalid kind %d", f.Name, f.Kind))
		}
		if optional && !f.Optional {
			return errs.NewSchemaError(s.Event, fmt.Sprintf("required field %q follows an optional one", f.Name))
		}
		optional = optional || f.Optional
	}
	return nil
}

func (s Schema) clone() *Schema {
	c := &Schema{Event: s.Event, Fields: make([]FieldSpec, len(s.Fields))}
	copy(c.Fields, s.Fields)
	return c
}

// Registry maps event names to schemas. It is immutable once built and
// safe for concurrent lookups.
// Registry 将事件名映射到 schema，构建后不可变，可并发查询。
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry validates and indexes the given schemas. A later schema
// with the same event name replaces an earlier one.
// NewRegistry 校验并索引给定的 schema，同名的后者覆盖前者。
func NewRegistry(schemas ...Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if err := s.validate(); err != nil {
			return nil, err
		}
		r.schemas[s.Event] = s.clone()
	}
	return r, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the built-in 3.3.5 event vocabulary.
// DefaultRegistry 返回内置的 3.3.5 事件词汇表。
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistry(builtinSchemas()...)
		if err != nil {
			panic(fmt.Sprintf("combatlog: built-in schema table is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup returns the schema for an event name.
func (r *Registry) Lookup(event string) (*Schema, bool) {
	s, ok := r.schemas[event]
	return s, ok
}

// Extend returns a new registry with the given schemas added or replacing
// existing ones. The receiver is not modified.
// Extend 返回添加或替换了给定 schema 的新 registry，接收者不变。
func (r *Registry) Extend(schemas ...Schema) (*Registry, error) {
	next := &Registry{schemas: make(map[string]*Schema, len(r.schemas)+len(schemas))}
	for k, v := range r.schemas {
		next.schemas[k] = v
	}
	for _, s := range schemas {
		if err := s.validate(); err != nil {
			return nil, err
		}
		next.schemas[s.Event] = s.clone()
	}
	return next, nil
}

// WithNilDefaults returns a new registry where every field whose name is
// in policies uses that nil policy.
// WithNilDefaults 返回新的 registry，其中名称在 policies 中的字段使用对应的 nil 策略。
func (r *Registry) WithNilDefaults(policies map[string]NilPolicy) *Registry {
	if len(policies) == 0 {
		return r
	}
	next := &Registry{schemas: make(map[string]*Schema, len(r.schemas))}
	for k, v := range r.schemas {
		c := v.clone()
		for i := range c.Fields {
			if p, ok := policies[c.Fields[i].Name]; ok {
				c.Fields[i].NilDefault = p
			}
		}
		next.schemas[k] = c
	}
	return next
}

// Events lists the registered event names in sorted order.
func (r *Registry) Events() []string {
	out := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int { return len(r.schemas) }
