package combatlog

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// SchemaFile is the on-disk form of a schema extension.
// SchemaFile 是 schema 扩展文件的磁盘格式。
type SchemaFile struct {
	Enums       map[string][]string        `yaml:"enums"`
	Events      map[string][]FieldSpecYAML `yaml:"events"`
	NilDefaults map[string]string          `yaml:"nil_defaults"`
}

// FieldSpecYAML is one field entry of a SchemaFile.
type FieldSpecYAML struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Enum     string `yaml:"enum,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Nil      string `yaml:"nil,omitempty"`
}

// LoadSchemaYAML extends the default registry with a YAML schema file.
// LoadSchemaYAML 使用 YAML schema 文件扩展默认 registry。
func LoadSchemaYAML(rd io.Reader) (*Registry, error) {
	return DefaultRegistry().LoadYAML(rd)
}

// LoadYAML returns a new registry with the events of a YAML schema file
// added or replaced. Enum fields reference a set by name, either one
// declared under enums or a built-in one. When enum is omitted the field
// name is used.
// LoadYAML 返回添加或替换了 YAML 文件中事件的新 registry。
func (r *Registry) LoadYAML(rd io.Reader) (*Registry, error) {
	var f SchemaFile
	dec := yaml.NewDecoder(rd)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSchema, err)
	}

	enums := make(map[string]*EnumSet, len(f.Enums))
	for name, values := range f.Enums {
		enums[name] = NewEnumSet(name, values...)
	}

	names := make([]string, 0, len(f.Events))
	for name := range f.Events {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]Schema, 0, len(names))
	for _, event := range names {
		s := Schema{Event: event}
		for _, fy := range f.Events[event] {
			spec, err := fy.toSpec(enums)
			if err != nil {
				return nil, errs.NewSchemaError(event, err.Error())
			}
			s.Fields = append(s.Fields, spec)
		}
		schemas = append(schemas, s)
	}

	next, err := r.Extend(schemas...)
	if err != nil {
		return nil, err
	}

	if len(f.NilDefaults) > 0 {
		policies, err := ParseNilDefaults(f.NilDefaults)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSchema, err)
		}
		next = next.WithNilDefaults(policies)
	}
	return next, nil
}

func (fy FieldSpecYAML) toSpec(enums map[string]*EnumSet) (FieldSpec, error) {
	kind, err := ParseFieldKind(fy.Kind)
	if err != nil {
		return FieldSpec{}, err
	}
	nilp, err := ParseNilPolicy(fy.Nil)
	if err != nil {
		return FieldSpec{}, err
	}
	spec := FieldSpec{Name: fy.Name, Kind: kind, Optional: fy.Optional, NilDefault: nilp}
	if kind == FieldBool && fy.Nil == "" {
		spec.NilDefault = NilFalse
	}

	if kind == FieldEnum {
		ref := fy.Enum
		if ref == "" {
			ref = fy.Name
		}
		if set, ok := enums[ref]; ok {
			spec.Enum = set
		} else if set, ok := LookupEnum(ref); ok {
			spec.Enum = set
		} else {
			return FieldSpec{}, fmt.Errorf("field %q references unknown enum %q", fy.Name, ref)
		}
	}
	return spec, nil
}

// ParseNilDefaults converts a field-name to policy-name map.
func ParseNilDefaults(in map[string]string) (map[string]NilPolicy, error) {
	out := make(map[string]NilPolicy, len(in))
	for field, name := range in {
		p, err := ParseNilPolicy(name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", field, err)
		}
		out[field] = p
	}
	return out, nil
}

// Export returns the YAML form of the named events, or of every event when
// none are named. Enum sets that are not built in are included so the
// result loads back with LoadYAML. Unknown names are skipped.
// Export 返回指定事件（未指定时为全部事件）的 YAML 形式。
func (r *Registry) Export(events ...string) SchemaFile {
	if len(events) == 0 {
		events = r.Events()
	}
	out := SchemaFile{Events: make(map[string][]FieldSpecYAML, len(events))}
	for _, event := range events {
		s, ok := r.Lookup(event)
		if !ok {
			continue
		}
		fields := make([]FieldSpecYAML, 0, len(s.Fields))
		for _, f := range s.Fields {
			fy := FieldSpecYAML{Name: f.Name, Kind: f.Kind.String(), Optional: f.Optional}
			if f.Enum != nil {
				fy.Enum = f.Enum.Name
				if builtin, ok := LookupEnum(f.Enum.Name); !ok || builtin != f.Enum {
					if out.Enums == nil {
						out.Enums = make(map[string][]string)
					}
					out.Enums[f.Enum.Name] = f.Enum.Values()
				}
			}
			defaultNil := NilAbsent
			if f.Kind == FieldBool {
				defaultNil = NilFalse
			}
			if f.NilDefault != defaultNil {
				fy.Nil = f.NilDefault.String()
			}
			fields = append(fields, fy)
		}
		out.Events[event] = fields
	}
	return out
}
