package combatlog

import (
	"fmt"
	"strconv"
	"time"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// PrefixLen is the number of common source/destination fields that follow
// the event name.
const PrefixLen = 6

// Decoder turns tokenized lines into records. It is stateless per line
// and safe for concurrent use.
// Decoder 将分词后的行转换为记录，逐行无状态，可并发使用。
type Decoder struct {
	tok    *Tokenizer
	reg    *Registry
	year   int
	loc    *time.Location
	times  bool
	strict bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRegistry replaces the default schema registry.
func WithRegistry(r *Registry) Option {
	return func(d *Decoder) {
		if r != nil {
			d.reg = r
		}
	}
}

// WithYear enables absolute timestamps using the given year and location.
// WithYear 使用给定的年份和时区启用绝对时间戳。
func WithYear(year int, loc *time.Location) Option {
	return func(d *Decoder) {
		d.year = year
		d.loc = loc
		d.times = true
	}
}

// WithStrictArity makes a recognized event whose suffix length falls
// outside the schema's [MinArity, Arity] range a line error instead of a
// degraded event.
func WithStrictArity(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

// NewDecoder creates a decoder over DefaultRegistry unless overridden.
// NewDecoder 创建解码器，默认使用 DefaultRegistry。
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{tok: NewTokenizer(), reg: DefaultRegistry()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) Registry() *Registry { return d.reg }

// DecodeLine tokenizes and decodes one line. It never fails: tokenizer and
// decoder errors come back as a RecordError, blank lines as RecordSkipped.
// DecodeLine 分词并解码一行。它从不失败：错误以 RecordError 返回，空行以 RecordSkipped 返回。
func (d *Decoder) DecodeLine(seq uint64, line string) Record {
	if IsBlank(line) {
		return Record{Seq: seq, Line: line, Kind: RecordSkipped}
	}
	raw, tokens, err := d.tok.Tokenize(line)
	if err != nil {
		return errorRecord(seq, line, err)
	}
	rec := d.Decode(raw, tokens)
	rec.Seq = seq
	rec.Line = line
	if rec.Kind == RecordError {
		rec.Err = &LineError{Seq: seq, Line: line, Err: rec.Err}
	}
	return rec
}

func errorRecord(seq uint64, line string, err error) Record {
	return Record{
		Seq:  seq,
		Line: line,
		Kind: RecordError,
		Err:  &LineError{Seq: seq, Line: line, Err: err},
	}
}

// Decode maps the body tokens of one line to a record. Token 0 is the
// event name.
// Decode 将一行的主体令牌映射为记录，第 0 个令牌为事件名。
func (d *Decoder) Decode(raw RawLine, tokens []Token) Record {
	if len(tokens) == 0 || tokens[0].IsList || tokens[0].Nil || tokens[0].Text == "" {
		return Record{Kind: RecordError, Err: errs.ErrEmptyEventName}
	}
	name := tokens[0].Text
	rest := tokens[1:]

	schema, known := d.reg.Lookup(name)
	if !known {
		return Record{Kind: RecordUnstructured, Unstructured: d.unstructured(raw, name, rest)}
	}
	if len(rest) < PrefixLen {
		return Record{Kind: RecordError, Err: errs.NewTruncatedPrefixError(name, len(rest))}
	}

	ev := &CombatEvent{
		Timestamp: raw.Timestamp,
		Event:     name,
		Fields:    make(map[string]Value, len(schema.Fields)),
		Order:     make([]string, 0, len(schema.Fields)),
	}
	if d.times {
		t, err := ParseTimestamp(raw.Timestamp, d.year, d.loc)
		if err != nil {
			ev.Mismatches = append(ev.Mismatches, FieldError{
				Field: "timestamp",
				Raw:   raw.Timestamp,
				Err:   errs.NewFieldError("timestamp", "timestamp", raw.Timestamp),
			})
		} else {
			ev.Time = t
		}
	}

	var bad []FieldError
	ev.Source, bad = decodeUnit("source", rest[0:3], bad)
	ev.Dest, bad = decodeUnit("dest", rest[3:6], bad)
	ev.Mismatches = append(ev.Mismatches, bad...)

	suffix := rest[PrefixLen:]
	if d.strict && (len(suffix) < schema.MinArity() || len(suffix) > schema.Arity()) {
		return Record{Kind: RecordError, Err: fmt.Errorf("%w: event=%s has %d suffix fields, want %d..%d",
			errs.ErrFieldTypeMismatch, name, len(suffix), schema.MinArity(), schema.Arity())}
	}

	for i, spec := range schema.Fields {
		if i >= len(suffix) {
			if !spec.Optional {
				ev.Mismatches = append(ev.Mismatches, FieldError{Field: spec.Name, Err: errs.NewMissingFieldError(spec.Name)})
			}
			continue
		}
		v, err := decodeField(spec, suffix[i])
		if err != nil {
			ev.Mismatches = append(ev.Mismatches, FieldError{Field: spec.Name, Raw: suffix[i].String(), Err: err})
		}
		ev.Fields[spec.Name] = v
		ev.Order = append(ev.Order, spec.Name)
	}
	if len(suffix) > len(schema.Fields) {
		ev.Extra = append([]Token(nil), suffix[len(schema.Fields):]...)
	}

	return Record{Kind: RecordEvent, Event: ev}
}

func (d *Decoder) unstructured(raw RawLine, name string, rest []Token) *UnstructuredEvent {
	u := &UnstructuredEvent{Timestamp: raw.Timestamp, Event: name}
	if d.times {
		if t, err := ParseTimestamp(raw.Timestamp, d.year, d.loc); err == nil {
			u.Time = t
		}
	}
	if len(rest) < PrefixLen {
		u.Tokens = rest
		return u
	}
	src, _ := decodeUnit("source", rest[0:3], nil)
	dst, _ := decodeUnit("dest", rest[3:6], nil)
	u.Source, u.Dest = &src, &dst
	u.Tokens = rest[PrefixLen:]
	return u
}

// decodeUnit reads a GUID, name, flags triple. A nil name becomes "" and
// an unparsable mask becomes 0 with a mismatch recorded.
func decodeUnit(side string, t []Token, bad []FieldError) (Unit, []FieldError) {
	u := Unit{GUID: GUID(t[0].Text)}
	if !t[1].Nil {
		u.Name = t[1].Text
	}
	if t[2].Nil {
		return u, bad
	}
	flags, err := ParseUnitFlags(t[2].Text)
	if err != nil {
		field := side + "Flags"
		return u, append(bad, FieldError{Field: field, Raw: t[2].Text, Err: errs.NewFieldError(field, FieldFlags.String(), t[2].Text)})
	}
	u.Flags = flags
	return u, bad
}

// decodeField converts one token according to its field spec. On a
// mismatch the returned value is KindRaw and err wraps
// ErrFieldTypeMismatch.
// decodeField 按字段声明转换一个令牌。类型不匹配时返回 KindRaw 值和错误。
func decodeField(spec FieldSpec, t Token) (Value, error) {
	if t.Nil {
		return nilValue(spec), nil
	}
	if t.IsList {
		if spec.Kind == FieldList {
			return Value{Kind: KindList, List: t.List}, nil
		}
		return mismatch(spec, t.String())
	}

	s := t.Text
	switch spec.Kind {
	case FieldString:
		return StringValue(s), nil

	case FieldInteger:
		n, err := parseInt(s)
		if err != nil {
			return mismatch(spec, s)
		}
		return IntValue(n), nil

	case FieldFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return mismatch(spec, s)
		}
		return FloatValue(f), nil

	case FieldGUID:
		return Value{Kind: KindGUID, Str: s}, nil

	case FieldFlags:
		u, err := parseUint(s, 64)
		if err != nil {
			return mismatch(spec, s)
		}
		return Value{Kind: KindFlags, Uint: u}, nil

	case FieldEnum:
		v, err := spec.Enum.Match(s)
		if err != nil {
			return mismatch(spec, s)
		}
		return v, nil

	case FieldList:
		return Value{Kind: KindList, List: []Token{t}}, nil

	case FieldSchool:
		u, err := parseUint(s, 32)
		if err != nil {
			return mismatch(spec, s)
		}
		return Value{Kind: KindSchool, Uint: u}, nil

	case FieldBool:
		// Any present token is true; only nil means false.
		return BoolValue(true), nil
	}
	return mismatch(spec, s)
}

func mismatch(spec FieldSpec, raw string) (Value, error) {
	return RawValue(raw), errs.NewFieldError(spec.Name, spec.Kind.String(), raw)
}

// nilValue applies the field's NilPolicy to a nil sentinel.
func nilValue(spec FieldSpec) Value {
	switch spec.NilDefault {
	case NilFalse:
		return Value{Kind: KindBool, Defaulted: true}
	case NilZero:
		v := Value{Defaulted: true}
		switch spec.Kind {
		case FieldInteger:
			v.Kind = KindInt
		case FieldFloat:
			v.Kind = KindFloat
		case FieldFlags:
			v.Kind = KindFlags
		case FieldSchool:
			v.Kind = KindSchool
		case FieldBool:
			v.Kind = KindBool
		case FieldList:
			v.Kind = KindList
			v.List = []Token{}
		case FieldEnum:
			v.Kind = KindEnum
			v.Coded = spec.Enum != nil && spec.Enum.Coded()
		case FieldGUID:
			v.Kind = KindGUID
		default:
			v.Kind = KindString
		}
		return v
	}
	return Absent
}

var defaultDecoder = NewDecoder()

// DecodeLine decodes one line with the default registry.
// DecodeLine 使用默认 registry 解码一行。
func DecodeLine(seq uint64, line string) Record {
	return defaultDecoder.DecodeLine(seq, line)
}
