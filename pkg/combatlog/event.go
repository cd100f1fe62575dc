package combatlog

import (
	"encoding/json"
	"fmt"
	"time"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// FieldError is a soft, field-local decode failure. The event that
// carries it is still usable.
// FieldError 是字段级的软解码失败，携带它的事件仍然可用。
type FieldError struct {
	Field string
	Raw   string
	Err   error
}

func (e FieldError) Error() string { return e.Err.Error() }
func (e FieldError) Unwrap() error { return e.Err }

// CombatEvent is a line whose event name has a schema.
// CombatEvent 是事件名具有 schema 的一行日志。
type CombatEvent struct {
	Timestamp string
	// Time is only set when the decoder was given a year.
	Time   time.Time
	Event  string
	Source Unit
	Dest   Unit

	// Fields holds the decoded suffix by field name; Order lists the names
	// present, in schema order.
	Fields map[string]Value
	Order  []string

	// Extra holds suffix tokens beyond the declared arity.
	Extra      []Token
	Mismatches []FieldError
}

// Field returns a decoded suffix field.
func (e *CombatEvent) Field(name string) (Value, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

func (e *CombatEvent) Int(name string) (int64, bool) {
	v, ok := e.Fields[name]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (e *CombatEvent) Float(name string) (float64, bool) {
	v, ok := e.Fields[name]
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Str returns the text form of a field, or "" when it is missing.
func (e *CombatEvent) Str(name string) string {
	v, ok := e.Fields[name]
	if !ok || v.IsAbsent() {
		return ""
	}
	return v.String()
}

func (e *CombatEvent) Bool(name string) bool {
	return e.Fields[name].AsBool()
}

// Degraded reports whether any field failed to decode as declared.
func (e *CombatEvent) Degraded() bool { return len(e.Mismatches) > 0 }

// UnstructuredEvent keeps a line whose event name has no schema. Source
// and Dest are nil when the line is too short to hold the prefix.
// UnstructuredEvent 保存事件名没有 schema 的行。
type UnstructuredEvent struct {
	Timestamp string
	Time      time.Time
	Event     string
	Source    *Unit
	Dest      *Unit
	Tokens    []Token
}

// LineError ties a tokenizer or decoder failure to its input line.
// LineError 将分词或解码失败与其输入行关联。
type LineError struct {
	Seq  uint64
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Seq, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// RecordKind discriminates the variants of a Record.
type RecordKind uint8

const (
	RecordEvent RecordKind = iota
	RecordUnstructured
	RecordError
	RecordSkipped
)

func (k RecordKind) String() string {
	switch k {
	case RecordEvent:
		return "event"
	case RecordUnstructured:
		return "unstructured"
	case RecordError:
		return "error"
	case RecordSkipped:
		return "skipped"
	}
	return fmt.Sprintf("RecordKind(%d)", uint8(k))
}

// Record is the per-line output of decoding. Exactly one of Event,
// Unstructured or Err is set, according to Kind; skipped (blank) lines
// carry none.
// Record 是每行的解码输出，根据 Kind 恰好设置 Event、Unstructured 或 Err 之一。
type Record struct {
	Seq          uint64
	Line         string
	Kind         RecordKind
	Event        *CombatEvent
	Unstructured *UnstructuredEvent
	Err          error
}

// EventName returns the event name of decoded records.
func (r Record) EventName() string {
	switch r.Kind {
	case RecordEvent:
		return r.Event.Event
	case RecordUnstructured:
		return r.Unstructured.Event
	}
	return ""
}

// Units returns the source and destination, when known.
func (r Record) Units() (src, dst *Unit) {
	switch r.Kind {
	case RecordEvent:
		return &r.Event.Source, &r.Event.Dest
	case RecordUnstructured:
		return r.Unstructured.Source, r.Unstructured.Dest
	}
	return nil, nil
}

type unitJSON struct {
	GUID  GUID      `json:"guid"`
	Name  string    `json:"name"`
	Flags UnitFlags `json:"flags"`
	Type  string    `json:"type"`
}

func toUnitJSON(u *Unit) *unitJSON {
	if u == nil {
		return nil
	}
	return &unitJSON{GUID: u.GUID, Name: u.Name, Flags: u.Flags, Type: u.Type().String()}
}

type mismatchJSON struct {
	Field string `json:"field"`
	Raw   string `json:"raw"`
	Error string `json:"error"`
}

type recordJSON struct {
	Seq        uint64           `json:"seq"`
	Kind       string           `json:"kind"`
	Timestamp  string           `json:"timestamp,omitempty"`
	Time       *time.Time       `json:"time,omitempty"`
	Event      string           `json:"event,omitempty"`
	Source     *unitJSON        `json:"source,omitempty"`
	Dest       *unitJSON        `json:"dest,omitempty"`
	Fields     map[string]Value `json:"fields,omitempty"`
	Tokens     []string         `json:"tokens,omitempty"`
	Extra      []string         `json:"extra,omitempty"`
	Mismatches []mismatchJSON   `json:"mismatches,omitempty"`
	Line       string           `json:"line,omitempty"`
	Error      string           `json:"error,omitempty"`
	Class      string           `json:"class,omitempty"`
}

// MarshalJSON renders one record as a flat JSON object.
// MarshalJSON 将一条记录渲染为扁平 JSON 对象。
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Seq: r.Seq, Kind: r.Kind.String()}

	switch r.Kind {
	case RecordEvent:
		e := r.Event
		out.Timestamp = e.Timestamp
		if !e.Time.IsZero() {
			t := e.Time
			out.Time = &t
		}
		out.Event = e.Event
		out.Source = toUnitJSON(&e.Source)
		out.Dest = toUnitJSON(&e.Dest)
		out.Fields = e.Fields
		if len(e.Extra) > 0 {
			out.Extra = Texts(e.Extra)
		}
		for _, m := range e.Mismatches {
			out.Mismatches = append(out.Mismatches, mismatchJSON{Field: m.Field, Raw: m.Raw, Error: m.Error()})
		}

	case RecordUnstructured:
		u := r.Unstructured
		out.Timestamp = u.Timestamp
		if !u.Time.IsZero() {
			t := u.Time
			out.Time = &t
		}
		out.Event = u.Event
		out.Source = toUnitJSON(u.Source)
		out.Dest = toUnitJSON(u.Dest)
		out.Tokens = Texts(u.Tokens)

	case RecordError:
		out.Line = r.Line
		if r.Err != nil {
			out.Error = r.Err.Error()
			if class := errs.Classify(r.Err); class != nil {
				out.Class = class.Error()
			}
		}
	}
	return json.Marshal(out)
}
