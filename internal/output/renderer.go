package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// Formats accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Renderer writes decoded records to an output stream.
type Renderer interface {
	Render(rec combatlog.Record) error
	// Flush writes any buffered output.
	Flush() error
}

// Options controls which records are written and how.
type Options struct {
	// IncludeErrors writes error records; skipped lines are never written.
	IncludeErrors bool
	Color         bool
}

// New returns a renderer for format writing to w.
// New 返回向 w 写入 format 格式的渲染器。
func New(format string, w io.Writer, opts Options) (Renderer, error) {
	var r Renderer
	switch strings.ToLower(format) {
	case "", FormatJSON, "jsonl":
		r = NewJSONRenderer(w)
	case FormatText:
		r = NewTextRenderer(w, opts.Color)
	default:
		return nil, errs.NewConfigError("output.format", format)
	}
	return &selective{next: r, includeErrors: opts.IncludeErrors}, nil
}

type selective struct {
	next          Renderer
	includeErrors bool
}

func (s *selective) Render(rec combatlog.Record) error {
	switch rec.Kind {
	case combatlog.RecordSkipped:
		return nil
	case combatlog.RecordError:
		if !s.includeErrors {
			return nil
		}
	}
	return s.next.Render(rec)
}

func (s *selective) Flush() error { return s.next.Flush() }

// ---------------------------------------------------------------------------
// JSON Renderer (one object per line, for piping)
// ---------------------------------------------------------------------------

// JSONRenderer writes each record as a single JSON object per line.
type JSONRenderer struct {
	buf *bufio.Writer
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONRenderer{buf: buf, enc: enc}
}

func (r *JSONRenderer) Render(rec combatlog.Record) error {
	return r.enc.Encode(rec)
}

func (r *JSONRenderer) Flush() error { return r.buf.Flush() }

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

type textStyles struct {
	seq, ts, unit, arrow, field, value lipgloss.Style
	damage, heal, aura, cast, other    lipgloss.Style
	unknown, degraded, failed          lipgloss.Style
}

func newTextStyles(lr *lipgloss.Renderer) textStyles {
	return textStyles{
		seq:      lr.NewStyle().Foreground(lipgloss.Color("240")),
		ts:       lr.NewStyle().Foreground(lipgloss.Color("245")),
		unit:     lr.NewStyle().Foreground(lipgloss.Color("39")),
		arrow:    lr.NewStyle().Foreground(lipgloss.Color("240")),
		field:    lr.NewStyle().Foreground(lipgloss.Color("245")).Faint(true),
		value:    lr.NewStyle(),
		damage:   lr.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		heal:     lr.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		aura:     lr.NewStyle().Foreground(lipgloss.Color("141")),
		cast:     lr.NewStyle().Foreground(lipgloss.Color("75")),
		other:    lr.NewStyle().Foreground(lipgloss.Color("252")),
		unknown:  lr.NewStyle().Foreground(lipgloss.Color("220")),
		degraded: lr.NewStyle().Foreground(lipgloss.Color("220")).Underline(true),
		failed: lr.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true),
	}
}

// TextRenderer prints one line per record with event-category colors.
type TextRenderer struct {
	buf   *bufio.Writer
	style textStyles
}

// NewTextRenderer returns a Renderer that writes text to w. Without color
// the output is plain ASCII regardless of the terminal.
func NewTextRenderer(w io.Writer, color bool) *TextRenderer {
	buf := bufio.NewWriter(w)
	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &TextRenderer{buf: buf, style: newTextStyles(lr)}
}

func (r *TextRenderer) Render(rec combatlog.Record) error {
	var b strings.Builder
	b.WriteString(r.style.seq.Render(fmt.Sprintf("#%-6d", rec.Seq)))
	b.WriteByte(' ')

	switch rec.Kind {
	case combatlog.RecordEvent:
		ev := rec.Event
		r.head(&b, ev.Timestamp, r.eventStyle(ev.Event).Render(ev.Event), &ev.Source, &ev.Dest)
		for _, name := range ev.Order {
			r.pair(&b, name, ev.Fields[name], isMismatch(ev, name))
		}
		if len(ev.Extra) > 0 {
			b.WriteString(" " + r.style.degraded.Render("+["+combatlog.Join(ev.Extra)+"]"))
		}

	case combatlog.RecordUnstructured:
		un := rec.Unstructured
		r.head(&b, un.Timestamp, r.style.unknown.Render(un.Event+"?"), un.Source, un.Dest)
		if len(un.Tokens) > 0 {
			b.WriteString(" " + r.style.value.Render(combatlog.Join(un.Tokens)))
		}

	case combatlog.RecordError:
		class := "error"
		if c := errs.Classify(rec.Err); c != nil {
			class = c.Error()
		}
		b.WriteString(r.style.failed.Render(strings.ToUpper(class)))
		if rec.Err != nil {
			b.WriteString(" " + rec.Err.Error())
		}

	default:
		return nil
	}

	b.WriteByte('\n')
	_, err := r.buf.WriteString(b.String())
	return err
}

func (r *TextRenderer) Flush() error { return r.buf.Flush() }

func (r *TextRenderer) head(b *strings.Builder, ts, event string, src, dst *combatlog.Unit) {
	b.WriteString(r.style.ts.Render(ts))
	b.WriteByte(' ')
	b.WriteString(event)
	if src != nil && dst != nil {
		b.WriteString(" " + r.style.unit.Render(unitName(src)))
		b.WriteString(r.style.arrow.Render(" > "))
		b.WriteString(r.style.unit.Render(unitName(dst)))
	}
}

func (r *TextRenderer) pair(b *strings.Builder, name string, v combatlog.Value, bad bool) {
	b.WriteByte(' ')
	b.WriteString(r.style.field.Render(name + "="))
	text := v.String()
	if v.Kind == combatlog.KindString && strings.ContainsAny(text, " ,") {
		text = `"` + text + `"`
	}
	if bad || v.Unknown {
		b.WriteString(r.style.degraded.Render(text))
		return
	}
	b.WriteString(r.style.value.Render(text))
}

func (r *TextRenderer) eventStyle(event string) lipgloss.Style {
	switch {
	case strings.HasSuffix(event, "_DAMAGE"), strings.HasSuffix(event, "_MISSED"),
		event == "UNIT_DIED", event == "PARTY_KILL", event == "UNIT_DESTROYED":
		return r.style.damage
	case strings.HasSuffix(event, "_HEAL"), strings.HasSuffix(event, "_ENERGIZE"):
		return r.style.heal
	case strings.Contains(event, "_AURA_"):
		return r.style.aura
	case strings.Contains(event, "_CAST_"):
		return r.style.cast
	default:
		return r.style.other
	}
}

func unitName(u *combatlog.Unit) string {
	if u.Name != "" {
		return u.Name
	}
	if u.GUID.IsNone() {
		return "-"
	}
	return string(u.GUID)
}

func isMismatch(ev *combatlog.CombatEvent, name string) bool {
	for _, m := range ev.Mismatches {
		if m.Field == name {
			return true
		}
	}
	return false
}
