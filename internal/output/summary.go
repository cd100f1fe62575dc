package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/livp123/wowclp/internal/stats"
	"github.com/livp123/wowclp/internal/utils/fmtutil"
)

// TopEvents is how many event names the text summary lists.
const TopEvents = 10

// WriteSummary prints a run summary. The json format writes the Summary
// object; anything else writes an aligned text report.
// WriteSummary 输出运行汇总。
func WriteSummary(w io.Writer, s stats.Summary, format string, color bool) error {
	if strings.EqualFold(format, FormatJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	title := lr.NewStyle().Bold(true).Underline(true)
	label := lr.NewStyle().Foreground(lipgloss.Color("245"))
	good := lr.NewStyle().Foreground(lipgloss.Color("114"))
	bad := lr.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	warn := lr.NewStyle().Foreground(lipgloss.Color("220"))

	var b strings.Builder
	row := func(name, v string, st lipgloss.Style) {
		b.WriteString(label.Render(fmt.Sprintf("%-22s", name)))
		b.WriteString(st.Render(v))
		b.WriteByte('\n')
	}
	count := fmtutil.FormatCount
	plain := lr.NewStyle()

	b.WriteString(title.Render("Summary") + "\n")
	row("lines", count(s.Lines), plain)
	row("events", count(s.Events), good)
	row("unstructured", count(s.Unstructured), pick(s.Unstructured > 0, warn, plain))
	row("errors", count(s.Errors), pick(s.Errors > 0, bad, plain))
	row("skipped", count(s.Skipped), plain)
	row("degraded", count(s.Degraded), pick(s.Degraded > 0, warn, plain))
	row("field mismatches", count(s.Mismatches), plain)
	row("extra tokens", count(s.ExtraFields), plain)
	row("elapsed", fmtutil.FormatDuration(s.Elapsed), plain)
	row("throughput", fmtutil.FormatRate(s.LinesPerSecond(), "lines/s"), plain)

	if len(s.ByClass) > 0 {
		b.WriteString("\n" + title.Render("By class") + "\n")
		for _, c := range stats.Top(s.ByClass, 0) {
			row(c.Name, count(c.Count), warn)
		}
	}

	if len(s.ByEvent) > 0 {
		b.WriteString("\n" + title.Render("Top events") + "\n")
		for _, c := range stats.Top(s.ByEvent, TopEvents) {
			st := plain
			if _, unknown := s.Unknown[c.Name]; unknown {
				st = warn
			}
			b.WriteString(st.Render(fmt.Sprintf("%8d  %s", c.Count, c.Name)) + "\n")
		}
	}

	if len(s.Failures) > 0 {
		b.WriteString("\n" + title.Render("Failures") + "\n")
		for _, f := range s.Failures {
			b.WriteString(bad.Render(fmt.Sprintf("line %d", f.Seq)))
			b.WriteString(" " + f.Error + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func pick(cond bool, yes, no lipgloss.Style) lipgloss.Style {
	if cond {
		return yes
	}
	return no
}
