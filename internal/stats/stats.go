package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// DefaultMaxFailures caps the failure side list kept for manual review.
const DefaultMaxFailures = 100

// Failure is one failed line kept for review.
type Failure struct {
	Seq   uint64 `json:"seq"`
	Class string `json:"class"`
	Error string `json:"error"`
	Line  string `json:"line"`
}

// Summary is a point-in-time snapshot of a decode run.
// Summary 是一次解码运行的时间点快照。
type Summary struct {
	Elapsed      time.Duration    `json:"elapsed"`
	Lines        int64            `json:"lines"`
	Events       int64            `json:"events"`
	Unstructured int64            `json:"unstructured"`
	Errors       int64            `json:"errors"`
	Skipped      int64            `json:"skipped"`
	Degraded     int64            `json:"degraded"`
	Mismatches   int64            `json:"field_mismatches"`
	ExtraFields  int64            `json:"extra_fields"`
	ByClass      map[string]int64 `json:"by_class"`
	ByEvent      map[string]int64 `json:"by_event"`
	Unknown      map[string]int64 `json:"unknown_events"`
	Failures     []Failure        `json:"failures,omitempty"`
}

// LinesPerSecond is the decode throughput over Elapsed.
func (s Summary) LinesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Lines) / s.Elapsed.Seconds()
}

// Failed reports whether any line failed to decode.
func (s Summary) Failed() bool { return s.Errors > 0 }

// Count is one entry of a ranked counter.
type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Top returns the n largest entries of m, ties broken by name.
// Top 返回 m 中最大的 n 个条目，计数相同时按名称排序。
func Top(m map[string]int64, n int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Collector derives a Summary from a record stream. It is safe for
// concurrent use.
// Collector 从记录流中汇总统计，可并发使用。
type Collector struct {
	mu          sync.RWMutex
	start       time.Time
	maxFailures int
	sum         Summary
}

// NewCollector creates a collector keeping up to maxFailures failed lines.
// A negative value disables the failure list.
// NewCollector 创建最多保留 maxFailures 条失败行的收集器。
func NewCollector(maxFailures int) *Collector {
	return &Collector{
		start:       time.Now(),
		maxFailures: maxFailures,
		sum: Summary{
			ByClass: make(map[string]int64),
			ByEvent: make(map[string]int64),
			Unknown: make(map[string]int64),
		},
	}
}

// Add accounts for one record.
// Add 统计一条记录。
func (c *Collector) Add(rec combatlog.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &c.sum
	s.Lines++

	switch rec.Kind {
	case combatlog.RecordSkipped:
		s.Skipped++

	case combatlog.RecordEvent:
		s.Events++
		s.ByEvent[rec.Event.Event]++
		if n := len(rec.Event.Mismatches); n > 0 {
			s.Degraded++
			s.Mismatches += int64(n)
			s.ByClass[errs.ErrFieldTypeMismatch.Error()] += int64(n)
		}
		s.ExtraFields += int64(len(rec.Event.Extra))

	case combatlog.RecordUnstructured:
		s.Unstructured++
		s.ByEvent[rec.Unstructured.Event]++
		s.Unknown[rec.Unstructured.Event]++
		s.ByClass[errs.ErrUnknownEvent.Error()]++

	case combatlog.RecordError:
		s.Errors++
		class := ClassOf(rec.Err)
		s.ByClass[class]++
		if c.maxFailures >= 0 && len(s.Failures) < c.maxFailures {
			f := Failure{Seq: rec.Seq, Class: class, Line: rec.Line}
			if rec.Err != nil {
				f.Error = rec.Err.Error()
			}
			s.Failures = append(s.Failures, f)
		}
	}
}

// ClassOf labels an error with its taxonomy sentinel.
func ClassOf(err error) string {
	if class := errs.Classify(err); class != nil {
		return class.Error()
	}
	return "other"
}

// Snapshot returns a copy of the current summary.
// Snapshot 返回当前汇总的副本。
func (c *Collector) Snapshot() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := c.sum
	out.Elapsed = time.Since(c.start)
	out.ByClass = copyMap(c.sum.ByClass)
	out.ByEvent = copyMap(c.sum.ByEvent)
	out.Unknown = copyMap(c.sum.Unknown)
	out.Failures = append([]Failure(nil), c.sum.Failures...)
	return out
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
