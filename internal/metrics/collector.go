package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/livp123/wowclp/internal/stats"
	"github.com/livp123/wowclp/pkg/combatlog"
)

// Collector holds the decoder metrics registered on one registry.
// Collector 保存注册在同一个 registry 上的解码指标。
type Collector struct {
	Lines      prometheus.Counter
	Records    *prometheus.CounterVec
	Events     *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	Mismatches *prometheus.CounterVec
	Extra      prometheus.Counter

	BatchSeconds prometheus.Histogram
	BatchLines   prometheus.Histogram

	LastEventTime prometheus.Gauge
	TailOffset    prometheus.Gauge

	mu        sync.Mutex
	lastEvent float64
}

// unknownEvent labels every unstructured record so arbitrary event names
// cannot grow the events series.
const unknownEvent = "unknown"

// Default is registered on the process-wide Prometheus registry.
var Default = New(prometheus.DefaultRegisterer)

// New registers a fresh set of metrics on reg.
// New 在 reg 上注册一组新的指标。
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Lines: f.NewCounter(prometheus.CounterOpts{
			Name: "wowclp_lines_total",
			Help: "Total combat log lines decoded",
		}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wowclp_records_total",
			Help: "Decoded records by kind",
		}, []string{"kind"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wowclp_events_total",
			Help: "Decoded events by event name",
		}, []string{"event"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wowclp_line_errors_total",
			Help: "Failed lines by error class",
		}, []string{"class"}),
		Mismatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wowclp_field_mismatches_total",
			Help: "Soft field decode failures by field name",
		}, []string{"field"}),
		Extra: f.NewCounter(prometheus.CounterOpts{
			Name: "wowclp_extra_tokens_total",
			Help: "Trailing tokens beyond the event schema",
		}),
		BatchSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wowclp_batch_decode_seconds",
			Help:    "Time spent decoding one batch",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		BatchLines: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wowclp_batch_lines",
			Help:    "Lines per decoded batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}),
		LastEventTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "wowclp_last_event_timestamp_seconds",
			Help: "Combat log time of the most recent decoded event",
		}),
		TailOffset: f.NewGauge(prometheus.GaugeOpts{
			Name: "wowclp_tail_offset_bytes",
			Help: "Byte offset of the followed combat log",
		}),
	}
}

// ObserveBatch records one decoded batch. It is safe for concurrent use.
// ObserveBatch 记录一个已解码的批次，可并发调用。
func (c *Collector) ObserveBatch(records []combatlog.Record, elapsed time.Duration) {
	c.BatchSeconds.Observe(elapsed.Seconds())
	c.BatchLines.Observe(float64(len(records)))
	for i := range records {
		c.Observe(records[i])
	}
}

// Observe records a single record.
func (c *Collector) Observe(rec combatlog.Record) {
	c.Lines.Inc()
	c.Records.WithLabelValues(rec.Kind.String()).Inc()

	switch rec.Kind {
	case combatlog.RecordEvent:
		ev := rec.Event
		c.Events.WithLabelValues(ev.Event).Inc()
		for _, m := range ev.Mismatches {
			c.Mismatches.WithLabelValues(m.Field).Inc()
		}
		if n := len(ev.Extra); n > 0 {
			c.Extra.Add(float64(n))
		}
		if !ev.Time.IsZero() {
			c.observeEventTime(float64(ev.Time.UnixMilli()) / 1000)
		}
	case combatlog.RecordUnstructured:
		c.Events.WithLabelValues(unknownEvent).Inc()
	case combatlog.RecordError:
		c.Errors.WithLabelValues(stats.ClassOf(rec.Err)).Inc()
	}
}

// observeEventTime only moves the gauge forward; batches finish out of order.
func (c *Collector) observeEventTime(sec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sec <= c.lastEvent {
		return
	}
	c.lastEvent = sec
	c.LastEventTime.Set(sec)
}

// SetTailOffset publishes the follower's byte offset.
func (c *Collector) SetTailOffset(offset int64) {
	c.TailOffset.Set(float64(offset))
}
