package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/livp123/wowclp/internal/utils/logger"
	"github.com/livp123/wowclp/pkg/combatlog"
)

const (
	DefaultWorkers   = 4
	DefaultBatchSize = 512
)

// Config sizes the worker pool.
// Config 设置工作池大小。
type Config struct {
	Workers   int
	BatchSize int
	// FlushInterval submits any partial batch on every tick. Zero waits
	// for full batches.
	FlushInterval time.Duration
}

// Observer is notified once per decoded batch, from worker goroutines.
// Implementations must be safe for concurrent use.
// Observer 在每个批次解码后由工作协程通知，实现必须并发安全。
type Observer interface {
	ObserveBatch(records []combatlog.Record, elapsed time.Duration)
}

// Pipeline decodes lines on a worker pool and emits records in input
// order. Workers share only the decoder, which is read-only.
// Pipeline 在工作池上解码行，并按输入顺序输出记录。
type Pipeline struct {
	cfg       Config
	decoder   *combatlog.Decoder
	observers []Observer
	log       *zap.SugaredLogger
}

type batch struct {
	idx      uint64
	firstSeq uint64
	lines    []string
}

type result struct {
	idx     uint64
	records []combatlog.Record
}

// New creates a pipeline. A nil decoder means the default registry.
// New 创建流水线，decoder 为 nil 时使用默认 registry。
func New(cfg Config, decoder *combatlog.Decoder, observers ...Observer) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if decoder == nil {
		decoder = combatlog.NewDecoder()
	}
	return &Pipeline{
		cfg:       cfg,
		decoder:   decoder,
		observers: observers,
		log:       logger.Get(context.Background()),
	}
}

// WithLogger returns the pipeline using l for diagnostics.
func (p *Pipeline) WithLogger(l *zap.SugaredLogger) *Pipeline {
	if l != nil {
		p.log = l
	}
	return p
}

// Run decodes every line received on lines and calls emit for each record
// in input order. Sequence numbers start at 1.
//
// Cancellation is cooperative: once ctx is done no new batch is claimed,
// batches already claimed are decoded and emitted, and Run returns
// ctx.Err(). An emit error stops the run the same way and is returned.
// Run 解码 lines 上收到的每一行，并按输入顺序对每条记录调用 emit。
func (p *Pipeline) Run(ctx context.Context, lines <-chan string, emit func(combatlog.Record) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan batch, p.cfg.Workers)
	results := make(chan result, p.cfg.Workers)

	p.log.Debugf("[PIPE] Starting pipeline with %d workers, batch size %d", p.cfg.Workers, p.cfg.BatchSize)

	go p.produce(runCtx, lines, jobs)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go p.worker(&wg, jobs, results)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		next    uint64
		pending = make(map[uint64][]combatlog.Record)
		emitErr error
	)
	for res := range results {
		if emitErr != nil {
			continue
		}
		pending[res.idx] = res.records
		for {
			recs, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			for _, rec := range recs {
				if err := emit(rec); err != nil {
					emitErr = err
					cancel()
					break
				}
			}
			if emitErr != nil {
				break
			}
		}
	}

	if emitErr != nil {
		return emitErr
	}
	if err := ctx.Err(); err != nil {
		p.log.Debugf("[PIPE] Pipeline canceled after %d batches", next)
		return err
	}
	return nil
}

// produce groups lines into batches until lines is closed or ctx is done.
func (p *Pipeline) produce(ctx context.Context, lines <-chan string, jobs chan<- batch) {
	defer close(jobs)

	var (
		idx uint64
		seq uint64 = 1
		cur = batch{firstSeq: seq, lines: make([]string, 0, p.cfg.BatchSize)}
	)
	submit := func() bool {
		if len(cur.lines) == 0 {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		cur.idx = idx
		select {
		case jobs <- cur:
		case <-ctx.Done():
			return false
		}
		idx++
		cur = batch{firstSeq: seq, lines: make([]string, 0, p.cfg.BatchSize)}
		return true
	}

	var flush <-chan time.Time
	if p.cfg.FlushInterval > 0 {
		ticker := time.NewTicker(p.cfg.FlushInterval)
		defer ticker.Stop()
		flush = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-flush:
			if !submit() {
				return
			}
		case line, ok := <-lines:
			if !ok {
				submit()
				return
			}
			cur.lines = append(cur.lines, line)
			seq++
			if len(cur.lines) >= p.cfg.BatchSize && !submit() {
				return
			}
		}
	}
}

func (p *Pipeline) worker(wg *sync.WaitGroup, jobs <-chan batch, results chan<- result) {
	defer wg.Done()

	for b := range jobs {
		start := time.Now()
		recs := make([]combatlog.Record, len(b.lines))
		for i, line := range b.lines {
			recs[i] = p.decoder.DecodeLine(b.firstSeq+uint64(i), line)
		}
		elapsed := time.Since(start)
		for _, o := range p.observers {
			o.ObserveBatch(recs, elapsed)
		}
		results <- result{idx: b.idx, records: recs}
	}
}

// DecodeAll decodes a slice of lines and returns the records in order.
// On cancellation the records decoded so far are returned with ctx.Err().
// DecodeAll 解码一组行并按顺序返回记录。
func (p *Pipeline) DecodeAll(ctx context.Context, lines []string) ([]combatlog.Record, error) {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, l := range lines {
			select {
			case ch <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]combatlog.Record, 0, len(lines))
	err := p.Run(ctx, ch, func(rec combatlog.Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}
