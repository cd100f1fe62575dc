package tailer

import (
	"context"
	"strings"
	"sync"

	"github.com/nxadm/tail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/livp123/wowclp/internal/utils/logger"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// Options configures a Tailer.
type Options struct {
	// Position is start, end or checkpoint.
	Position string
	// Poll uses stat polling instead of inotify.
	Poll bool
	// Checkpoint, when set, receives the offset after every line.
	Checkpoint *CheckpointManager
	// OnOffset is called with the offset after every line.
	OnOffset func(int64)
}

// Tailer follows one combat log file and streams its lines. The game
// truncates or recreates the file when logging is toggled; the tailer
// reopens it and keeps going.
// Tailer 跟踪一个战斗日志文件并输出其中的行。
type Tailer struct {
	file  string
	opts  Options
	log   *zap.SugaredLogger
	lines chan string

	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a tailer for file.
// New 为 file 创建跟踪器。
func New(file string, opts Options) *Tailer {
	if opts.Position == "" {
		opts.Position = PositionEnd
	}
	return &Tailer{
		file:  file,
		opts:  opts,
		log:   logger.Get(context.Background()),
		lines: make(chan string, 10000),
		quit:  make(chan struct{}),
	}
}

// Start begins following the file. Lines are delivered until ctx is done
// or Stop is called, after which the channel is closed.
// Start 开始跟踪文件，直到 ctx 结束或调用 Stop，随后关闭通道。
func (t *Tailer) Start(ctx context.Context) (<-chan string, error) {
	t.log = logger.Get(ctx)

	cm := t.opts.Checkpoint
	if cm == nil {
		cm = NewCheckpointManager("")
	}

	cfg := tail.Config{
		Location:  cm.SeekInfo(t.file, t.opts.Position),
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      t.opts.Poll,
		Logger:    tail.DiscardingLogger,
	}
	if std, err := zap.NewStdLogAt(t.log.Desugar(), zapcore.DebugLevel); err == nil {
		cfg.Logger = std
	}

	tl, err := tail.TailFile(t.file, cfg)
	if err != nil {
		return nil, errs.NewFileError(t.file, err)
	}

	t.log.Infof("[TAIL] Following %s (position: %s, poll: %v)", t.file, t.opts.Position, t.opts.Poll)

	t.wg.Add(1)
	go t.forward(ctx, tl)
	return t.lines, nil
}

func (t *Tailer) forward(ctx context.Context, tl *tail.Tail) {
	defer t.wg.Done()
	defer close(t.lines)

	for {
		select {
		case <-ctx.Done():
			shutdown(tl)
			return
		case <-t.quit:
			shutdown(tl)
			return
		case line, ok := <-tl.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				t.log.Warnf("[WARN]  Error reading %s: %v", t.file, line.Err)
				continue
			}

			select {
			case t.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				shutdown(tl)
				return
			case <-t.quit:
				shutdown(tl)
				return
			}

			if pos, err := tl.Tell(); err == nil {
				if t.opts.Checkpoint != nil {
					t.opts.Checkpoint.UpdateOffset(t.file, pos)
				}
				if t.opts.OnOffset != nil {
					t.opts.OnOffset(pos)
				}
			}
		}
	}
}

// Stop stops following and waits for the line channel to close.
// Stop 停止跟踪并等待行通道关闭。
func (t *Tailer) Stop() {
	t.quitOnce.Do(func() { close(t.quit) })
	t.wg.Wait()
}

// shutdown stops tl. The tail goroutine blocks on unread lines, so they are
// drained until it closes the channel.
func shutdown(tl *tail.Tail) {
	go func() { _ = tl.Stop() }()
	for range tl.Lines {
	}
	tl.Cleanup()
}
