package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/livp123/wowclp/internal/filter"
	"github.com/livp123/wowclp/internal/metrics"
	"github.com/livp123/wowclp/internal/output"
	"github.com/livp123/wowclp/internal/pipeline"
	"github.com/livp123/wowclp/internal/tailer"
	"github.com/livp123/wowclp/internal/utils/logger"
	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// tailFlushInterval bounds how long a partial batch waits while following.
const tailFlushInterval = 100 * time.Millisecond

type tailFlags struct {
	position       string
	checkpointFile string
	poll           bool
	metricsAddr    string
	filter         string
	format         string
}

func (a *app) newTailCmd() *cobra.Command {
	var f tailFlags

	cmd := &cobra.Command{
		Use:   "tail [file]",
		Short: "Follow a live combat log",
		// Short: 实时跟踪战斗日志
		Long: `Follow a combat log as the game writes it, surviving truncation
and re-creation. --position checkpoint resumes from the offset saved by the
previous run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyTailFlags(cmd, &f)
			file := tailTarget(args)
			if file == "" {
				return errs.NewFileError("", errors.New("no file given and WOWCLP_COMBATLOG is not set"))
			}
			return a.runTail(cmd.Context(), cmd, file)
		},
	}

	cmd.Flags().StringVar(&f.position, "position", "", "Where to start: start, end or checkpoint (default from config)")
	cmd.Flags().StringVar(&f.checkpointFile, "checkpoint-file", "", "File storing resume offsets")
	cmd.Flags().BoolVar(&f.poll, "poll", false, "Poll for changes instead of using inotify")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&f.filter, "filter", "", "Only output records matching an expression")
	cmd.Flags().StringVarP(&f.format, "output", "o", "", "Output format: json or text")
	return cmd
}

// tailTarget returns the file argument, else WOWCLP_COMBATLOG.
func tailTarget(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	inputs, err := expandInputs(nil)
	if err != nil || len(inputs) == 0 {
		return ""
	}
	return inputs[0]
}

func (a *app) applyTailFlags(cmd *cobra.Command, f *tailFlags) {
	t := &a.cfg.Tail
	if f.position != "" {
		t.Position = f.position
	}
	if f.checkpointFile != "" {
		t.CheckpointFile = f.checkpointFile
	}
	if cmd.Flags().Changed("poll") {
		t.Poll = f.poll
	}
	if f.metricsAddr != "" {
		a.cfg.Metrics.Enabled = true
		a.cfg.Metrics.Addr = f.metricsAddr
	}
	if f.filter != "" {
		a.cfg.Filter.Expression = f.filter
	}
	if f.format != "" {
		a.cfg.Output.Format = f.format
	}
}

func (a *app) runTail(ctx context.Context, cmd *cobra.Command, file string) error {
	log := logger.Get(ctx)

	reg, err := registry(a.cfg.Parser)
	if err != nil {
		return err
	}
	flt, err := filter.Compile(a.cfg.Filter.Expression)
	if err != nil {
		return err
	}
	r, err := output.New(a.cfg.Output.Format, cmd.OutOrStdout(), output.Options{
		IncludeErrors: a.cfg.Output.IncludeErrors,
		Color:         useColor(a.cfg),
	})
	if err != nil {
		return err
	}

	cm := tailer.NewCheckpointManager(a.cfg.Tail.CheckpointFile)
	cm.Start()
	defer func() {
		if err := cm.Stop(); err != nil {
			log.Warnf("[WARN]  Failed to save checkpoint: %v", err)
		}
	}()

	if a.cfg.Metrics.Enabled {
		srv := metrics.NewServer(a.cfg.Metrics.Addr, nil)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop() }()
	}

	t := tailer.New(file, tailer.Options{
		Position:   a.cfg.Tail.Position,
		Poll:       a.cfg.Tail.Poll,
		Checkpoint: cm,
		OnOffset:   metrics.Default.SetTailOffset,
	})
	lines, err := t.Start(ctx)
	if err != nil {
		return err
	}
	defer t.Stop()

	// Live logs have no usable file year; events are stamped with this one.
	year := a.cfg.Parser.Year
	if year == 0 {
		year = time.Now().Year()
	}
	p := pipeline.New(pipeline.Config{
		Workers:       a.cfg.Parser.Workers,
		BatchSize:     a.cfg.Parser.BatchSize,
		FlushInterval: tailFlushInterval,
	}, decoder(reg, a.cfg.Parser, year), metrics.Default).WithLogger(log)

	err = p.Run(ctx, lines, func(rec combatlog.Record) error {
		traceRecord(log, rec)
		if !flt.Match(rec) {
			return nil
		}
		if err := r.Render(rec); err != nil {
			return err
		}
		return r.Flush()
	})
	if errors.Is(err, context.Canceled) {
		log.Infof("[TAIL] Stopped following %s", file)
		return nil
	}
	return err
}
