package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/livp123/wowclp/internal/filter"
	"github.com/livp123/wowclp/internal/output"
	"github.com/livp123/wowclp/internal/pipeline"
	"github.com/livp123/wowclp/internal/stats"
	"github.com/livp123/wowclp/internal/utils/logger"
	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

const (
	summaryText = "text"
	summaryJSON = "json"
	summaryNone = "none"
)

type parseFlags struct {
	format        string
	outFile       string
	filter        string
	year          int
	workers       int
	batchSize     int
	includeErrors bool
	summary       string
	strict        bool
}

func (a *app) newParseCmd() *cobra.Command {
	var f parseFlags

	cmd := &cobra.Command{
		Use:   "parse [files/globs...]",
		Short: "Decode combat log files",
		// Short: 解码战斗日志文件
		Long: `Decode one or more combat log files into structured records.
Arguments may be doublestar globs such as 'logs/**/WoWCombatLog*.txt'.
'-' reads standard input. With no arguments WOWCLP_COMBATLOG is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyParseFlags(cmd, &f)
			return a.runParse(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.format, "output", "o", "", "Output format: json or text (default from config)")
	cmd.Flags().StringVar(&f.outFile, "out-file", "", "Write records to a file instead of stdout")
	cmd.Flags().StringVar(&f.filter, "filter", "", `Only output records matching an expression, e.g. 'Event == "SPELL_HEAL" && Int("amount") > 1000'`)
	cmd.Flags().IntVar(&f.year, "year", 0, "Year applied to timestamps (default: file modification year)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Decoder workers (default from config)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Lines per batch (default from config)")
	cmd.Flags().BoolVar(&f.includeErrors, "include-errors", true, "Output records for lines that failed to decode")
	cmd.Flags().StringVar(&f.summary, "summary", summaryText, "Summary on stderr: text, json or none")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Treat lines longer than their schema as errors")
	return cmd
}

// applyParseFlags overlays explicitly set flags on the loaded config.
func (a *app) applyParseFlags(cmd *cobra.Command, f *parseFlags) {
	p := &a.cfg.Parser
	if f.year > 0 {
		p.Year = f.year
	}
	if f.workers > 0 {
		p.Workers = f.workers
	}
	if f.batchSize > 0 {
		p.BatchSize = f.batchSize
	}
	if cmd.Flags().Changed("strict") {
		p.StrictArity = f.strict
	}
	if f.format != "" {
		a.cfg.Output.Format = f.format
	}
	if f.outFile != "" {
		a.cfg.Output.Path = f.outFile
	}
	if cmd.Flags().Changed("include-errors") {
		a.cfg.Output.IncludeErrors = f.includeErrors
	}
	if f.filter != "" {
		a.cfg.Filter.Expression = f.filter
	}
}

func (a *app) runParse(cmd *cobra.Command, args []string, f parseFlags) error {
	ctx := cmd.Context()
	log := logger.Get(ctx)

	switch strings.ToLower(f.summary) {
	case summaryText, summaryJSON, summaryNone:
	default:
		return errs.NewConfigError("summary", fmt.Errorf("unknown summary format %q", f.summary))
	}

	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	reg, err := registry(a.cfg.Parser)
	if err != nil {
		return err
	}
	flt, err := filter.Compile(a.cfg.Filter.Expression)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(a.cfg.Output.Path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	r, err := output.New(a.cfg.Output.Format, w, output.Options{
		IncludeErrors: a.cfg.Output.IncludeErrors,
		Color:         useColor(a.cfg),
	})
	if err != nil {
		return err
	}

	col := stats.NewCollector(stats.DefaultMaxFailures)
	start := time.Now()
	emit := func(rec combatlog.Record) error {
		col.Add(rec)
		traceRecord(log, rec)
		if !flt.Match(rec) {
			return nil
		}
		return r.Render(rec)
	}

	for _, in := range inputs {
		log.Infof("[PARSE] Decoding %s", in)
		dec := decoder(reg, a.cfg.Parser, yearFor(in, a.cfg.Parser.Year))
		if err := a.decodeInput(cmd, in, dec, emit); err != nil {
			_ = r.Flush()
			return err
		}
	}
	if err := r.Flush(); err != nil {
		return err
	}

	s := col.Snapshot()
	s.Elapsed = time.Since(start)
	log.Infof("[PARSE] Done: %d lines, %d events, %d errors in %s", s.Lines, s.Events, s.Errors, s.Elapsed.Round(time.Millisecond))

	if !strings.EqualFold(f.summary, summaryNone) {
		return output.WriteSummary(cmd.ErrOrStderr(), s, strings.ToLower(f.summary), useColor(a.cfg))
	}
	return nil
}

// decodeInput streams one input through the pipeline.
func (a *app) decodeInput(cmd *cobra.Command, path string, dec *combatlog.Decoder, emit func(combatlog.Record) error) error {
	ctx := cmd.Context()
	rc, err := openInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer rc.Close()

	p := pipeline.New(pipeline.Config{
		Workers:   a.cfg.Parser.Workers,
		BatchSize: a.cfg.Parser.BatchSize,
	}, dec).WithLogger(logger.Get(ctx))
	return runLines(ctx, rc, p, emit)
}

// runLines feeds r to p and reports the first pipeline or read error.
func runLines(ctx context.Context, r io.Reader, p *pipeline.Pipeline, emit func(combatlog.Record) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, errc := scanLines(ctx, r)
	if err := p.Run(ctx, lines, emit); err != nil {
		return err
	}
	return <-errc
}
