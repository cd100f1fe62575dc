package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/livp123/wowclp/internal/output"
	"github.com/livp123/wowclp/internal/stats"
	"github.com/livp123/wowclp/internal/utils/logger"
	"github.com/livp123/wowclp/pkg/combatlog"
)

func (a *app) newValidateCmd() *cobra.Command {
	var summary string

	cmd := &cobra.Command{
		Use:   "validate <file...>",
		Short: "Check that every line of a combat log decodes",
		// Short: 检查战斗日志的每一行是否都能解码
		Long: `Tokenize and decode the given files without writing records.
The summary goes to stdout and the exit status is non-zero when any line
failed. Unknown events and field mismatches are reported but do not fail.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			reg, err := registry(a.cfg.Parser)
			if err != nil {
				return err
			}

			log := logger.Get(cmd.Context())
			col := stats.NewCollector(stats.DefaultMaxFailures)
			start := time.Now()
			for _, in := range inputs {
				dec := decoder(reg, a.cfg.Parser, yearFor(in, a.cfg.Parser.Year))
				if err := a.decodeInput(cmd, in, dec, func(rec combatlog.Record) error {
					col.Add(rec)
					traceRecord(log, rec)
					return nil
				}); err != nil {
					return err
				}
			}

			s := col.Snapshot()
			s.Elapsed = time.Since(start)
			if err := output.WriteSummary(cmd.OutOrStdout(), s, summary, useColor(a.cfg)); err != nil {
				return err
			}
			if s.Failed() {
				return fmt.Errorf("%d of %d lines failed to decode", s.Errors, s.Lines)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", summaryText, "Summary format: text or json")
	return cmd
}
