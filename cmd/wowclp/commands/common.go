package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/livp123/wowclp/internal/config"
	"github.com/livp123/wowclp/internal/runtime"
	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// stdinName selects standard input as the source.
const stdinName = "-"

// maxLineSize bounds a single combat log line.
const maxLineSize = 1 << 20

// epochYear stamps events when no year is configured or known.
const epochYear = 1970

// registry builds the event registry from the parser config.
// registry 根据解析配置构建事件 registry。
func registry(cfg config.ParserConfig) (*combatlog.Registry, error) {
	reg := combatlog.DefaultRegistry()

	if cfg.SchemaFile != "" {
		f, err := os.Open(cfg.SchemaFile)
		if err != nil {
			return nil, errs.NewFileError(cfg.SchemaFile, err)
		}
		defer f.Close()
		if reg, err = reg.LoadYAML(f); err != nil {
			return nil, err
		}
	}

	if len(cfg.NilDefaults) > 0 {
		policies, err := combatlog.ParseNilDefaults(cfg.NilDefaults)
		if err != nil {
			return nil, errs.NewConfigError("parser.nil_defaults", err)
		}
		reg = reg.WithNilDefaults(policies)
	}
	return reg, nil
}

// decoder returns a decoder for reg. A year of zero leaves events without
// an absolute time.
func decoder(reg *combatlog.Registry, cfg config.ParserConfig, year int) *combatlog.Decoder {
	opts := []combatlog.Option{
		combatlog.WithRegistry(reg),
		combatlog.WithStrictArity(cfg.StrictArity),
	}
	if year > 0 {
		opts = append(opts, combatlog.WithYear(year, cfg.Location()))
	}
	return combatlog.NewDecoder(opts...)
}

// yearFor picks the configured year, else the modification year of path,
// else 1970. Combat log lines carry no year.
// yearFor 选择配置的年份，否则使用文件的修改年份，再否则使用 1970。
func yearFor(path string, configured int) int {
	if configured > 0 {
		return configured
	}
	if path == stdinName {
		return epochYear
	}
	info, err := os.Stat(path)
	if err != nil {
		return epochYear
	}
	return info.ModTime().Year()
}

// traceRecord logs failed lines and leftover tokens at debug level.
func traceRecord(log *zap.SugaredLogger, rec combatlog.Record) {
	switch {
	case rec.Kind == combatlog.RecordError:
		log.Debugf("[DECODE] Line %d: %v", rec.Seq, rec.Err)
	case rec.Kind == combatlog.RecordEvent && len(rec.Event.Extra) > 0:
		log.Debugf("[DECODE] Line %d: %s has %d extra tokens: %s",
			rec.Seq, rec.Event.Event, len(rec.Event.Extra), combatlog.Join(rec.Event.Extra))
	}
}

// expandInputs resolves arguments to files. Glob patterns use doublestar
// syntax; with no arguments WOWCLP_COMBATLOG is used.
// expandInputs 将参数解析为文件列表，支持 doublestar 通配符。
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		if def := config.DefaultInput(); def != "" {
			args = []string{def}
		} else {
			return nil, errs.NewFileError("", fmt.Errorf("no input given and %s is not set", config.EnvCombatLog))
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, arg := range args {
		if arg == stdinName || !strings.ContainsAny(arg, "*?[{") {
			if !seen[arg] {
				seen[arg] = true
				out = append(out, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidFilePath, arg, err)
		}
		if len(matches) == 0 {
			return nil, errs.NewFileError(arg, fmt.Errorf("pattern matched no files"))
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// openInput opens a file or standard input.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == stdinName {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewFileError(path, err)
	}
	return f, nil
}

// scanLines sends every line of r to a new channel, stripping CR. The
// channel is closed at EOF, on ctx cancellation or on a read error, which
// is reported on errc.
func scanLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string, 1024)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		defer close(errc)

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- strings.TrimRight(sc.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			errc <- err
		}
	}()
	return lines, errc
}

// openOutput returns the output writer, standard output when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == stdinName {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errs.NewFileError(path, err)
	}
	return f, f.Close, nil
}

// useColor reports whether styled output is wanted.
func useColor(cfg *config.Config) bool {
	return cfg.Output.Color && !runtime.NoColor
}
