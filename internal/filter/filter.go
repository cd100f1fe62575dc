package filter

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/patrickmn/go-cache"

	"github.com/livp123/wowclp/pkg/combatlog"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// Env is the environment a filter expression runs against.
// Env 是过滤表达式运行时的环境。
type Env struct {
	Event      string
	Kind       string
	Seq        uint64
	SourceName string
	DestName   string
	SourceGUID string
	DestGUID   string
	SourceType string
	DestType   string

	ev       *combatlog.CombatEvent
	src, dst *combatlog.Unit
}

var envPool = sync.Pool{
	New: func() interface{} { return &Env{} },
}

// Compiled Like patterns; each expires patternTTL after it was compiled.
var regexCache = cache.New(patternTTL, 2*patternTTL)

const patternTTL = 10 * time.Minute

// Reset resets the environment for reuse.
func (e *Env) Reset() {
	*e = Env{}
}

func (e *Env) load(rec combatlog.Record) {
	e.Event = rec.EventName()
	e.Kind = rec.Kind.String()
	e.Seq = rec.Seq
	e.ev = rec.Event
	e.src, e.dst = rec.Units()
	if e.src != nil {
		e.SourceName = e.src.Name
		e.SourceGUID = string(e.src.GUID)
		e.SourceType = e.src.Type().String()
	}
	if e.dst != nil {
		e.DestName = e.dst.Name
		e.DestGUID = string(e.dst.GUID)
		e.DestType = e.dst.Type().String()
	}
}

// Int returns an integer field, or 0.
// Usage: Int("amount") > 10000
func (e *Env) Int(name string) int64 {
	if e.ev == nil {
		return 0
	}
	n, _ := e.ev.Int(name)
	return n
}

func (e *Env) Float(name string) float64 {
	if e.ev == nil {
		return 0
	}
	f, _ := e.ev.Float(name)
	return f
}

// Str returns the text form of a field.
func (e *Env) Str(name string) string {
	if e.ev == nil {
		return ""
	}
	return e.ev.Str(name)
}

func (e *Env) Bool(name string) bool {
	if e.ev == nil {
		return false
	}
	return e.ev.Bool(name)
}

// Has reports whether the event carries a non-absent field.
func (e *Env) Has(name string) bool {
	if e.ev == nil {
		return false
	}
	v, ok := e.ev.Field(name)
	return ok && !v.IsAbsent()
}

// Prefix checks the event name prefix.
// Usage: Prefix("SPELL_PERIODIC")
func (e *Env) Prefix(p string) bool {
	return strings.HasPrefix(e.Event, p)
}

func (e *Env) SourcePlayer() bool {
	return e.src != nil && e.src.Flags.IsPlayer()
}

func (e *Env) DestHostile() bool {
	return e.dst != nil && e.dst.Flags.IsHostile()
}

// Like matches s against a pattern where * is a wildcard, case insensitive.
// Usage: Like(DestName, "*dummy*")
func (e *Env) Like(s, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return strings.EqualFold(s, pattern)
	}

	if v, ok := regexCache.Get(pattern); ok {
		return v.(*regexp.Regexp).MatchString(s)
	}

	quoted := regexp.QuoteMeta(pattern)
	re, err := regexp.Compile("(?i)^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
	if err != nil {
		return false
	}
	regexCache.SetDefault(pattern, re)
	return re.MatchString(s)
}

// Filter is a compiled record predicate. The program can be swapped at
// runtime with Update.
// Filter 是已编译的记录谓词，可通过 Update 在运行时替换。
type Filter struct {
	source  atomic.Pointer[string]
	program atomic.Pointer[vm.Program]
}

// Compile builds a filter. An empty expression matches every record.
// Compile 编译过滤器，空表达式匹配所有记录。
func Compile(src string) (*Filter, error) {
	f := &Filter{}
	if err := f.Update(src); err != nil {
		return nil, err
	}
	return f, nil
}

// Update replaces the expression. On error the previous one stays active.
// Update 替换表达式，出错时保留原表达式。
func (f *Filter) Update(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		f.program.Store(nil)
		f.source.Store(&src)
		return nil
	}

	pre := preprocessExpression(src)
	program, err := expr.Compile(pre, expr.Env(&Env{}))
	if err != nil {
		return errs.NewFilterError(src, err)
	}
	f.program.Store(program)
	f.source.Store(&src)
	return nil
}

// String returns the expression source.
func (f *Filter) String() string {
	if s := f.source.Load(); s != nil {
		return *s
	}
	return ""
}

// Match evaluates the filter. A runtime error or non-bool result is no match.
// Match 计算过滤器，运行时错误或非布尔结果视为不匹配。
func (f *Filter) Match(rec combatlog.Record) bool {
	if f == nil {
		return true
	}
	program := f.program.Load()
	if program == nil {
		return true
	}

	env := envPool.Get().(*Env)
	defer func() {
		env.Reset()
		envPool.Put(env)
	}()
	env.load(rec)

	output, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	matched, ok := output.(bool)
	return ok && matched
}

var aliasPatterns = []struct {
	re  *regexp.Regexp
	out string
}{
	{regexp.MustCompile(`\bstr\(`), "Str("},
	{regexp.MustCompile(`\bhas\(`), "Has("},
	{regexp.MustCompile(`\bprefix\(`), "Prefix("},
	{regexp.MustCompile(`\blike\(`), "Like("},
	{regexp.MustCompile(`\bsourcePlayer\(`), "SourcePlayer("},
	{regexp.MustCompile(`\bdestHostile\(`), "DestHostile("},
}

// preprocessExpression replaces lowercase helper aliases with the exported
// method names. Only call sites are rewritten; int( and float( stay the
// expr builtins.
func preprocessExpression(src string) string {
	for _, a := range aliasPatterns {
		src = a.re.ReplaceAllString(src, a.out)
	}
	return src
}
