package combatlog

import (
	"strings"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// Tokenizer splits combat log lines into a timestamp and raw field tokens.
// It holds no state and is safe for concurrent use.
// Tokenizer 将战斗日志行拆分为时间戳和原始字段令牌。无状态，可并发使用。
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer instance.
// NewTokenizer 创建一个新的 Tokenizer 实例。
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// IsBlank reports whether a line carries nothing but whitespace.
// Callers skip such lines instead of reporting them.
// IsBlank 判断一行是否只包含空白字符，调用方应跳过此类行。
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Split separates the timestamp from the event body at the first run of
// two or more spaces.
// Split 在第一处两个或更多连续空格处将时间戳与事件主体分开。
func (t *Tokenizer) Split(line string) (RawLine, error) {
	line = strings.TrimRight(line, "\r\n")
	if IsBlank(line) {
		return RawLine{}, errs.NewMalformedLineError("empty line")
	}
	line = strings.TrimLeft(line, " \t")

	idx := strings.Index(line, "  ")
	if idx < 0 {
		return RawLine{}, errs.NewMalformedLineError("no timestamp separator")
	}

	body := strings.TrimLeft(line[idx:], " ")
	if body == "" {
		return RawLine{}, errs.NewMalformedLineError("empty event body")
	}

	return RawLine{
		Timestamp: line[:idx],
		Body:      body,
	}, nil
}

// Tokenize splits a full line into its timestamp and body tokens.
// Token 0 of the result is the event name.
// Tokenize 将整行拆分为时间戳和主体令牌，结果中第 0 个令牌为事件名。
func (t *Tokenizer) Tokenize(line string) (RawLine, []Token, error) {
	raw, err := t.Split(line)
	if err != nil {
		return RawLine{}, nil, err
	}
	tokens, err := t.Fields(raw.Body)
	if err != nil {
		return raw, nil, err
	}
	return raw, tokens, nil
}

// Fields splits an event body on commas that are outside quotes and
// outside brackets. Bracketed tokens are tokenized recursively.
// Error offsets are byte positions within body.
// Fields 按引号和方括号之外的逗号拆分事件主体，方括号令牌递归拆分。
func (t *Tokenizer) Fields(body string) ([]Token, error) {
	return splitFields(body, 0)
}

func splitFields(s string, base int) ([]Token, error) {
	tokens := make([]Token, 0, 16)

	var (
		inQuote    bool
		quoteStart int
		depth      int
		start      int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
			quoteStart = i
		case c == '[':
			depth++
		case c == ']':
			if depth == 0 {
				return nil, errs.NewBracketError(base+i, 0)
			}
			depth--
		case c == ',' && depth == 0:
			tok, err := makeToken(s[start:i], base+start)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			start = i + 1
		}
	}

	if inQuote {
		return nil, errs.NewQuoteError(base + quoteStart)
	}
	if depth > 0 {
		return nil, errs.NewBracketError(base+len(s), depth)
	}

	tok, err := makeToken(s[start:], base+start)
	if err != nil {
		return nil, err
	}
	return append(tokens, tok), nil
}

// makeToken trims one raw field and classifies it. The field is already
// known to have balanced quotes and brackets.
func makeToken(raw string, pos int) (Token, error) {
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	f := strings.TrimSpace(raw)
	n := len(f)

	switch {
	case n >= 2 && f[0] == '"' && f[n-1] == '"':
		return Token{Text: f[1 : n-1], Quoted: true}, nil

	case n >= 2 && f[0] == '[' && f[n-1] == ']':
		inner := f[1 : n-1]
		if strings.TrimSpace(inner) == "" {
			return ListToken(), nil
		}
		items, err := splitFields(inner, pos+lead+1)
		if err != nil {
			return Token{}, err
		}
		return ListToken(items...), nil

	case f == NilLiteral:
		return NilToken(), nil
	}

	return Token{Text: f}, nil
}

var defaultTokenizer = NewTokenizer()

// Tokenize splits a line using a shared Tokenizer.
// Tokenize 使用共享的 Tokenizer 拆分一行。
func Tokenize(line string) (RawLine, []Token, error) {
	return defaultTokenizer.Tokenize(line)
}
