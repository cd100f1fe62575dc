package errors

import (
	"errors"
	"fmt"
)

// Per-line failure taxonomy. Every error produced while tokenizing or
// decoding a combat log line wraps exactly one of these sentinels.
// 单行失败分类。分词或解码战斗日志行时产生的每个错误都恰好包装其中一个哨兵错误。
var (
	ErrMalformedLine     = errors.New("malformed line")
	ErrUnbalancedQuote   = errors.New("unbalanced quote")
	ErrUnbalancedBracket = errors.New("unbalanced bracket")
	ErrTruncatedPrefix   = errors.New("truncated prefix")
	ErrEmptyEventName    = errors.New("empty event name")
	ErrFieldTypeMismatch = errors.New("field type mismatch")

	// ErrUnknownEvent is never returned by the decoder; unknown events are
	// routed to UnstructuredEvent. It only labels counters and summaries.
	// ErrUnknownEvent 不会由解码器返回；未知事件被路由为 UnstructuredEvent。仅用于计数和摘要标签。
	ErrUnknownEvent = errors.New("unknown event")

	ErrInvalidSchema   = errors.New("invalid schema")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrFileNotFound    = errors.New("file not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrInvalidFilter   = errors.New("invalid filter expression")
)

// NewMalformedLineError wraps ErrMalformedLine with the reason.
// NewMalformedLineError 使用原因包装 ErrMalformedLine。
func NewMalformedLineError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedLine, reason)
}

// NewQuoteError reports an unterminated quote starting at byte offset pos.
// NewQuoteError 报告从字节偏移 pos 开始的未闭合引号。
func NewQuoteError(pos int) error {
	return fmt.Errorf("%w: opened at offset %d", ErrUnbalancedQuote, pos)
}

// NewBracketError reports a bracket mismatch at byte offset pos.
// NewBracketError 报告字节偏移 pos 处的括号不匹配。
func NewBracketError(pos int, depth int) error {
	return fmt.Errorf("%w: offset %d depth %d", ErrUnbalancedBracket, pos, depth)
}

func NewTruncatedPrefixError(event string, got int) error {
	return fmt.Errorf("%w: event=%s got %d of 6 prefix fields", ErrTruncatedPrefix, event, got)
}

// NewFieldError reports a field whose text did not match its declared kind.
// NewFieldError 报告文本与声明类型不匹配的字段。
func NewFieldError(field, kind, raw string) error {
	return fmt.Errorf("%w: field=%s kind=%s value=%q", ErrFieldTypeMismatch, field, kind, raw)
}

func NewSchemaError(event string, reason string) error {
	return fmt.Errorf("%w: event=%s: %s", ErrInvalidSchema, event, reason)
}

func NewFileError(path string, reason error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, reason)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

func NewFilterError(expression string, reason error) error {
	return fmt.Errorf("%w: %q: %v", ErrInvalidFilter, expression, reason)
}

// Classify returns the taxonomy sentinel wrapped by err, or nil when err
// carries none of them.
// Classify 返回 err 包装的分类哨兵错误，如果没有则返回 nil。
func Classify(err error) error {
	for _, sentinel := range []error{
		ErrMalformedLine,
		ErrUnbalancedQuote,
		ErrUnbalancedBracket,
		ErrTruncatedPrefix,
		ErrEmptyEventName,
		ErrFieldTypeMismatch,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// NewMissingFieldError reports a required schema field absent from the line.
// NewMissingFieldError 报告行中缺少的必需 schema 字段。
func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: field=%s missing", ErrFieldTypeMismatch, field)
}
