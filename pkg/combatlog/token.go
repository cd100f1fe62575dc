package combatlog

import "strings"

// NilLiteral is the bare sentinel the client writes for "no value".
const NilLiteral = "nil"

// RawLine is one combat log line split at the timestamp separator.
// RawLine 是在时间戳分隔符处拆分的一行战斗日志。
type RawLine struct {
	Timestamp string
	Body      string
}

// Token is one raw field of a line body.
// Exactly one of Nil, IsList or plain text applies. Quoted records whether
// the text was wrapped in double quotes so the line can be re-serialized.
// Token 是行主体中的一个原始字段。
type Token struct {
	Text   string
	Quoted bool
	Nil    bool
	IsList bool
	List   []Token
}

// TextToken builds a plain unquoted token.
func TextToken(s string) Token { return Token{Text: s} }

// QuotedToken builds a token that serializes with surrounding quotes.
func QuotedToken(s string) Token { return Token{Text: s, Quoted: true} }

// NilToken builds the absent sentinel token.
func NilToken() Token { return Token{Text: NilLiteral, Nil: true} }

// ListToken builds a bracketed sub-list token.
func ListToken(items ...Token) Token {
	if items == nil {
		items = []Token{}
	}
	return Token{IsList: true, List: items}
}

// String returns the token in its on-disk form.
// String 返回令牌在日志文件中的原始形式。
func (t Token) String() string {
	switch {
	case t.IsList:
		return "[" + Join(t.List) + "]"
	case t.Nil:
		return NilLiteral
	case t.Quoted || strings.ContainsRune(t.Text, ','):
		return `"` + t.Text + `"`
	default:
		return t.Text
	}
}

// Equal reports whether two tokens carry the same value, recursively.
func (t Token) Equal(o Token) bool {
	if t.Text != o.Text || t.Quoted != o.Quoted || t.Nil != o.Nil || t.IsList != o.IsList {
		return false
	}
	if len(t.List) != len(o.List) {
		return false
	}
	for i := range t.List {
		if !t.List[i].Equal(o.List[i]) {
			return false
		}
	}
	return true
}

// Join re-serializes tokens with comma separators, re-quoting where needed.
// Join 使用逗号分隔符重新序列化令牌，必要时重新加引号。
func Join(tokens []Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// Texts returns the plain text of each token; lists are rendered in
// their serialized form.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if t.IsList {
			out[i] = t.String()
			continue
		}
		out[i] = t.Text
	}
	return out
}
