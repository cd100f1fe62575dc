package combatlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/livp123/wowclp/pkg/errors"
)

// TestTokenizer_Split tests the timestamp/body split
// TestTokenizer_Split 测试时间戳与主体的拆分
func TestTokenizer_Split(t *testing.T) {
	tk := NewTokenizer()

	tests := []struct {
		name    string
		line    string
		ts      string
		body    string
		wantErr error
	}{
		{"two spaces", "4/21 20:19:34.123  UNIT_DIED,a", "4/21 20:19:34.123", "UNIT_DIED,a", nil},
		{"many spaces", "4/21 20:19:34.123     SWING_DAMAGE,x", "4/21 20:19:34.123", "SWING_DAMAGE,x", nil},
		{"trailing newline", "1/2 00:00:00.000  X\r\n", "1/2 00:00:00.000", "X", nil},
		{"single space only", "4/21 20:19:34.123 UNIT_DIED", "", "", errs.ErrMalformedLine},
		{"empty", "", "", "", errs.ErrMalformedLine},
		{"whitespace", "   \t ", "", "", errs.ErrMalformedLine},
		{"no body", "4/21 20:19:34.123    ", "", "", errs.ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tk.Split(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ts, raw.Timestamp)
			assert.Equal(t, tt.body, raw.Body)
		})
	}
}

// TestTokenizer_Fields tests comma splitting with quotes, brackets and nil
// TestTokenizer_Fields 测试带引号、方括号和 nil 的逗号拆分
func TestTokenizer_Fields(t *testing.T) {
	tk := NewTokenizer()

	tests := []struct {
		name string
		body string
		want []Token
	}{
		{
			name: "plain",
			body: "A,1,0x10",
			want: []Token{TextToken("A"), TextToken("1"), TextToken("0x10")},
		},
		{
			name: "quoted comma",
			body: `SPELL_DAMAGE,0x0,"Some, Name",0x511`,
			want: []Token{TextToken("SPELL_DAMAGE"), TextToken("0x0"), QuotedToken("Some, Name"), TextToken("0x511")},
		},
		{
			name: "nil versus quoted nil",
			body: `nil,"nil",`,
			want: []Token{NilToken(), QuotedToken("nil"), TextToken("")},
		},
		{
			name: "nested list",
			body: `X,[1,"a,b",[2,3]],4`,
			want: []Token{
				TextToken("X"),
				ListToken(TextToken("1"), QuotedToken("a,b"), ListToken(TextToken("2"), TextToken("3"))),
				TextToken("4"),
			},
		},
		{
			name: "empty list",
			body: "X,[],Y",
			want: []Token{TextToken("X"), ListToken(), TextToken("Y")},
		},
		{
			name: "whitespace trimmed",
			body: ` A , "B" ,C `,
			want: []Token{TextToken("A"), QuotedToken("B"), TextToken("C")},
		},
		{
			name: "nil is case sensitive",
			body: "NIL,Nil",
			want: []Token{TextToken("NIL"), TextToken("Nil")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tk.Fields(tt.body)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, tt.want[i].Equal(got[i]), "token %d: want %#v got %#v", i, tt.want[i], got[i])
			}
		})
	}
}

// TestTokenizer_Errors tests unbalanced quotes and brackets
// TestTokenizer_Errors 测试未闭合的引号和方括号
func TestTokenizer_Errors(t *testing.T) {
	tk := NewTokenizer()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"open quote", `A,"Some, Name,0x1`, errs.ErrUnbalancedQuote},
		{"open bracket", `A,[1,2`, errs.ErrUnbalancedBracket},
		{"stray close", `A,1],2`, errs.ErrUnbalancedBracket},
		{"quote inside bracket", `A,[1,"x]`, errs.ErrUnbalancedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tk.Fields(tt.body)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestTokenizer_Idempotent re-tokenizes joined canonical tokens
// TestTokenizer_Idempotent 对拼接后的规范令牌再次分词
func TestTokenizer_Idempotent(t *testing.T) {
	tk := NewTokenizer()
	first, err := tk.Fields(`SPELL_HEAL,0x0000000000000001,"Healer",0x511,0x0000000000000002,"Tank",0x512,29166,"Innervate",0x10,1234,0,0,nil`)
	require.NoError(t, err)

	second, err := tk.Fields(Join(first))
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "token %d", i)
	}
}

// TestTokenizer_RoundTrip checks byte-identical re-serialization
// TestTokenizer_RoundTrip 检查重新序列化后字节一致
func TestTokenizer_RoundTrip(t *testing.T) {
	lines := []string{
		`4/21 20:19:34.123  SPELL_DAMAGE,0xF130000F3A000123,"Some, Name",0x511,0x0000000000000000,nil,0x80000000,133,"Fireball",0x4,1234,0,4,0,0,0,nil,nil,nil`,
		`4/21 20:19:34.500  UNIT_DIED,0x0000000000000000,nil,0x80000000,0xF130000F3A000123,"Training Dummy",0xa48`,
		`12/31 23:59:59.999  SPELL_AURA_APPLIED,0x0000000000000001,"Me",0x511,0x0000000000000001,"Me",0x511,48441,"Rejuvenation",0x8,BUFF`,
	}
	for _, line := range lines {
		raw, tokens, err := Tokenize(line)
		require.NoError(t, err)
		assert.Equal(t, raw.Body, Join(tokens))
		assert.True(t, strings.HasSuffix(line, Join(tokens)))
	}
}

// BenchmarkTokenize measures tokenizing a typical damage line
// BenchmarkTokenize 测量典型伤害行的分词性能
func BenchmarkTokenize(b *testing.B) {
	line := `4/21 20:19:34.123  SPELL_DAMAGE,0xF130000F3A000123,"Some, Name",0x511,0x0000000000000000,nil,0x80000000,133,"Fireball",0x4,1234,0,4,0,0,0,nil,nil,nil`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = Tokenize(line)
	}
}
