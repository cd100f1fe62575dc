package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrMalformedLine", ErrMalformedLine, "malformed line"},
		{"ErrUnbalancedQuote", ErrUnbalancedQuote, "unbalanced quote"},
		{"ErrUnbalancedBracket", ErrUnbalancedBracket, "unbalanced bracket"},
		{"ErrTruncatedPrefix", ErrTruncatedPrefix, "truncated prefix"},
		{"ErrEmptyEventName", ErrEmptyEventName, "empty event name"},
		{"ErrFieldTypeMismatch", ErrFieldTypeMismatch, "field type mismatch"},
		{"ErrUnknownEvent", ErrUnknownEvent, "unknown event"},
		{"ErrInvalidSchema", ErrInvalidSchema, "invalid schema"},
		{"ErrInvalidFilePath", ErrInvalidFilePath, "invalid file path"},
		{"ErrFileNotFound", ErrFileNotFound, "file not found"},
		{"ErrConfigInvalid", ErrConfigInvalid, "invalid configuration"},
		{"ErrInvalidFilter", ErrInvalidFilter, "invalid filter expression"},
	}

	for _, tc := range sentinelErrors {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Errorf("%s is nil", tc.name)
				return
			}
			if tc.err.Error() != tc.msg {
				t.Errorf("%s: got %q, want %q", tc.name, tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "malformed",
			err:      NewMalformedLineError("no timestamp separator"),
			sentinel: ErrMalformedLine,
			want:     "malformed line: no timestamp separator",
		},
		{
			name:     "quote",
			err:      NewQuoteError(17),
			sentinel: ErrUnbalancedQuote,
			want:     "unbalanced quote: opened at offset 17",
		},
		{
			name:     "bracket",
			err:      NewBracketError(4, 2),
			sentinel: ErrUnbalancedBracket,
			want:     "unbalanced bracket: offset 4 depth 2",
		},
		{
			name:     "truncated",
			err:      NewTruncatedPrefixError("SPELL_DAMAGE", 3),
			sentinel: ErrTruncatedPrefix,
			want:     "truncated prefix: event=SPELL_DAMAGE got 3 of 6 prefix fields",
		},
		{
			name:     "field",
			err:      NewFieldError("amount", "integer", "12x"),
			sentinel: ErrFieldTypeMismatch,
			want:     `field type mismatch: field=amount kind=integer value="12x"`,
		},
		{
			name:     "schema",
			err:      NewSchemaError("FOO", "duplicate field"),
			sentinel: ErrInvalidSchema,
			want:     "invalid schema: event=FOO: duplicate field",
		},
		{
			name:     "config",
			err:      NewConfigError("parser.workers", -1),
			sentinel: ErrConfigInvalid,
			want:     "invalid configuration: field=parser.workers value=-1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() != tc.want {
				t.Errorf("got %q, want %q", tc.err.Error(), tc.want)
			}
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("error should wrap %v", tc.sentinel)
			}
		})
	}
}

func TestNewFileError(t *testing.T) {
	err := NewFileError("/tmp/WoWCombatLog.txt", errors.New("no such file"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error should wrap ErrFileNotFound")
	}
	if err.Error() != "file not found: /tmp/WoWCombatLog.txt: no such file" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", errors.New("boom"), nil},
		{"direct", ErrTruncatedPrefix, ErrTruncatedPrefix},
		{"wrapped once", NewQuoteError(1), ErrUnbalancedQuote},
		{"wrapped twice", fmt.Errorf("line 3: %w", NewBracketError(1, 1)), ErrUnbalancedBracket},
		{"unknown is not a failure", ErrUnknownEvent, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
