package sanitize

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "The sky is blue.", "The sky is blue."},
		{"collapses whitespace", "  The   sky\n\nis\tblue.  ", "The sky is blue."},
		{"encoded surrogate half", "caf\xed\xa0\x80e", "cafe"},
		{"invalid bytes", "a\xffb\xfe\xfdc", "abc"},
		{"truncated multibyte", "grass \xe2\x82", "grass"},
		{"control characters", "nul\x00 and bell\x07", "nul and bell"},
		{"replacement character", "x\ufffdy", "xy"},
		{"decomposed accent composes", "cafe\u0301", "caf\u00e9"},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"already clean",
		"  lots   of\n\nspace ",
		"bad \xed\xb0\x80 surrogate",
		"\xff\xfe leading junk",
		"mixed\x00control\x1bchars",
		"e\u0301\u0301 stacked marks",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestClean_PreservesLines(t *testing.T) {
	got := Clean("first paragraph\n\nsecond\x00 line\r\nthird\t")
	assert.Equal(t, "first paragraph\n\nsecond line\r\nthird\t", got)
}

func TestClean_Idempotent(t *testing.T) {
	input := "para one\xed\xa0\x80\n\npara\x07 two"
	once := Clean(input)
	require.True(t, utf8.ValidString(once))
	assert.Equal(t, once, Clean(once))
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{" a  b ", "", "\x00\n", "c"})
	assert.Equal(t, []string{"a b", "c"}, got)
}
