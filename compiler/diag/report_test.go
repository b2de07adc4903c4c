package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

func TestFormatSingleLine(t *testing.T) {
	r := NewReporter("main.th", []byte("   let x = 1;   \n"))
	require.Equal(t, 1, r.Lines())

	b := r.Format(nil, "unexpected token", "remove it", Span{Start: 4, End: 7}, 1)

	exp := "\nmain.th 1:4..7\n\n" +
		"ERROR: unexpected token\n\n" +
		"  let x = 1;\n" +
		strings.Repeat("^", len("let x = 1;")+4) + "\n" +
		"\nHelp: remove it\n\n"

	assert.Equal(t, exp, string(b))
}

func TestFormatLineSelection(t *testing.T) {
	r := NewReporter("a.th", []byte("first\nsecond\nthird\nfourth"))

	line := func(n int) string {
		b := r.Format(nil, "t", "h", Span{}, n)
		return strings.Split(string(b), "\n")[5]
	}

	assert.Equal(t, "  first", line(1))
	assert.Equal(t, "  second", line(2))
	assert.Equal(t, "  fourth", line(3), "index one before the last resolves to the last line")
	assert.Equal(t, "  fourth", line(4))
	assert.Equal(t, "  fourth", line(10))
	assert.Equal(t, "  first", line(0))
}

func TestFormatEmptySource(t *testing.T) {
	r := NewReporter("empty.th", nil)

	b := r.Format(nil, "t", "h", Span{}, 1)
	assert.Contains(t, string(b), "\n  \n^^^^\n")
}

func TestFormatColor(t *testing.T) {
	r := NewReporter("a.th", []byte("x"))
	r.Color = true

	b := r.Format(nil, "t", "h", Span{}, 1)
	assert.Contains(t, string(b), "\x1b[1;91;4mERROR:\x1b[0m")
	assert.Contains(t, string(b), "\x1b[1;92mHelp\x1b[0m")
	assert.Equal(t, 5, strings.Count(string(b), "\x1b[1;91m^\x1b[0m"))
}

func TestReportAllKinds(t *testing.T) {
	var buf bytes.Buffer

	r := NewReporter("k.th", []byte("a\nb\nc\n"))
	r.Writer = &buf

	for _, err := range []error{
		LexError{Kind: LexUnknownCharacter, Title: "lex", Help: "h", Line: 1},
		ParseError{Kind: ParseTooManyArguments, Title: "parse", Help: "h", Line: 2},
		errors.Wrap(NotDefined("x", 3), "lower"),
	} {
		buf.Reset()

		assert.True(t, r.Report(err), "%v", err)
		assert.Contains(t, buf.String(), "ERROR: ")
		assert.Contains(t, buf.String(), "\nHelp: ")
	}

	buf.Reset()
	assert.False(t, r.Report(NewCompileError("broken %d", 1)))
	assert.Contains(t, buf.String(), "ERROR: broken 1\n")
	assert.Contains(t, buf.String(), "internal compiler error")

	buf.Reset()
	assert.False(t, r.Report(nil))
	assert.Empty(t, buf.String())
}
