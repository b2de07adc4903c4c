package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
	"tlog.app/go/errors"
)

type (
	// Reporter renders source-pinned reports for one compilation unit.
	Reporter struct {
		Writer io.Writer
		Color  bool

		name  string
		lines []string // lines[0] is line 1
	}
)

const (
	bold      = "1"
	underline = "4"
	brightRed = "91"
	brightGrn = "92"
)

func NewReporter(name string, src []byte) *Reporter {
	return &Reporter{
		Writer: os.Stdout,
		name:   name,
		lines:  splitLines(string(src)),
	}
}

// LoadReporter reads the source file once and enables colors if stdout is a terminal.
func LoadReporter(name string) (*Reporter, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}

	r := NewReporter(name, src)
	r.Color = term.IsTerminal(int(os.Stdout.Fd()))

	return r, nil
}

func (r *Reporter) Name() string { return r.name }

// Lines is the number of source lines.
func (r *Reporter) Lines() int { return len(r.lines) }

// Report writes err to r.Writer. All kinds are rendered. It returns true
// if err was a user-facing diagnostic and false for compiler defects.
func (r *Reporter) Report(err error) bool {
	if err == nil {
		return false
	}

	if d, ok := AsDiagnostic(err); ok {
		_, _ = r.Writer.Write(r.Format(nil, d.Title, d.Help, d.Span, d.Line))
		return true
	}

	_, _ = r.Writer.Write(r.FormatDefect(nil, err))

	return false
}

// Format appends the report for a diagnostic pinned to line. It has no side effects.
func (r *Reporter) Format(b []byte, title, help string, span Span, line int) []byte {
	b = append(b, '\n')
	b = r.paint(b, r.name, bold, brightRed)
	b = fmt.Appendf(b, " %d", line)
	b = r.paint(b, ":", bold)
	b = r.paint(b, fmt.Sprintf("%d..%d", span.Start, span.End), bold)
	b = append(b, "\n\n"...)

	b = r.paint(b, "ERROR:", bold, brightRed, underline)
	b = append(b, ' ')
	b = r.paint(b, title, bold)
	b = append(b, "\n\n"...)

	text := strings.TrimSpace(r.line(line))

	b = append(b, "  "...)
	b = append(b, text...)
	b = append(b, '\n')

	// not aligned to the span: one marker per character plus four
	for i := 0; i < utf8.RuneCountInString(text)+4; i++ {
		b = r.paint(b, "^", bold, brightRed)
	}

	b = append(b, '\n')

	return r.help(b, help)
}

// FormatDefect appends the report for an error without a source location.
func (r *Reporter) FormatDefect(b []byte, err error) []byte {
	b = append(b, '\n')
	b = r.paint(b, "ERROR:", bold, brightRed, underline)
	b = append(b, ' ')
	b = r.paint(b, err.Error(), bold)
	b = append(b, '\n')

	help := "internal compiler error, please report it"

	var ce CompileError
	if errors.As(err, &ce) && ce.PC != 0 {
		help = fmt.Sprintf("%s (raised at %v)", help, ce.PC)
	}

	return r.help(b, help)
}

func (r *Reporter) help(b []byte, help string) []byte {
	b = append(b, '\n')
	b = r.paint(b, "Help", bold, brightGrn)
	b = r.paint(b, ":", bold)
	b = append(b, ' ')
	b = r.paint(b, help, bold)
	b = append(b, "\n\n"...)

	return b
}

// line returns the 1-based source line. The index one before the last
// resolves to the last line, and so does anything past the end.
func (r *Reporter) line(n int) string {
	if len(r.lines) == 0 {
		return ""
	}

	if n == len(r.lines)-1 || n > len(r.lines) {
		return r.lines[len(r.lines)-1]
	}

	if n < 1 {
		return r.lines[0]
	}

	return r.lines[n-1]
}

func (r *Reporter) paint(b []byte, s string, codes ...string) []byte {
	if !r.Color {
		return append(b, s...)
	}

	b = append(b, "\x1b["...)
	b = append(b, strings.Join(codes, ";")...)
	b = append(b, 'm')
	b = append(b, s...)
	b = append(b, "\x1b[0m"...)

	return b
}

func splitLines(src string) []string {
	if src == "" {
		return nil
	}

	lines := strings.Split(src, "\n")

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}
