package diag

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	// Kind is the sub-kind shared by lex, parse and scope failures.
	Kind int

	LexKind   struct{ k Kind }
	ParseKind struct{ k Kind }
	ScopeKind struct{ k Kind }

	// Span is a column range on a source line.
	Span struct {
		Start int
		End   int
	}

	// CompileError is an internal failure with no source location.
	// PC is where in the compiler it was raised.
	CompileError struct {
		Msg string
		PC  loc.PC
	}

	LexError struct {
		Kind  LexKind
		Title string
		Help  string
		Span  Span
		Line  int
	}

	ParseError struct {
		Kind  ParseKind
		Title string
		Help  string
		Span  Span
		Line  int
	}

	ScopeError struct {
		Kind   ScopeKind
		Symbol string
		Title  string
		Help   string
		Span   Span
		Line   int
	}

	// Diagnostic is what the reporter renders.
	Diagnostic struct {
		Title string
		Help  string
		Span  Span
		Line  int
	}
)

const (
	TooManyArguments Kind = iota + 1
	SyntaxError
	UnreachableNumber
	FailedNumericParse
	UnknownCharacter
	UnreachableVariable
	VariableNotDefined
)

var (
	LexSyntaxError        = LexKind{SyntaxError}
	LexFailedNumericParse = LexKind{FailedNumericParse}
	LexUnreachableNumber  = LexKind{UnreachableNumber}
	LexUnknownCharacter   = LexKind{UnknownCharacter}

	ParseTooManyArguments    = ParseKind{TooManyArguments}
	ParseSyntaxError         = ParseKind{SyntaxError}
	ParseUnreachableNumber   = ParseKind{UnreachableNumber}
	ParseFailedNumericParse  = ParseKind{FailedNumericParse}
	ParseUnreachableVariable = ParseKind{UnreachableVariable}
	ParseVariableNotDefined  = ParseKind{VariableNotDefined}

	ScopeUnreachableVariable = ScopeKind{UnreachableVariable}
	ScopeVariableNotDefined  = ScopeKind{VariableNotDefined}
)

func (k Kind) String() string {
	switch k {
	case TooManyArguments:
		return "too many arguments"
	case SyntaxError:
		return "syntax error"
	case UnreachableNumber:
		return "unreachable number"
	case FailedNumericParse:
		return "failed numeric parse"
	case UnknownCharacter:
		return "unknown character"
	case UnreachableVariable:
		return "unreachable variable"
	case VariableNotDefined:
		return "variable not defined"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k LexKind) Kind() Kind   { return k.k }
func (k ParseKind) Kind() Kind { return k.k }
func (k ScopeKind) Kind() Kind { return k.k }

func (k LexKind) String() string   { return k.k.String() }
func (k ParseKind) String() string { return k.k.String() }
func (k ScopeKind) String() string { return k.k.String() }

// NewCompileError records the caller as the place the defect was found.
func NewCompileError(format string, args ...any) CompileError {
	return CompileError{
		Msg: fmt.Sprintf(format, args...),
		PC:  loc.Caller(1),
	}
}

func (e CompileError) Error() string {
	return e.Msg
}

func (e LexError) Error() string {
	return fmt.Sprintf("lex: %v: %v (line %d)", e.Kind, e.Title, e.Line)
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse: %v: %v (line %d)", e.Kind, e.Title, e.Line)
}

func (e ScopeError) Error() string {
	return fmt.Sprintf("scope: %v: %v (line %d)", e.Kind, e.Title, e.Line)
}

func (e LexError) Diagnostic() Diagnostic {
	return Diagnostic{Title: e.Title, Help: e.Help, Span: e.Span, Line: e.Line}
}

func (e ParseError) Diagnostic() Diagnostic {
	return Diagnostic{Title: e.Title, Help: e.Help, Span: e.Span, Line: e.Line}
}

func (e ScopeError) Diagnostic() Diagnostic {
	return Diagnostic{Title: e.Title, Help: e.Help, Span: e.Span, Line: e.Line}
}

// NotDefined is the scope failure for a name that is not bound anywhere.
func NotDefined(name string, line int) ScopeError {
	return ScopeError{
		Kind:   ScopeVariableNotDefined,
		Symbol: name,
		Title:  fmt.Sprintf("variable %q is not defined", name),
		Help:   "declare the variable before referencing it",
		Line:   line,
	}
}

// Unreachable is the scope failure for a name whose binding went out of scope.
func Unreachable(name string, line int) ScopeError {
	return ScopeError{
		Kind:   ScopeUnreachableVariable,
		Symbol: name,
		Title:  fmt.Sprintf("variable %q is not reachable from here", name),
		Help:   "numeric variables live until the end of the block declaring them",
		Line:   line,
	}
}

// AsDiagnostic extracts the renderable part of a user-facing error.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var lex LexError
	var parse ParseError
	var scope ScopeError

	switch {
	case errors.As(err, &lex):
		return lex.Diagnostic(), true
	case errors.As(err, &parse):
		return parse.Diagnostic(), true
	case errors.As(err, &scope):
		return scope.Diagnostic(), true
	}

	return Diagnostic{}, false
}

// IsDefect reports whether err is a compiler defect rather than a user-facing error.
func IsDefect(err error) bool {
	if err == nil {
		return false
	}

	_, ok := AsDiagnostic(err)

	return !ok
}

// List is every error found by a pass that keeps going after the first one.
// It is never empty. It unwraps to its first error.
type List []error

func (l List) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}

	return fmt.Sprintf("%v (and %d more)", l[0], len(l)-1)
}

func (l List) Unwrap() error { return l[0] }

// Err is nil if l is empty and l itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}

	return l
}
