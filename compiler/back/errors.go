package back

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/format"
)

type (
	// UnsupportedNodeError is a tree shape the generator has no lowering for.
	// It is a compiler defect, not a user error.
	UnsupportedNodeError struct {
		Node   ast.Node
		Line   int
		Reason string
	}
)

var (
	ErrDuplicateEntry = errors.New("more than one entry point in the unit")
	ErrEntryInLibrary = errors.New("entry point in a non-primary module")
)

func unsupported(n ast.Node, reason string, args ...any) UnsupportedNodeError {
	return UnsupportedNodeError{
		Node:   n,
		Line:   ast.Line(n),
		Reason: fmt.Sprintf(reason, args...),
	}
}

func (e UnsupportedNodeError) Error() string {
	s := fmt.Sprintf("unsupported %v node", ast.Kind(e.Node))

	if e.Line != 0 {
		s += fmt.Sprintf(" at line %d", e.Line)
	}

	if e.Reason != "" {
		s += ": " + e.Reason
	}

	if x := format.Short(e.Node); x != "" {
		s += fmt.Sprintf(" [%s]", x)
	}

	return s
}
