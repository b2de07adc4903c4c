package format

import (
	"bytes"
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/thrushlang/thrush/compiler/ast"
)

// Format appends a source-like rendering of a node or a node list.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

// Short is the first line of the rendering of n, or "" if n can't be rendered.
func Short(n ast.Node) string {
	b, err := format(context.Background(), nil, n, 0)
	if err != nil {
		return ""
	}

	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}

	return string(bytes.TrimSpace(b))
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case []ast.Node:
		return formatUnit(ctx, b, x, d)
	case *ast.Unit:
		return formatUnit(ctx, b, x.Nodes, d)
	case ast.Node:
		return formatStmt(ctx, b, x, d)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatUnit(ctx context.Context, b []byte, nodes []ast.Node, d int) (_ []byte, err error) {
	for i, n := range nodes {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatStmt(ctx, b, n, d)
		if err != nil {
			return nil, errors.Wrap(err, "node %d", i)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.Func, d int) ([]byte, error) {
	if x.Public {
		b = app(b, d, "pub ")
	} else {
		b = app(b, d, "")
	}

	b = app(b, 0, "fn %v(", x.Name)

	for i, a := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", a.Name, a.Type)
	}

	b = append(b, ")"...)

	if x.Return != nil {
		b = app(b, 0, " %v", *x.Return)
	}

	b = app(b, 0, " {\n")

	b, err := formatBlock(ctx, b, x.Body, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, x *ast.Block, d int) (_ []byte, err error) {
	if x == nil {
		return b, nil
	}

	for _, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Node, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.Func:
		return formatFunc(ctx, b, s, d)
	case *ast.EntryPoint:
		b = app(b, d, "fn main() {\n")

		b, err = formatBlock(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "entry")
		}

		b = app(b, d, "}\n")
	case *ast.Block:
		b = app(b, d, "{\n")

		b, err = formatBlock(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "block")
		}

		b = app(b, d, "}\n")
	case *ast.VarDecl:
		b = app(b, d, "var %v %v", s.Name, s.Type)

		if s.Value != nil {
			b = append(b, " = "...)

			b, err = formatExpr(ctx, b, s.Value, d)
			if err != nil {
				return nil, errors.Wrap(err, "var %v", s.Name)
			}
		}

		b = append(b, '\n')
	case *ast.Return:
		b = app(b, d, "return")

		if _, ok := s.Value.(ast.Null); !ok && s.Value != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, s.Value, d)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}

		b = append(b, '\n')
	case *ast.Print:
		return formatCall(ctx, b, "print", s.Args, d)
	case *ast.Println:
		return formatCall(ctx, b, "println", s.Args, d)
	default:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s, d)
		if err != nil {
			return nil, err
		}

		b = append(b, '\n')
	}

	return b, nil
}

func formatCall(ctx context.Context, b []byte, name string, args []ast.Node, d int) (_ []byte, err error) {
	b = app(b, d, "%s(", name)

	for i, a := range args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatExpr(ctx, b, a, d)
		if err != nil {
			return nil, errors.Wrap(err, "%s arg %d", name, i)
		}
	}

	b = append(b, ")\n"...)

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Int:
		b = strconv.AppendInt(b, x.Value, 10)
		b = app(b, 0, "%v", x.Type)
	case ast.Float:
		b = strconv.AppendFloat(b, x.Value, 'g', -1, 64)
		b = app(b, 0, "%v", x.Type)
	case ast.String:
		b = strconv.AppendQuote(b, x.Value)
	case ast.Bool:
		b = strconv.AppendBool(b, x.Value)
	case ast.Null:
		b = append(b, "null"...)
	case ast.VarRef:
		b = append(b, x.Name...)
	case ast.Param:
		b = app(b, 0, "%v %v", x.Name, x.Type)
	case ast.Lowered:
		b = app(b, 0, "<lowered %v>", x.Type)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	if d > len(tabs) {
		d = len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
