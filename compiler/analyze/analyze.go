package analyze

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/back"
	"github.com/thrushlang/thrush/compiler/diag"
)

type (
	Options struct {
		IsMain bool
	}

	// Summary is what the unit declares at the top level.
	Summary struct {
		Funcs   []string
		Globals []string
		Entry   bool
	}

	MisplacedNodeError struct {
		T     ast.Node
		Where string
	}

	state struct {
		Options
		Summary

		funcs map[string]struct{}
	}
)

// Analyze checks the unit shape before it is lowered.
// Every top-level node is checked; all problems found are returned as a diag.List.
func Analyze(ctx context.Context, nodes []ast.Node, opts Options) (s Summary, err error) {
	tr := tlog.SpawnFromContext(ctx, "analyze: unit", "nodes", len(nodes), "is_main", opts.IsMain)
	defer tr.Finish("err", &err)

	st := &state{
		Options: opts,
		funcs:   map[string]struct{}{},
	}

	var errs diag.List

	for i, n := range nodes {
		e := st.top(n)
		if e != nil {
			errs = append(errs, errors.Wrap(e, "node %d (%v)", i, ast.Kind(n)))
		}
	}

	if err = errs.Err(); err != nil {
		return st.Summary, err
	}

	tr.V("summary").Printw("unit summary", "funcs", st.Funcs, "globals", st.Globals, "entry", st.Entry)

	return st.Summary, nil
}

func (st *state) top(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Func:
		if _, ok := st.funcs[n.Name]; ok {
			return diag.NewCompileError("function %v is declared twice", n.Name)
		}

		if n.Name == back.EntryFunc && st.Entry {
			return diag.NewCompileError("function %v clashes with the entry point", n.Name)
		}

		st.funcs[n.Name] = struct{}{}
		st.Funcs = append(st.Funcs, n.Name)

		return st.body(n.Body, "function "+n.Name)
	case *ast.EntryPoint:
		if !st.IsMain {
			return back.ErrEntryInLibrary
		}

		if st.Entry {
			return back.ErrDuplicateEntry
		}

		if _, ok := st.funcs[back.EntryFunc]; ok {
			return diag.NewCompileError("function %v clashes with the entry point", back.EntryFunc)
		}

		st.Entry = true

		return st.body(n.Body, "entry point")
	case *ast.VarDecl:
		st.Globals = append(st.Globals, n.Name)
	case *ast.Return:
		return MisplacedNodeError{T: n, Where: "top level"}
	}

	return nil
}

func (st *state) body(b *ast.Block, where string) error {
	if b == nil {
		return nil
	}

	for _, s := range b.Stmts {
		err := st.stmt(s, where)
		if err != nil {
			return err
		}
	}

	return nil
}

func (st *state) stmt(n ast.Node, where string) error {
	switch n := n.(type) {
	case *ast.Func, *ast.EntryPoint:
		return MisplacedNodeError{T: n, Where: where}
	case *ast.Block:
		return st.body(n, where)
	}

	return nil
}

func (e MisplacedNodeError) Error() string {
	return fmt.Sprintf("%v node is not allowed in %v", ast.Kind(e.T), e.Where)
}
