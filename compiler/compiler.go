package compiler

import (
	"context"

	"github.com/llir/llvm/ir"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/analyze"
	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/back"
	"github.com/thrushlang/thrush/compiler/build"
)

func CompileFile(ctx context.Context, name string, opts build.Options, run build.Runner) (u *ast.Unit, a build.Artifact, err error) {
	u, err = ast.DecodeFile(ctx, name)
	if err != nil {
		return nil, a, errors.Wrap(err, "decode")
	}

	tlog.SpanFromContext(ctx).Printw("decoded unit", "name", name, "nodes", len(u.Nodes), "source", u.Source)

	a, err = Compile(ctx, u, opts, run)

	return u, a, err
}

// Compile lowers the unit and builds the configured artifact.
func Compile(ctx context.Context, u *ast.Unit, opts build.Options, run build.Runner) (a build.Artifact, err error) {
	m, err := Lower(ctx, u, opts)
	if err != nil {
		return a, err
	}

	a, err = build.New(opts, run).Build(ctx, m)
	if err != nil {
		return a, errors.Wrap(err, "build")
	}

	return a, nil
}

// Lower checks the unit and generates the LLVM module.
func Lower(ctx context.Context, u *ast.Unit, opts build.Options) (m *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compiler: lower", "name", opts.Name, "source", u.Source)
	defer tr.Finish("err", &err)

	s, err := analyze.Analyze(ctx, u.Nodes, analyze.Options{IsMain: opts.IsMain})
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	tr.Printw("analyzed", "funcs", len(s.Funcs), "globals", len(s.Globals), "entry", s.Entry)

	c := back.New(back.Options{
		Triple: opts.Triple,
		IsMain: opts.IsMain,
	})

	m, err = c.CompileUnit(ctx, u.Nodes)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return m, nil
}
