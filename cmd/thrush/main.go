package main

import (
	"context"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler"
	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/build"
	"github.com/thrushlang/thrush/compiler/diag"
	"github.com/thrushlang/thrush/compiler/format"
)

func main() {
	commonFlags := []*cli.Flag{
		cli.NewFlag("source", "", "original source file for diagnostics (defaults to the unit's \"source\")"),
		cli.NewFlag("verbose,v", "", "log topics to enable (scope,runtime,dump_ir,summary)"),
		cli.NewFlag("no-color", false, "disable colored diagnostics"),
		cli.HelpFlag,
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile a unit ast into llvm ir, an object or an executable",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: append([]*cli.Flag{
			cli.NewFlag("config,c", "", "json build config, flags override it"),
			cli.NewFlag("name", "", "artifact name"),
			cli.NewFlag("output,o", "", "output directory"),
			cli.NewFlag("opt,O", "", "optimization tier: none, low, mid, max"),
			cli.NewFlag("emit-llvm", false, "write llvm ir text and stop"),
			cli.NewFlag("emit-object", false, "build an object file, the default, also over --build"),
			cli.NewFlag("build", false, "link an executable"),
			cli.NewFlag("linking", "", "static or dynamic"),
			cli.NewFlag("target", "", "target triple, host if empty"),
			cli.NewFlag("reloc", "", "relocation model: default, static, pic, dynamic-no-pic"),
			cli.NewFlag("code-model", "", "code model: default, small, kernel, medium, large"),
			cli.NewFlag("library", false, "unit is not the primary module, entry point is not allowed"),
			cli.NewFlag("optimizer", "", "optimizer tool"),
			cli.NewFlag("driver", "", "compiler driver tool"),
		}, commonFlags...),
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print llvm ir generated for the unit",
		Action:      irAct,
		Args:        cli.Args{},
		Flags: append([]*cli.Flag{
			cli.NewFlag("target", "", "target triple, host if empty"),
			cli.NewFlag("library", false, "unit is not the primary module"),
		}, commonFlags...),
	}

	astCmd := &cli.Command{
		Name:        "ast",
		Description: "pretty-print the unit ast",
		Action:      astAct,
		Args:        cli.Args{},
		Flags:       commonFlags,
	}

	app := &cli.Command{
		Name:        "thrush",
		Description: "thrush is the code generation backend for the thrush language",
		Commands: []*cli.Command{
			compileCmd,
			irCmd,
			astCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) context.Context {
	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags))

	if v := c.String("verbose"); v != "" {
		tlog.SetVerbosity(v)
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx
}

func compileAct(c *cli.Command) (err error) {
	ctx := setup(c)

	opts, err := options(c)
	if err != nil {
		return errors.Wrap(err, "options")
	}

	for _, a := range c.Args {
		u, art, err := compiler.CompileFile(ctx, a, opts, nil)
		if err != nil {
			report(c, a, u, err)
		}

		tlog.Printw("artifact", "kind", art.Kind, "path", art.Path)
	}

	return nil
}

func irAct(c *cli.Command) (err error) {
	ctx := setup(c)

	opts := build.DefaultOptions()
	opts.Triple = c.String("target")
	opts.IsMain = !c.Bool("library")

	for _, a := range c.Args {
		u, err := ast.DecodeFile(ctx, a)
		if err != nil {
			report(c, a, nil, err)
		}

		m, err := compiler.Lower(ctx, u, opts)
		if err != nil {
			report(c, a, u, err)
		}

		_, err = m.WriteTo(os.Stdout)
		if err != nil {
			return errors.Wrap(err, "write ir")
		}
	}

	return nil
}

func astAct(c *cli.Command) (err error) {
	ctx := setup(c)

	for _, a := range c.Args {
		u, err := ast.DecodeFile(ctx, a)
		if err != nil {
			report(c, a, nil, err)
		}

		b, err := format.Format(ctx, nil, u)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

// options layers flags over the config file over defaults.
func options(c *cli.Command) (o build.Options, err error) {
	o = build.DefaultOptions()

	if f := c.String("config"); f != "" {
		o, err = build.LoadOptions(f, o)
		if err != nil {
			return o, err
		}
	}

	if v := c.String("name"); v != "" {
		o.Name = v
	}

	if v := c.String("output"); v != "" {
		o.Path = v
	}

	if v := c.String("target"); v != "" {
		o.Triple = v
	}

	if v := c.String("optimizer"); v != "" {
		o.Optimizer = v
	}

	if v := c.String("driver"); v != "" {
		o.Driver = v
	}

	for _, x := range []struct {
		flag string
		dst  interface{ UnmarshalText([]byte) error }
	}{
		{"opt", &o.Opt},
		{"linking", &o.Linking},
		{"reloc", &o.Reloc},
		{"code-model", &o.CodeModel},
	} {
		v := c.String(x.flag)
		if v == "" {
			continue
		}

		err = x.dst.UnmarshalText([]byte(v))
		if err != nil {
			return o, errors.Wrap(err, "--%v", x.flag)
		}
	}

	if c.Bool("emit-llvm") {
		o.EmitIR = true
	}

	if c.Bool("emit-object") {
		o.EmitObject = true
	}

	if c.Bool("build") {
		o.Build = true
	}

	if c.Bool("library") {
		o.IsMain = false
	}

	return o, nil
}

// report renders every error err carries against the original source and exits.
// User diagnostics exit with 1, compiler defects with 2.
func report(c *cli.Command, name string, u *ast.Unit, err error) {
	src := c.String("source")
	if src == "" && u != nil {
		src = u.Source
	}

	var r *diag.Reporter

	if src != "" {
		var e error

		r, e = diag.LoadReporter(src)
		if e != nil {
			tlog.Printw("no source for diagnostics", "source", src, "err", e)
		}
	}

	if r == nil {
		r = diag.NewReporter(name, nil)
	}

	if c.Bool("no-color") {
		r.Color = false
	}

	q := diag.NewQueue()
	q.Add(err)

	n := q.Len()
	user := q.Flush(r)

	tlog.Printw("compilation failed", "unit", name, "errors", n, "user_errors", user)

	if user != 0 {
		os.Exit(1)
	}

	os.Exit(2)
}
