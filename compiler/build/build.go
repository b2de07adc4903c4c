package build

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/llir/llvm/ir"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	ArtifactKind int

	Artifact struct {
		Kind ArtifactKind
		Path string
		Size int64
	}

	// Builder turns a finished module into the configured artifact.
	Builder struct {
		opts Options
		run  Runner
	}
)

const (
	IRText ArtifactKind = iota
	Object
	Executable
)

const (
	ExtIR      = ".ll"
	ExtBitcode = ".bc"
	ExtObject  = ".o"
)

var (
	ErrOptimizerMissing = errors.New("compilation failed: the LLVM optimizer is not installed")
	ErrDriverMissing    = errors.New("compilation failed: the clang driver is not installed")
)

// passes run over the bitcode after the optimization tier, in this order.
var passes = []string{
	"globalopt",
	"globaldce",
	"dce",
	"instcombine",
	"strip-dead-prototypes",
	"strip",
	"mem2reg",
	"memcpyopt",
}

func New(opts Options, run Runner) *Builder {
	if run == nil {
		run = ExecRunner{}
	}

	if opts.Optimizer == "" {
		opts.Optimizer = DefaultOptimizer
	}

	if opts.Driver == "" {
		opts.Driver = DefaultDriver
	}

	return &Builder{opts: opts, run: run}
}

func (b *Builder) Options() Options { return b.opts }

// Build writes the artifact. Every external tool is invoked at most once
// and the transient bitcode file is removed on every path that created it.
func (b *Builder) Build(ctx context.Context, m *ir.Module) (a Artifact, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "build: artifact", "name", b.opts.Name, "opt", b.opts.Opt, "emit_llvm", b.opts.EmitIR, "build", b.opts.Build)
	defer tr.Finish("err", &err)

	if b.opts.EmitIR {
		a = Artifact{Kind: IRText, Path: b.path(ExtIR)}

		a.Size, err = writeModule(a.Path, m)
		if err != nil {
			return Artifact{}, errors.Wrap(err, "emit llvm")
		}

		tr.Printw("artifact", "kind", a.Kind, "path", a.Path, "size", humanize.Bytes(uint64(a.Size)))

		return a, nil
	}

	if b.opts.Timeout != 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(b.opts.Timeout))
		defer cancel()
	}

	bc := b.path(ExtBitcode)

	size, err := writeModule(bc, m)
	if err != nil {
		return Artifact{}, errors.Wrap(err, "write bitcode")
	}

	defer func() {
		e := os.Remove(bc)
		if e != nil && !os.IsNotExist(e) && err == nil {
			err = errors.Wrap(e, "remove bitcode")
		}
	}()

	tr.Printw("bitcode written", "path", bc, "size", humanize.Bytes(uint64(size)))

	err = b.optimize(ctx, bc)
	if err != nil {
		return Artifact{}, err
	}

	a, err = b.link(ctx, bc)
	if err != nil {
		return Artifact{}, err
	}

	if st, e := os.Stat(a.Path); e == nil {
		a.Size = st.Size()
	}

	tr.Printw("artifact", "kind", a.Kind, "path", a.Path, "size", humanize.Bytes(uint64(a.Size)))

	return a, nil
}

func (b *Builder) optimize(ctx context.Context, bc string) (err error) {
	err = b.run.Probe(ctx, b.opts.Optimizer)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("optimizer probe failed", "tool", b.opts.Optimizer, "err", err)
		return ErrOptimizerMissing
	}

	args := make([]string, 0, len(passes)+4)
	args = append(args, "-p="+b.opts.Opt.Flag())

	for _, p := range passes {
		args = append(args, "-p="+p)
	}

	args = append(args, bc, "-o", bc)

	err = b.run.Run(ctx, b.opts.Optimizer, args...)
	if err != nil {
		return errors.Wrap(err, "optimize")
	}

	return nil
}

func (b *Builder) link(ctx context.Context, bc string) (a Artifact, err error) {
	err = b.run.Probe(ctx, b.opts.Driver)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("driver probe failed", "tool", b.opts.Driver, "err", err)
		return a, ErrDriverMissing
	}

	args := []string{b.opts.Linking.Flag(), "-ffast-math"}

	if b.opts.Build && !b.opts.EmitObject {
		a = Artifact{Kind: Executable, Path: b.path("")}
	} else {
		a = Artifact{Kind: Object, Path: b.path(ExtObject)}
		args = append(args, "-c")
	}

	if f := b.opts.Reloc.Flag(); f != "" {
		args = append(args, f)
	}

	if f := b.opts.CodeModel.Flag(); f != "" {
		args = append(args, f)
	}

	args = append(args, bc, "-o", a.Path)

	err = b.run.Run(ctx, b.opts.Driver, args...)
	if err != nil {
		return a, errors.Wrap(err, "link")
	}

	return a, nil
}

func (b *Builder) path(ext string) string {
	return filepath.Join(b.opts.Path, b.opts.Name+ext)
}

func writeModule(name string, m *ir.Module) (n int64, err error) {
	f, err := os.Create(name)
	if err != nil {
		return 0, errors.Wrap(err, "create")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close")
		}
	}()

	n, err = m.WriteTo(f)
	if err != nil {
		return n, errors.Wrap(err, "write module")
	}

	return n, nil
}

func (k ArtifactKind) String() string {
	switch k {
	case IRText:
		return "llvm-ir"
	case Object:
		return "object"
	case Executable:
		return "executable"
	default:
		return "unknown"
	}
}
