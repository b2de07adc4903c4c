package back

import (
	"context"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/tp"
)

const (
	PrintFunc = "printf"
	EntryFunc = "main"
)

// runtimePrint returns the C printf declaration, declaring it on first use.
// A function of that name with another signature is an error.
func (u *unitContext) runtimePrint(n ast.Node) (*ir.Func, error) {
	for _, f := range u.Funcs {
		if f.Name() != PrintFunc {
			continue
		}

		if !isPrintSig(f.Sig) {
			return nil, unsupported(n, "%v is declared as %v, not the runtime print", PrintFunc, f.Sig)
		}

		return f, nil
	}

	f := u.NewFunc(PrintFunc, types.I32, ir.NewParam("", types.I8Ptr))
	f.Sig.Variadic = true

	tlog.V("runtime").Printw("declared runtime function", "name", PrintFunc)

	return f, nil
}

func isPrintSig(sig *types.FuncType) bool {
	return sig.Variadic &&
		types.Equal(sig.RetType, types.I32) &&
		len(sig.Params) == 1 &&
		types.Equal(sig.Params[0], types.I8Ptr)
}

func (u *unitContext) print(n ast.Node, args []ast.Node) error {
	if u.funContext == nil {
		return unsupported(n, "print outside of a function")
	}

	printf, err := u.runtimePrint(n)
	if err != nil {
		return err
	}

	vals := make([]value.Value, 0, len(args))

	for i, a := range args {
		v, err := u.printArg(a)
		if err != nil {
			return errors.Wrap(err, "arg %d", i)
		}

		vals = append(vals, v)
	}

	u.insts().NewCall(printf, vals...)

	return nil
}

func (u *unitContext) printArg(a ast.Node) (value.Value, error) {
	switch a := a.(type) {
	case ast.String:
		return u.constString(a.Value), nil
	case ast.Int:
		if !a.Type.IsInt() {
			return nil, unsupported(a, "int literal of type %v", a.Type)
		}

		return constant.NewInt(a.Type.LLType().(*types.IntType), a.Value), nil
	case ast.VarRef:
		if !a.Type.IsNumeric() && a.Type != tp.String && a.Type != tp.Bool {
			return nil, unsupported(a, "printing %v variable %v", a.Type, a.Name)
		}

		return u.resolve(a)
	default:
		return nil, unsupported(a, "print argument")
	}
}

// entryPoint synthesizes the process entry function around the wrapper body.
func (u *unitContext) entryPoint(ctx context.Context, x *ast.EntryPoint) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile entry point")
	defer tr.Finish("err", &err)

	if !u.opts.IsMain {
		return ErrEntryInLibrary
	}

	if u.entry {
		return ErrDuplicateEntry
	}

	if u.funContext != nil {
		return unsupported(x, "entry point inside a function")
	}

	u.entry = true

	f := u.NewFunc(EntryFunc, types.I32)

	u.funContext = &funContext{fn: f}
	u.cur = f.NewBlock("")

	defer func() { u.funContext = nil }()

	u.scope.Forget()
	defer u.scope.Forget()

	err = u.block(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "entry")
	}

	u.terminate(constant.NewInt(types.I32, 0))

	return nil
}

// constString is an unnamed immutable byte array holding s.
func (u *unitContext) constString(s string) value.Value {
	g := u.NewGlobalDef("", constant.NewCharArrayFromString(s))
	g.Linkage = enum.LinkagePrivate
	g.Immutable = true
	g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr

	return constant.NewBitCast(g, types.I8Ptr)
}

// namedString is a mutable byte array global named after the variable.
func (u *unitContext) namedString(name, s string) value.Value {
	g := u.NewGlobalDef(u.globalName(name), constant.NewCharArrayFromString(s))
	g.Linkage = enum.LinkagePrivate

	return constant.NewBitCast(g, types.I8Ptr)
}

// globalBool is a private i1 global. The binding is the global's address.
func (u *unitContext) globalBool(v bool) value.Value {
	g := u.NewGlobalDef("", constant.NewBool(v))
	g.Linkage = enum.LinkagePrivate

	return g
}

func (u *unitContext) globalName(name string) string {
	n := u.globals[name]
	u.globals[name]++

	if n == 0 {
		return name
	}

	return fmt.Sprintf("%s.%d", name, n)
}
