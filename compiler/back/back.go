package back

import (
	"context"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/diag"
	"github.com/thrushlang/thrush/compiler/tp"
)

type (
	Options struct {
		Triple string
		IsMain bool
	}

	Compiler struct {
		opts Options
	}

	unitContext struct {
		*ir.Module

		opts  Options
		scope *Scope

		entry   bool
		globals map[string]int

		// scope errors, lowering goes on after them
		errs diag.List

		*funContext
	}

	funContext struct {
		fn  *ir.Func
		cur *ir.Block
	}
)

// numericAlign is put on every numeric store and load whatever the operand width.
// Kept as is until it is confirmed whether wider types should get their natural alignment.
const numericAlign = ir.Align(4)

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// CompileUnit lowers the top-level nodes in order and returns the finished module.
func (c *Compiler) CompileUnit(ctx context.Context, nodes []ast.Node) (m *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile unit", "nodes", len(nodes), "triple", c.opts.Triple)
	defer tr.Finish("err", &err)

	u := &unitContext{
		Module:  ir.NewModule(),
		opts:    c.opts,
		scope:   NewScope(),
		globals: map[string]int{},
	}

	u.TargetTriple = c.opts.Triple

	for i, n := range nodes {
		err = u.lower(ctx, n)
		if err != nil {
			return nil, errors.Wrap(err, "node %d (%v)", i, ast.Kind(n))
		}
	}

	if err = u.errs.Err(); err != nil {
		return nil, err
	}

	if d := u.scope.Depth(); d != 0 {
		return nil, diag.NewCompileError("unbalanced scopes at the end of the unit: depth %d", d)
	}

	if tr.If("dump_ir") {
		tr.Printw("module", "ir", u.Module.String())
	}

	tr.Printw("unit compiled", "funcs", len(u.Funcs), "globals", len(u.Globals), "entry", u.entry)

	return u.Module, nil
}

func (u *unitContext) lower(ctx context.Context, n ast.Node) error {
	switch n := n.(type) {
	case *ast.Block:
		return u.block(ctx, n)
	case *ast.Func:
		return u.function(ctx, n)
	case *ast.Return:
		return u.ret(n)
	case ast.String:
		u.constString(n.Value)
		return nil
	case *ast.Print:
		return u.print(n, n.Args)
	case *ast.Println:
		return u.print(n, n.Args)
	case *ast.VarDecl:
		return u.variable(n)
	case *ast.EntryPoint:
		return u.entryPoint(ctx, n)
	default:
		return unsupported(n, "not a statement")
	}
}

func (u *unitContext) block(ctx context.Context, b *ast.Block) (err error) {
	if b == nil {
		return nil
	}

	u.scope.Push()

	for i, s := range b.Stmts {
		err = u.lower(ctx, s)
		if err != nil {
			return errors.Wrap(err, "stmt %d", i)
		}
	}

	return u.scope.Pop()
}

func (u *unitContext) function(ctx context.Context, x *ast.Func) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile func", "name", x.Name, "params", len(x.Params), "public", x.Public)
	defer tr.Finish("err", &err)

	if u.funContext != nil {
		return unsupported(x, "nested function %v", x.Name)
	}

	for _, f := range u.Funcs {
		if f.Name() == x.Name {
			return unsupported(x, "function %v is already declared", x.Name)
		}
	}

	params := make([]*ir.Param, len(x.Params))

	for i, p := range x.Params {
		params[i] = ir.NewParam(p.Name, p.Type.LLType())
	}

	var ret types.Type = types.Void
	if x.Return != nil {
		ret = x.Return.LLType()
	}

	f := u.NewFunc(x.Name, ret, params...)

	if x.Public {
		// no linkage keyword is external linkage
		f.Linkage = enum.LinkageNone
	} else {
		f.Linkage = enum.LinkagePrivate
	}

	u.funContext = &funContext{fn: f}
	u.cur = f.NewBlock("")

	defer func() { u.funContext = nil }()

	u.scope.Forget()
	defer u.scope.Forget()

	u.scope.Push()

	for i, p := range x.Params {
		u.scope.Declare(Binding{
			Name:     p.Name,
			Type:     p.Type,
			Value:    params[i],
			Storage:  storageOf(p.Type),
			Lifetime: Lexical,
		})
	}

	err = u.block(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "func %v", x.Name)
	}

	err = u.scope.Pop()
	if err != nil {
		return err
	}

	switch {
	case x.Return == nil:
		u.terminate(nil)
	case u.cur.Term == nil:
		// falling off the end of a function with a result
		u.cur.NewUnreachable()
	}

	return nil
}

func (u *unitContext) ret(x *ast.Return) error {
	if u.funContext == nil {
		return unsupported(x, "return outside of a function")
	}

	switch v := x.Value.(type) {
	case nil, ast.Null:
		return nil
	case ast.Int:
		if !v.Type.IsInt() {
			return unsupported(x, "int literal of type %v", v.Type)
		}

		u.terminate(constant.NewInt(v.Type.LLType().(*types.IntType), v.Value))
	case ast.String:
		u.terminate(u.constString(v.Value))
	case ast.VarRef:
		val, err := u.resolve(v)
		if err != nil {
			return errors.Wrap(err, "return")
		}

		u.terminate(val)
	default:
		return unsupported(x.Value, "return value")
	}

	return nil
}

// insts is the block to emit into. Code following a terminator
// goes to a new block so it is never placed before the terminator.
func (u *unitContext) insts() *ir.Block {
	if u.cur.Term != nil {
		u.cur = u.fn.NewBlock("")
	}

	return u.cur
}

// terminate appends a return without replacing an existing terminator.
func (u *unitContext) terminate(v value.Value) {
	u.insts().NewRet(v)
}

func (u *unitContext) variable(x *ast.VarDecl) (err error) {
	var val value.Value

	switch {
	case x.Type.IsNumeric():
		val, err = u.numericVar(x)
	case x.Type == tp.String:
		val, err = u.stringVar(x)
	case x.Type == tp.Bool:
		val, err = u.boolVar(x)
	default:
		err = unsupported(x, "variable of type %v", x.Type)
	}

	if err != nil {
		return err
	}

	u.scope.Declare(Binding{
		Name:     x.Name,
		Type:     x.Type,
		Value:    val,
		Storage:  storageOf(x.Type),
		Lifetime: lifetimeOf(x.Type),
	})

	return nil
}

// numericVar allocates a stack cell, stores the initial value and binds the reloaded value.
func (u *unitContext) numericVar(x *ast.VarDecl) (value.Value, error) {
	if u.funContext == nil {
		return nil, unsupported(x, "numeric variable %v outside of a function", x.Name)
	}

	init, err := u.numericInit(x)
	if err != nil {
		return nil, err
	}

	t := x.Type.LLType()

	b := u.insts()

	cell := b.NewAlloca(t)

	st := b.NewStore(init, cell)
	st.Align = numericAlign

	ld := b.NewLoad(t, cell)
	ld.Align = numericAlign

	return ld, nil
}

func (u *unitContext) numericInit(x *ast.VarDecl) (value.Value, error) {
	switch v := x.Value.(type) {
	case nil, ast.Null:
		return x.Type.Zero(), nil
	case ast.Int:
		if !v.Type.IsNumeric() {
			return nil, unsupported(x, "int literal of type %v", v.Type)
		}

		if x.Type.IsFloat() {
			return constant.NewFloat(x.Type.LLType().(*types.FloatType), float64(v.Value)), nil
		}

		return constant.NewInt(x.Type.LLType().(*types.IntType), v.Value), nil
	case ast.Float:
		if !x.Type.IsFloat() {
			return nil, unsupported(x, "float initializer for %v variable %v", x.Type, x.Name)
		}

		return constant.NewFloat(x.Type.LLType().(*types.FloatType), v.Value), nil
	case ast.VarRef:
		if !v.Type.IsNumeric() || !types.Equal(v.Type.LLType(), x.Type.LLType()) {
			return nil, unsupported(x, "%v variable %v initialized from %v variable %v", x.Type, x.Name, v.Type, v.Name)
		}

		return u.resolve(v)
	default:
		return nil, unsupported(x, "initializer of %v variable %v", x.Type, x.Name)
	}
}

func (u *unitContext) stringVar(x *ast.VarDecl) (value.Value, error) {
	var s string

	switch v := x.Value.(type) {
	case nil, ast.Null:
		s = "\x00"
	case ast.String:
		s = v.Value
	default:
		return nil, unsupported(x, "initializer of string variable %v", x.Name)
	}

	return u.namedString(x.Name, s), nil
}

func (u *unitContext) boolVar(x *ast.VarDecl) (value.Value, error) {
	var b bool

	switch v := x.Value.(type) {
	case nil, ast.Null:
	case ast.Bool:
		b = v.Value
	default:
		return nil, unsupported(x, "initializer of bool variable %v", x.Name)
	}

	return u.globalBool(b), nil
}

// resolve finds the value of a variable reference by name and type.
// A name that can't be resolved is recorded and a placeholder of the right type is returned.
func (u *unitContext) resolve(r ast.VarRef) (value.Value, error) {
	if !r.Type.IsNumeric() && r.Type != tp.String && r.Type != tp.Bool {
		return nil, unsupported(r, "reference to %v variable %v", r.Type, r.Name)
	}

	st := storageOf(r.Type)

	b, ok := u.scope.Lookup(r.Name, st)
	if ok {
		return b.Value, nil
	}

	if u.scope.Gone(r.Name, st) {
		u.errs = append(u.errs, diag.Unreachable(r.Name, r.Line))
	} else {
		u.errs = append(u.errs, diag.NotDefined(r.Name, r.Line))
	}

	return placeholder(r.Type), nil
}

func placeholder(k tp.Kind) value.Value {
	switch {
	case k.IsNumeric():
		return k.Zero()
	case k == tp.String:
		return constant.NewNull(types.I8Ptr)
	default:
		return constant.NewNull(types.NewPointer(types.I1))
	}
}
