package ast

import (
	"github.com/llir/llvm/ir/value"

	"github.com/thrushlang/thrush/compiler/tp"
)

type (
	// Node is the closed set of tree shapes handed in by the frontend.
	Node interface {
		node()
	}

	Int struct {
		Type  tp.Kind
		Value int64
	}

	Float struct {
		Type  tp.Kind
		Value float64
	}

	String struct {
		Value string
	}

	Bool struct {
		Value bool
	}

	Null struct{}

	Block struct {
		Stmts []Node
	}

	Func struct {
		Name   string
		Params []Param
		Body   *Block
		Return *tp.Kind
		Public bool
	}

	Param struct {
		Name string
		Type tp.Kind
	}

	VarDecl struct {
		Name  string
		Type  tp.Kind
		Value Node // nil if there is no initializer
		Line  int
	}

	VarRef struct {
		Name string
		Type tp.Kind
		Line int
	}

	Return struct {
		Value Node
	}

	EntryPoint struct {
		Body *Block
	}

	Print struct {
		Args []Node
	}

	Println struct {
		Args []Node
	}

	// Lowered is produced by code generation and never accepted as input.
	Lowered struct {
		Type  tp.Kind
		Value value.Value
	}
)

func (Int) node() {}
func (Float) node() {}
func (String) node() {}
func (Bool) node() {}
func (Null) node() {}
func (*Block) node() {}
func (*Func) node() {}
func (Param) node() {}
func (*VarDecl) node() {}
func (VarRef) node() {}
func (*Return) node() {}
func (*EntryPoint) node() {}
func (*Print) node() {}
func (*Println) node() {}
func (Lowered) node() {}

// Line returns the source line a node is pinned to, or 0.
func Line(n Node) int {
	switch n := n.(type) {
	case *VarDecl:
		return n.Line
	case VarRef:
		return n.Line
	default:
		return 0
	}
}

// Kind names a node shape for messages.
func Kind(n Node) string {
	switch n.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case *Block:
		return "block"
	case *Func:
		return "func"
	case Param:
		return "param"
	case *VarDecl:
		return "var"
	case VarRef:
		return "ref"
	case *Return:
		return "return"
	case *EntryPoint:
		return "entry"
	case *Print:
		return "print"
	case *Println:
		return "println"
	case Lowered:
		return "lowered"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
