package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/tp"
)

func TestFormatUnit(t *testing.T) {
	i64 := tp.I64

	nodes := []ast.Node{
		&ast.Func{
			Name:   "add",
			Public: true,
			Params: []ast.Param{{Name: "a", Type: tp.I64}, {Name: "b", Type: tp.I64}},
			Return: &i64,
			Body: &ast.Block{Stmts: []ast.Node{
				&ast.Return{Value: ast.VarRef{Name: "a", Type: tp.I64}},
			}},
		},
		&ast.EntryPoint{Body: &ast.Block{Stmts: []ast.Node{
			&ast.VarDecl{Name: "x", Type: tp.I32, Value: ast.Int{Type: tp.I32, Value: 5}},
			&ast.VarDecl{Name: "y", Type: tp.F64},
			&ast.Block{Stmts: []ast.Node{
				&ast.Println{Args: []ast.Node{ast.String{Value: "x = %d\n"}, ast.VarRef{Name: "x"}}},
			}},
			&ast.Print{Args: []ast.Node{ast.Bool{Value: true}, ast.Float{Type: tp.F32, Value: 0.5}}},
			&ast.Return{Value: ast.Null{}},
		}}},
	}

	b, err := Format(context.Background(), nil, nodes)
	require.NoError(t, err)

	assert.Equal(t, `pub fn add(a i64, b i64) i64 {
	return a
}

fn main() {
	var x i32 = 5i32
	var y f64
	{
		println("x = %d\n", x)
	}
	print(true, 0.5f32)
	return
}
`, string(b))
}

func TestFormatUnitPointer(t *testing.T) {
	b, err := Format(context.Background(), nil, &ast.Unit{Nodes: []ast.Node{
		&ast.Func{Name: "f", Body: &ast.Block{}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "fn f() {\n}\n", string(b))
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(context.Background(), nil, 42)
	assert.Error(t, err)

	_, err = Format(context.Background(), nil, &ast.Print{Args: []ast.Node{&ast.Block{}}})
	assert.Error(t, err)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "var x i32", Short(&ast.VarDecl{Name: "x", Type: tp.I32}))
	assert.Equal(t, "fn main() {", Short(&ast.EntryPoint{}))
	assert.Equal(t, "<lowered u16>", Short(ast.Lowered{Type: tp.U16}))
	assert.Equal(t, "", Short(&ast.Print{Args: []ast.Node{&ast.Block{}}}))
}
