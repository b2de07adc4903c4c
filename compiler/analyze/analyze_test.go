package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/thrushlang/thrush/compiler/ast"
	"github.com/thrushlang/thrush/compiler/back"
	"github.com/thrushlang/thrush/compiler/diag"
	"github.com/thrushlang/thrush/compiler/tp"
)

func TestAnalyzeSummary(t *testing.T) {
	nodes := []ast.Node{
		&ast.VarDecl{Name: "msg", Type: tp.String, Value: ast.String{Value: "hi"}},
		&ast.Func{Name: "add", Body: &ast.Block{}},
		&ast.EntryPoint{Body: &ast.Block{Stmts: []ast.Node{
			&ast.Block{Stmts: []ast.Node{&ast.Println{}}},
		}}},
	}

	s, err := Analyze(context.Background(), nodes, Options{IsMain: true})
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Funcs:   []string{"add"},
		Globals: []string{"msg"},
		Entry:   true,
	}, s)
}

func TestAnalyzeEntry(t *testing.T) {
	entry := func() ast.Node { return &ast.EntryPoint{Body: &ast.Block{}} }

	_, err := Analyze(context.Background(), []ast.Node{entry(), entry()}, Options{IsMain: true})
	assert.True(t, errors.Is(err, back.ErrDuplicateEntry), "%v", err)

	_, err = Analyze(context.Background(), []ast.Node{entry()}, Options{})
	assert.True(t, errors.Is(err, back.ErrEntryInLibrary), "%v", err)

	s, err := Analyze(context.Background(), []ast.Node{&ast.Func{Name: "lib", Public: true}}, Options{})
	require.NoError(t, err)
	assert.False(t, s.Entry)
}

func TestAnalyzeFuncNames(t *testing.T) {
	_, err := Analyze(context.Background(), []ast.Node{
		&ast.Func{Name: "f"},
		&ast.Func{Name: "f"},
	}, Options{})
	assert.True(t, diag.IsDefect(err))
	assert.Contains(t, err.Error(), "function f is declared twice")

	_, err = Analyze(context.Background(), []ast.Node{
		&ast.Func{Name: "main"},
		&ast.EntryPoint{},
	}, Options{IsMain: true})
	assert.Contains(t, err.Error(), "clashes with the entry point")

	_, err = Analyze(context.Background(), []ast.Node{
		&ast.EntryPoint{},
		&ast.Func{Name: "main"},
	}, Options{IsMain: true})
	assert.Contains(t, err.Error(), "clashes with the entry point")
}

func TestAnalyzeMisplaced(t *testing.T) {
	_, err := Analyze(context.Background(), []ast.Node{
		&ast.Func{Name: "outer", Body: &ast.Block{Stmts: []ast.Node{
			&ast.Block{Stmts: []ast.Node{&ast.Func{Name: "inner"}}},
		}}},
	}, Options{})

	var m MisplacedNodeError
	require.True(t, errors.As(err, &m), "%v", err)
	assert.Equal(t, "function outer", m.Where)
	assert.Contains(t, err.Error(), "func node is not allowed in function outer")

	_, err = Analyze(context.Background(), []ast.Node{
		&ast.EntryPoint{Body: &ast.Block{Stmts: []ast.Node{&ast.EntryPoint{}}}},
	}, Options{IsMain: true})
	assert.True(t, errors.As(err, &m))
	assert.Equal(t, "entry point", m.Where)

	_, err = Analyze(context.Background(), []ast.Node{&ast.Return{}}, Options{})
	assert.True(t, errors.As(err, &m))
	assert.Equal(t, "top level", m.Where)
}

func TestAnalyzeCollectsAll(t *testing.T) {
	_, err := Analyze(context.Background(), []ast.Node{
		&ast.Func{Name: "f"},
		&ast.Return{},
		&ast.Func{Name: "f"},
		&ast.EntryPoint{},
	}, Options{})
	require.Error(t, err)

	var l diag.List
	require.True(t, errors.As(err, &l), "%v", err)
	require.Len(t, l, 3)

	var m MisplacedNodeError
	assert.True(t, errors.As(l[0], &m))
	assert.Contains(t, l[1].Error(), "function f is declared twice")
	assert.True(t, errors.Is(l[2], back.ErrEntryInLibrary))

	q := diag.NewQueue()
	q.Add(err)
	assert.Equal(t, 3, q.Len())
}
