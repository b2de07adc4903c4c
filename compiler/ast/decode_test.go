package ast

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/thrushlang/thrush/compiler/diag"
	"github.com/thrushlang/thrush/compiler/tp"
)

func TestDecodeUnit(t *testing.T) {
	u, err := Decode(context.Background(), []byte(`{
		"source": "hello.th",
		"nodes": [
			{"kind": "var", "name": "greeting", "type": "str", "value": {"kind": "string", "value": "hi"}, "line": 1},
			{"kind": "func", "name": "add", "public": true, "return": "i64",
				"params": [{"kind": "param", "name": "a", "type": "i64"}],
				"body": {"kind": "block", "stmts": [
					{"kind": "return", "value": {"kind": "ref", "name": "a", "type": "i64", "line": 3}}
				]}},
			{"kind": "entry", "body": {"kind": "block", "stmts": [
				{"kind": "var", "name": "x", "type": "f64", "value": {"kind": "float", "type": "f64", "value": 1.5}, "line": 6},
				{"kind": "var", "name": "ok", "type": "bool", "value": null, "line": 7},
				{"kind": "println", "args": [{"kind": "string", "value": "%f"}, {"kind": "ref", "name": "x", "type": "f64", "line": 8}]},
				{"kind": "print", "args": [{"kind": "int", "type": "u8", "value": 7}]},
				{"kind": "return"}
			]}}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "hello.th", u.Source)

	i64 := tp.I64

	assert.Equal(t, []Node{
		&VarDecl{Name: "greeting", Type: tp.String, Value: String{Value: "hi"}, Line: 1},
		&Func{
			Name:   "add",
			Public: true,
			Return: &i64,
			Params: []Param{{Name: "a", Type: tp.I64}},
			Body: &Block{Stmts: []Node{
				&Return{Value: VarRef{Name: "a", Type: tp.I64, Line: 3}},
			}},
		},
		&EntryPoint{Body: &Block{Stmts: []Node{
			&VarDecl{Name: "x", Type: tp.F64, Value: Float{Type: tp.F64, Value: 1.5}, Line: 6},
			&VarDecl{Name: "ok", Type: tp.Bool, Line: 7},
			&Println{Args: []Node{String{Value: "%f"}, VarRef{Name: "x", Type: tp.F64, Line: 8}}},
			&Print{Args: []Node{Int{Type: tp.U8, Value: 7}}},
			&Return{Value: Null{}},
		}}},
	}, u.Nodes)
}

func TestDecodeArray(t *testing.T) {
	u, err := Decode(context.Background(), []byte(`[{"kind": "string", "value": "x"}, {"kind": "null"}]`))
	require.NoError(t, err)

	assert.Equal(t, "", u.Source)
	assert.Equal(t, []Node{String{Value: "x"}, Null{}}, u.Nodes)
}

func TestDecodeErrors(t *testing.T) {
	for _, tc := range []struct {
		Name string
		Doc  string
		Err  string
		Line int
	}{
		{Name: "invalid_json", Doc: `[{"kind": `, Err: "invalid ast document"},
		{Name: "not_nodes", Doc: `{"source": "a"}`, Err: "top-level nodes expected"},
		{Name: "not_object", Doc: `[1]`, Err: "node object expected"},
		{Name: "unknown_kind", Doc: `[{"kind": "while", "line": 4}]`, Err: `unknown node kind "while"`, Line: 4},
		{Name: "unknown_type", Doc: `[{"kind": "var", "name": "x", "type": "i128", "line": 2}]`, Err: `unknown type "i128"`, Line: 2},
		{Name: "body_not_block", Doc: `[{"kind": "entry", "body": {"kind": "null"}}]`, Err: "block expected"},
		{Name: "args_not_list", Doc: `[{"kind": "print", "args": {"kind": "null"}}]`, Err: "node list expected"},
		{Name: "bad_return_type", Doc: `[{"kind": "func", "name": "f", "return": "void", "body": {"kind": "block"}}]`, Err: `unknown type "void"`},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := Decode(context.Background(), []byte(tc.Doc))
			require.Error(t, err)

			var pe diag.ParseError
			require.True(t, errors.As(err, &pe), "%v", err)

			assert.Equal(t, diag.ParseSyntaxError, pe.Kind)
			assert.Equal(t, tc.Err, pe.Title)
			assert.Equal(t, tc.Line, pe.Line)
			assert.False(t, diag.IsDefect(err))
		})
	}
}

func TestDecodeDepth(t *testing.T) {
	doc := `{"kind": "block", "stmts": []}`

	for i := 0; i < maxDepth+1; i++ {
		doc = `{"kind": "block", "stmts": [` + doc + `]}`
	}

	_, err := Decode(context.Background(), []byte("["+doc+"]"))

	var pe diag.ParseError
	require.True(t, errors.As(err, &pe), "%v", err)
	assert.Equal(t, "nesting too deep", pe.Title)
}

func TestDecodeFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "unit.json")
	require.NoError(t, os.WriteFile(name, []byte(`[{"kind": "entry", "body": {"kind": "block"}}]`), 0o644))

	u, err := DecodeFile(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, []Node{&EntryPoint{Body: &Block{}}}, u.Nodes)

	_, err = DecodeFile(context.Background(), name+".missing")
	assert.Error(t, err)
}

func TestKindAndLine(t *testing.T) {
	assert.Equal(t, "var", Kind(&VarDecl{}))
	assert.Equal(t, "ref", Kind(VarRef{}))
	assert.Equal(t, "entry", Kind(&EntryPoint{}))
	assert.Equal(t, "nil", Kind(nil))

	assert.Equal(t, 3, Line(&VarDecl{Line: 3}))
	assert.Equal(t, 5, Line(VarRef{Line: 5}))
	assert.Equal(t, 0, Line(Int{}))
}
