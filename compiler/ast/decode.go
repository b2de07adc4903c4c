package ast

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/diag"
	"github.com/thrushlang/thrush/compiler/tp"
)

type (
	// Unit is one compilation unit as handed over by the frontend.
	Unit struct {
		Source string // path of the original source, used for diagnostics
		Nodes  []Node
	}

	decoder struct {
		depth int
	}
)

const maxDepth = 512

func DecodeFile(ctx context.Context, name string) (*Unit, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read ast file", "size", len(data), "name", name)

	return Decode(ctx, data)
}

// Decode reads the JSON hand-off document: either an array of top-level
// nodes or an object with "nodes" and an optional "source".
func Decode(ctx context.Context, data []byte) (u *Unit, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ast: decode", "size", len(data))
	defer tr.Finish("err", &err)

	if !gjson.ValidBytes(data) {
		return nil, syntaxError(0, "invalid ast document", "the frontend must emit a well-formed JSON document")
	}

	root := gjson.ParseBytes(data)
	u = &Unit{}

	nodes := root
	if root.IsObject() {
		u.Source = root.Get("source").String()
		nodes = root.Get("nodes")
	}

	if !nodes.IsArray() {
		return nil, syntaxError(0, "top-level nodes expected", "the document must be an array of nodes or an object with a \"nodes\" array")
	}

	var d decoder

	for i, r := range nodes.Array() {
		n, err := d.node(r)
		if err != nil {
			return nil, errors.Wrap(err, "node %d", i)
		}

		u.Nodes = append(u.Nodes, n)
	}

	tr.Printw("decoded", "nodes", len(u.Nodes), "source", u.Source)

	return u, nil
}

func (d *decoder) node(r gjson.Result) (_ Node, err error) {
	if !r.IsObject() {
		return nil, syntaxError(0, "node object expected", fmt.Sprintf("got %s", r.Type))
	}

	d.depth++
	defer func() { d.depth-- }()

	if d.depth > maxDepth {
		return nil, syntaxError(line(r), "nesting too deep", fmt.Sprintf("nodes may nest at most %d levels", maxDepth))
	}

	kind := r.Get("kind").String()

	switch kind {
	case "int":
		t, err := d.kind(r, "type")
		if err != nil {
			return nil, err
		}

		return Int{Type: t, Value: r.Get("value").Int()}, nil
	case "float":
		t, err := d.kind(r, "type")
		if err != nil {
			return nil, err
		}

		return Float{Type: t, Value: r.Get("value").Float()}, nil
	case "string":
		return String{Value: r.Get("value").String()}, nil
	case "bool":
		return Bool{Value: r.Get("value").Bool()}, nil
	case "null":
		return Null{}, nil
	case "block":
		return d.block(r)
	case "func":
		return d.fn(r)
	case "param":
		return d.param(r)
	case "var":
		t, err := d.kind(r, "type")
		if err != nil {
			return nil, err
		}

		x := &VarDecl{
			Name: r.Get("name").String(),
			Type: t,
			Line: line(r),
		}

		if v := r.Get("value"); v.Exists() && v.Type != gjson.Null {
			x.Value, err = d.node(v)
			if err != nil {
				return nil, errors.Wrap(err, "var %v", x.Name)
			}
		}

		return x, nil
	case "ref":
		t, err := d.kind(r, "type")
		if err != nil {
			return nil, err
		}

		return VarRef{Name: r.Get("name").String(), Type: t, Line: line(r)}, nil
	case "return":
		x := &Return{Value: Null{}}

		if v := r.Get("value"); v.Exists() && v.Type != gjson.Null {
			x.Value, err = d.node(v)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}

		return x, nil
	case "entry":
		b, err := d.block(r.Get("body"))
		if err != nil {
			return nil, errors.Wrap(err, "entry")
		}

		return &EntryPoint{Body: b}, nil
	case "print", "println":
		args, err := d.list(r.Get("args"))
		if err != nil {
			return nil, errors.Wrap(err, "%v", kind)
		}

		if kind == "print" {
			return &Print{Args: args}, nil
		}

		return &Println{Args: args}, nil
	default:
		return nil, syntaxError(line(r), fmt.Sprintf("unknown node kind %q", kind), "known kinds: int, float, string, bool, null, block, func, param, var, ref, return, entry, print, println")
	}
}

func (d *decoder) block(r gjson.Result) (*Block, error) {
	if !r.IsObject() || r.Get("kind").String() != "block" {
		return nil, syntaxError(line(r), "block expected", "function and entry bodies must be block nodes")
	}

	stmts, err := d.list(r.Get("stmts"))
	if err != nil {
		return nil, errors.Wrap(err, "block")
	}

	return &Block{Stmts: stmts}, nil
}

func (d *decoder) fn(r gjson.Result) (_ *Func, err error) {
	f := &Func{
		Name:   r.Get("name").String(),
		Public: r.Get("public").Bool(),
	}

	for i, p := range r.Get("params").Array() {
		x, err := d.param(p)
		if err != nil {
			return nil, errors.Wrap(err, "func %v: param %d", f.Name, i)
		}

		f.Params = append(f.Params, x)
	}

	if rt := r.Get("return"); rt.Exists() && rt.Type != gjson.Null {
		t, err := d.kind(r, "return")
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}

		f.Return = &t
	}

	f.Body, err = d.block(r.Get("body"))
	if err != nil {
		return nil, errors.Wrap(err, "func %v", f.Name)
	}

	return f, nil
}

func (d *decoder) param(r gjson.Result) (Param, error) {
	t, err := d.kind(r, "type")
	if err != nil {
		return Param{}, err
	}

	return Param{Name: r.Get("name").String(), Type: t}, nil
}

func (d *decoder) list(r gjson.Result) (l []Node, err error) {
	if r.Exists() && !r.IsArray() {
		return nil, syntaxError(0, "node list expected", fmt.Sprintf("got %s", r.Type))
	}

	for i, x := range r.Array() {
		n, err := d.node(x)
		if err != nil {
			return nil, errors.Wrap(err, "item %d", i)
		}

		l = append(l, n)
	}

	return l, nil
}

func (d *decoder) kind(r gjson.Result, field string) (tp.Kind, error) {
	name := r.Get(field).String()

	k, err := tp.Parse(name)
	if err != nil {
		return tp.Invalid, syntaxError(line(r), fmt.Sprintf("unknown type %q", name), "use one of i8..i64, u8..u64, f32, f64, bool, str")
	}

	return k, nil
}

func line(r gjson.Result) int {
	return int(r.Get("line").Int())
}

func syntaxError(line int, title, help string) diag.ParseError {
	return diag.ParseError{
		Kind:  diag.ParseSyntaxError,
		Title: title,
		Help:  help,
		Line:  line,
	}
}
