package back

import (
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/thrushlang/thrush/compiler/tp"
)

type (
	// Storage is how a bound value is represented.
	Storage int

	// Lifetime is how long a binding stays resolvable.
	Lifetime int

	Binding struct {
		Name     string
		Type     tp.Kind
		Value    value.Value
		Storage  Storage
		Lifetime Lifetime
		Depth    int // frame the binding was declared in
	}

	// Scope is the symbol table of a compilation unit.
	// Frame 0 is the unit frame; len(frames) == depth+1 always holds.
	Scope struct {
		frames []map[symkey]Binding
		gone   map[symkey]int
	}

	symkey struct {
		name string
		st   Storage
	}
)

const (
	// Inline bindings hold the loaded value itself.
	Inline Storage = iota
	// Global bindings hold a pointer to a module global.
	Global
)

const (
	// Lexical bindings die with the frame that declared them.
	Lexical Lifetime = iota
	// UnitLifetime bindings live until the end of the compilation unit.
	UnitLifetime
)

var ErrScopeUnderflow = errors.New("leaving the unit frame")

// storageOf and lifetimeOf are the only place deciding representation and lifetime.
// Strings and booleans are module globals and stay reachable after their block exits.
func storageOf(k tp.Kind) Storage {
	if k.IsNumeric() {
		return Inline
	}

	return Global
}

func lifetimeOf(k tp.Kind) Lifetime {
	if k.IsNumeric() {
		return Lexical
	}

	return UnitLifetime
}

func NewScope() *Scope {
	return &Scope{
		frames: []map[symkey]Binding{{}},
		gone:   map[symkey]int{},
	}
}

func (s *Scope) Depth() int { return len(s.frames) - 1 }

func (s *Scope) Push() {
	s.frames = append(s.frames, map[symkey]Binding{})

	tlog.V("scope").Printw("push frame", "depth", s.Depth())
}

func (s *Scope) Pop() error {
	if len(s.frames) == 1 {
		return ErrScopeUnderflow
	}

	last := s.frames[len(s.frames)-1]

	for k := range last {
		s.gone[k]++
	}

	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]

	tlog.V("scope").Printw("pop frame", "depth", s.Depth(), "dropped", len(last))

	return nil
}

// Declare binds b in the innermost frame, or in the unit frame if b has unit lifetime.
// A later declaration with the same name and storage shadows the earlier one.
func (s *Scope) Declare(b Binding) {
	f := len(s.frames) - 1
	if b.Lifetime == UnitLifetime {
		f = 0
	}

	b.Depth = f
	s.frames[f][symkey{b.Name, b.Storage}] = b

	tlog.V("scope").Printw("declare", "name", b.Name, "type", b.Type, "frame", f, "depth", s.Depth())
}

// Lookup walks frames from the innermost outward.
func (s *Scope) Lookup(name string, st Storage) (Binding, bool) {
	k := symkey{name, st}

	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][k]; ok {
			return b, true
		}
	}

	return Binding{}, false
}

// Forget clears the record of names left behind by popped frames.
// Called at function boundaries.
func (s *Scope) Forget() {
	for k := range s.gone {
		delete(s.gone, k)
	}
}

// Gone reports whether name was bound in a frame that has since been left.
func (s *Scope) Gone(name string, st Storage) bool {
	return s.gone[symkey{name, st}] != 0
}
