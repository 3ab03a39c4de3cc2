// Package engine holds the state shared between the compiler and the
// VM: the string intern table and the list of every heap-allocated
// object, so that "one place frees everything" without process-wide
// mutable globals (per spec.md's design notes on the shared
// compiler/VM string heap). An Engine is created once by the host and
// passed by reference into both the compiler and the VM.
package engine

import (
	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

// Engine owns the intern table and the heap object list shared by the
// compiler (for string constants) and the VM (for runtime string
// creation and function values). Every string, whether discovered at
// compile time or constructed at runtime, is routed through Intern so
// that value equality coincides with handle identity.
type Engine struct {
	strings table.Table
	objects []value.Object
}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Intern returns the canonical *value.String for chars, allocating and
// registering a new one only if chars has never been interned before.
func (e *Engine) Intern(chars string) *value.String {
	hash := value.HashString(chars)
	if s := e.strings.FindString(chars, hash); s != nil {
		return s
	}
	s := &value.String{Chars: chars, Hash: hash}
	e.strings.Set(s, value.True)
	e.objects = append(e.objects, s)
	return s
}

// NewFunction allocates and registers a new, empty Function object,
// owned by this Engine.
func (e *Engine) NewFunction() *chunk.Function {
	fn := &chunk.Function{}
	e.objects = append(e.objects, fn)
	return fn
}

// Objects returns every live heap object, in allocation order. Exposed
// for tests and diagnostics; the VM never needs to walk this list since
// Go's garbage collector reclaims unreachable objects on its own, but
// the Engine remains the single root that could enumerate or release
// them, which satisfies the "one place frees everything" contract.
func (e *Engine) Objects() []value.Object {
	return e.objects
}

// Reset clears the intern table and the heap object list, as if the
// Engine were freshly constructed. The CLI does not call it: the REPL
// keeps one Engine for the whole session, and a one-shot file run
// creates its own Engine.
func (e *Engine) Reset() {
	e.strings = table.Table{}
	e.objects = nil
}
