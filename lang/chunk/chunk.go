// Package chunk implements the compiled unit of Ember bytecode: an
// append-only instruction stream, a parallel source-line array, and a
// constant pool, plus the Function object that owns a Chunk. Function
// lives here rather than in lang/value because it is the one Obj
// variant that depends on Chunk; lang/value stays a leaf package so
// Chunk can depend on it without a cycle.
package chunk

import (
	"fmt"

	"github.com/mna/ember/lang/value"
)

// MaxConstants is the maximum number of distinct constants a single
// Chunk's pool may hold: the constant pool is indexed by a single byte.
const MaxConstants = 256

// Chunk is an append-only array of bytecode bytes, a parallel array of
// source line numbers (Lines[i] is the line of Code[i]), and a constant
// pool.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// Write appends a raw byte to the chunk, recording the source line it
// came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends val to the constant pool and returns its index.
// It errors once the pool would exceed MaxConstants entries.
func (c *Chunk) AddConstant(val value.Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1, nil
}

// Function is the heap-allocated Obj variant representing a compiled
// function value (the top-level script compiles into an anonymous,
// zero-arity Function).
type Function struct {
	Arity int
	Chunk Chunk
	Name  *value.String // nil for the top-level script
}

func (f *Function) Type() string { return "function" }

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

func (f *Function) ObjType() value.ObjType { return value.ObjFunction }

var _ value.Object = (*Function)(nil)
