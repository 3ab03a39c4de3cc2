// Package value implements Ember's runtime value representation: a
// tagged union of Nil, Bool, Number, and heap-allocated Obj references.
// String objects are interned through the shared intern table owned by
// the engine (see lang/engine), never process-wide globals.
package value

import "strconv"

// Value is Ember's tagged-union runtime value. The concrete Go type
// implementing it IS the tag: NilType, Bool, Number are the immediate
// (non-heap) variants; everything else is an Object (heap-allocated).
type Value interface {
	// Type returns the runtime type name used in error messages
	// ("nil", "bool", "number", "string", "function", ...).
	Type() string
	// String formats the value the way the `print` statement does.
	String() string
}

// NilType is the single inhabitant of the Nil variant.
type NilType struct{}

// Nil is the one Value representing the absence of a value.
var Nil = NilType{}

func (NilType) Type() string   { return "nil" }
func (NilType) String() string { return "nil" }

// Bool is the boolean variant.
type Bool bool

// True and False are the two Bool values, provided for readability at
// call sites (equivalent to Bool(true) / Bool(false)).
const (
	True  Bool = true
	False Bool = false
)

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is the sole numeric variant: an IEEE-754 double. Equality is
// Go's built-in float64 ==, so NaN != NaN (and 0 == -0).
type Number float64

func (n Number) Type() string { return "number" }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// ObjType discriminates the heap-allocated Object variants.
type ObjType uint8

const (
	ObjString ObjType = iota
	ObjFunction
)

func (t ObjType) String() string {
	switch t {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	default:
		return "unknown object"
	}
}

// Object is a heap-allocated Value. The engine owns every live Object in
// a single collection so teardown is one pass (see lang/engine); this
// replaces the reference implementation's intrusive linked-list-of-Obj
// with a single owner collection, per spec.md's design notes.
type Object interface {
	Value
	ObjType() ObjType
}

// Equal implements value equality per the data model: Nil==Nil, Bool by
// value, Number by ==  (so NaN != NaN), Obj by identity (sound because
// every String is interned and every Function is unique), and any
// cross-type comparison is false.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NilType:
		_, ok := b.(NilType)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	default:
		// Object variants: identity. Two interface values holding the same
		// concrete pointer compare equal; different pointers (even if they
		// happen to be of the same concrete type) compare unequal, which is
		// exactly object identity.
		return a == b
	}
}

// Falsy reports whether v is "falsy": Nil or Bool(false). Every other
// value, including Number(0), is truthy.
func Falsy(v Value) bool {
	switch vv := v.(type) {
	case NilType:
		return true
	case Bool:
		return !bool(vv)
	default:
		return false
	}
}

// HashString computes the 32-bit FNV-1a hash of s, used both by the
// intern table and by every String object's precomputed Hash field.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
