package value_test

import (
	"math"
	"testing"

	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	assert.True(t, value.Equal(value.Nil, value.Nil))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	assert.False(t, value.Equal(value.Bool(true), value.Bool(false)))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.False(t, value.Equal(value.Nil, value.Bool(false)))
	assert.False(t, value.Equal(value.Number(0), value.Bool(false)))

	nan := value.Number(math.NaN())
	assert.False(t, value.Equal(nan, nan))

	a := &value.String{Chars: "foo", Hash: value.HashString("foo")}
	b := &value.String{Chars: "foo", Hash: value.HashString("foo")}
	assert.True(t, value.Equal(a, a))
	assert.False(t, value.Equal(a, b), "distinct objects with equal bytes are only equal once interned")
}

func TestFalsy(t *testing.T) {
	assert.True(t, value.Falsy(value.Nil))
	assert.True(t, value.Falsy(value.Bool(false)))
	assert.False(t, value.Falsy(value.Bool(true)))
	assert.False(t, value.Falsy(value.Number(0)))
	assert.False(t, value.Falsy(&value.String{Chars: ""}))
}

func TestNumberString(t *testing.T) {
	assert.Equal(t, "7", value.Number(7).String())
	assert.Equal(t, "1.5", value.Number(1.5).String())
}

func TestHashStringStable(t *testing.T) {
	assert.Equal(t, value.HashString("foo"), value.HashString("foo"))
	assert.NotEqual(t, value.HashString("foo"), value.HashString("bar"))
}
