package table_test

import (
	"fmt"
	"testing"

	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intern(s string) *value.String {
	return &value.String{Chars: s, Hash: value.HashString(s)}
}

func TestSetGetDelete(t *testing.T) {
	var tbl table.Table
	foo := intern("foo")

	isNew := tbl.Set(foo, value.Number(1))
	assert.True(t, isNew)

	v, ok := tbl.Get(foo)
	require.True(t, ok)
	assert.Equal(t, value.Number(1), v)

	isNew = tbl.Set(foo, value.Number(2))
	assert.False(t, isNew)
	v, _ = tbl.Get(foo)
	assert.Equal(t, value.Number(2), v)

	assert.True(t, tbl.Delete(foo))
	_, ok = tbl.Get(foo)
	assert.False(t, ok)
	assert.False(t, tbl.Delete(foo))
}

func TestGetMissingOnEmptyTable(t *testing.T) {
	var tbl table.Table
	_, ok := tbl.Get(intern("missing"))
	assert.False(t, ok)
}

func TestTombstoneDoesNotBreakProbing(t *testing.T) {
	var tbl table.Table
	keys := make([]*value.String, 0, 8)
	for i := 0; i < 8; i++ {
		k := intern(fmt.Sprintf("key%d", i))
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}

	// delete a handful, scattered, then verify every survivor is still
	// reachable despite tombstones sitting in their probe sequences.
	for i := 0; i < 8; i += 2 {
		require.True(t, tbl.Delete(keys[i]))
	}
	for i := 1; i < 8; i += 2 {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok, "key%d", i)
		assert.Equal(t, value.Number(float64(i)), v)
	}
}

func TestGrowthPreservesEntries(t *testing.T) {
	var tbl table.Table
	const n = 200
	keys := make([]*value.String, n)
	for i := 0; i < n; i++ {
		keys[i] = intern(fmt.Sprintf("k%d", i))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
	assert.Equal(t, n, tbl.Len())
}

func TestFindString(t *testing.T) {
	var tbl table.Table
	foo := intern("foo")
	tbl.Set(foo, value.True)

	got := tbl.FindString("foo", value.HashString("foo"))
	assert.Same(t, foo, got)

	assert.Nil(t, tbl.FindString("bar", value.HashString("bar")))
}

func TestFindStringOnEmptyTable(t *testing.T) {
	var tbl table.Table
	assert.Nil(t, tbl.FindString("foo", value.HashString("foo")))
}

func TestFindStringAfterTombstone(t *testing.T) {
	var tbl table.Table
	foo := intern("foo")
	bar := intern("bar")
	tbl.Set(foo, value.True)
	tbl.Set(bar, value.True)
	tbl.Delete(foo)

	// bar must still be found even if foo's tombstone sits earlier in its
	// probe sequence.
	got := tbl.FindString("bar", value.HashString("bar"))
	assert.Same(t, bar, got)
}
