package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SetAndGet(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		table := NewTable[int]().Set("b", 1).Set("a", 2).Set("c", 3)
		assert.Equal(t, []string{"b", "a", "c"}, table.Names())
		assert.Equal(t, 3, table.Len())
	})

	t.Run("replace keeps original position", func(t *testing.T) {
		table := NewTable[int]().Set("a", 1).Set("b", 2).Set("a", 3)
		assert.Equal(t, []string{"a", "b"}, table.Names())
		v, ok := table.Get("a")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("missing name", func(t *testing.T) {
		table := NewTable[int]()
		_, ok := table.Get("x")
		assert.False(t, ok)
		assert.False(t, table.Has("x"))
	})

	t.Run("names are a copy", func(t *testing.T) {
		table := NewTable[int]().Set("a", 1)
		names := table.Names()
		names[0] = "changed"
		assert.Equal(t, []string{"a"}, table.Names())
	})
}

func TestTable_Merge(t *testing.T) {
	t.Run("later entries override in place", func(t *testing.T) {
		base := NewTable[string]().Set("upper", "core").Set("lower", "core")
		other := NewTable[string]().Set("lower", "ext").Set("shout", "ext")

		base.Merge(other)

		assert.Equal(t, []string{"upper", "lower", "shout"}, base.Names())
		v, _ := base.Get("lower")
		assert.Equal(t, "ext", v)
	})

	t.Run("nil other is a no-op", func(t *testing.T) {
		base := NewTable[string]().Set("a", "x")
		base.Merge(nil)
		assert.Equal(t, 1, base.Len())
	})
}

func TestTable_Frozen(t *testing.T) {
	table := NewTable[int]().Set("a", 1).Freeze()
	assert.True(t, table.Frozen())
	assert.Panics(t, func() { table.Set("b", 2) })
	assert.Equal(t, []string{"a"}, table.Names())
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table[int]
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Names())
	assert.False(t, table.Has("a"))

	called := false
	table.Each(func(string, int) { called = true })
	assert.False(t, called)
}

func TestTable_Each(t *testing.T) {
	table := NewTable[int]().Set("x", 1).Set("y", 2)
	var got []string
	sum := 0
	table.Each(func(name string, v int) {
		got = append(got, name)
		sum += v
	})
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, 3, sum)
}
