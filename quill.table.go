package quill

// Table is an ordered mapping from name to handler. Setting a new name appends
// it; setting an existing name replaces the handler in its original position,
// so the later registration wins without changing order. A frozen table is
// read-only for the rest of a compile.
type Table[H any] struct {
	names   []string
	entries map[string]H
	frozen  bool
}

// NewTable creates an empty table
func NewTable[H any]() *Table[H] {
	return &Table[H]{entries: make(map[string]H)}
}

// Set adds or replaces the handler for name and returns the table for chaining.
// It panics on a frozen table.
func (t *Table[H]) Set(name string, handler H) *Table[H] {
	if t.frozen {
		panic(ErrMsgTableFrozen + ": " + name)
	}
	if _, exists := t.entries[name]; !exists {
		t.names = append(t.names, name)
	}
	t.entries[name] = handler
	return t
}

// Get returns the handler registered under name
func (t *Table[H]) Get(name string) (H, bool) {
	if t == nil {
		var zero H
		return zero, false
	}
	h, ok := t.entries[name]
	return h, ok
}

// Has reports whether name is registered
func (t *Table[H]) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Names returns the registered names in order
func (t *Table[H]) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of entries
func (t *Table[H]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Each calls fn for every entry in order
func (t *Table[H]) Each(fn func(name string, handler H)) {
	if t == nil {
		return
	}
	for _, name := range t.names {
		fn(name, t.entries[name])
	}
}

// Merge sets every entry of other into t, in other's order. A nil other is a no-op.
func (t *Table[H]) Merge(other *Table[H]) *Table[H] {
	other.Each(func(name string, handler H) {
		t.Set(name, handler)
	})
	return t
}

// Freeze makes the table read-only
func (t *Table[H]) Freeze() *Table[H] {
	t.frozen = true
	return t
}

// Frozen reports whether the table is read-only
func (t *Table[H]) Frozen() bool {
	return t.frozen
}
