// Package table implements the open-addressing hash table that backs
// both the VM's globals map and the engine's string intern set.
package table

import "github.com/mna/ember/lang/value"

const (
	maxLoad     = 0.75
	minCapacity = 8
)

type entry struct {
	key       *value.String
	val       value.Value
	tombstone bool
}

// Table is an open-addressing hash table keyed by interned *value.String
// pointers, with tombstone-based deletion and linear probing.
type Table struct {
	entries []entry
	count   int // live entries plus tombstones, for load-factor purposes
}

// Set stores val under key, growing the table first if needed. It
// reports whether key was not already present (a new key).
func (t *Table) Set(key *value.String, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}

	e := t.findEntry(key)
	isNew := e.key == nil
	if isNew && !e.tombstone {
		t.count++
	}
	e.key = key
	e.val = val
	e.tombstone = false
	return isNew
}

// Get returns the value stored under key, if any.
func (t *Table) Get(key *value.String) (value.Value, bool) {
	if t.count == 0 {
		return nil, false
	}
	e := t.findEntry(key)
	if e.key == nil {
		return nil, false
	}
	return e.val, true
}

// Delete removes key from the table, leaving a tombstone so that probe
// sequences through this slot keep working for other keys. It reports
// whether key was present.
func (t *Table) Delete(key *value.String) bool {
	if t.count == 0 {
		return false
	}
	e := t.findEntry(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.val = nil
	e.tombstone = true
	return true
}

// FindString probes the table by raw bytes and precomputed hash, without
// requiring a *value.String to already exist. It is used exclusively by
// the intern set to check whether a byte sequence is already interned
// before allocating a new String object.
func (t *Table) FindString(chars string, hash uint32) *value.String {
	if len(t.entries) == 0 {
		return nil
	}
	idx := hash % uint32(len(t.entries))
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if !e.tombstone {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) % uint32(len(t.entries))
	}
}

// findEntry returns the entry key should occupy: either the entry
// already holding key, the first tombstone seen along the probe
// sequence, or the first truly empty slot.
func (t *Table) findEntry(key *value.String) *entry {
	idx := key.Hash % uint32(len(t.entries))
	var tombstone *entry
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if !e.tombstone {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		idx = (idx + 1) % uint32(len(t.entries))
	}
}

func (t *Table) grow() {
	newCap := minCapacity
	if cur := len(t.entries); cur >= minCapacity {
		newCap = cur * 2
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for _, e := range old {
		if e.key == nil {
			continue
		}
		dst := t.findEntry(e.key)
		dst.key = e.key
		dst.val = e.val
		t.count++
	}
}

// Len returns the number of live (non-tombstone) keys. It is O(capacity)
// and intended for tests and debugging, not hot paths.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.key != nil {
			n++
		}
	}
	return n
}
