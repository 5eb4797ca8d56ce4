// Package lookup freezes a trained Isomorphism->Abstraction table into a
// minimal perfect hash for O(1) exact-match queries at inference time.
//
// During training, a Builder accumulates (observation, abstraction) pairs in
// an ordinary map — insertion order doesn't matter and entries may be
// overwritten as clustering refines a street's buckets. Once training for a
// street completes, Freeze hands the accumulated keys to go-chd's CHD
// builder, which computes a perfect hash over exactly that key set; the
// resulting Table stores one (key, value) pair per slot, indexed by the
// hash. A perfect hash maps any input somewhere, so Get re-checks the
// stored key before trusting the slot.
package lookup

import (
	"fmt"

	chd "github.com/opencoff/go-chd"
)

// Builder accumulates iso(observation)->abstraction entries during a single
// street's clustering pass.
type Builder struct {
	entries map[int64]int16
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[int64]int16)}
}

// Set records (or overwrites) the abstraction bucket for a packed
// observation key.
func (b *Builder) Set(obs int64, bucket int16) {
	b.entries[obs] = bucket
}

// Get reads back an accumulated entry; used while a street's clustering is
// still in flight, before Freeze.
func (b *Builder) Get(obs int64) (int16, bool) {
	v, ok := b.entries[obs]
	return v, ok
}

// Len reports the number of distinct keys accumulated so far.
func (b *Builder) Len() int { return len(b.entries) }

// Freeze builds the minimal perfect hash over the accumulated keys and
// returns the frozen, read-only Table.
func (b *Builder) Freeze() (*Table, error) {
	n := len(b.entries)
	if n == 0 {
		return nil, fmt.Errorf("lookup: cannot freeze an empty table")
	}

	cb, err := chd.New()
	if err != nil {
		return nil, fmt.Errorf("lookup: create CHD builder: %w", err)
	}
	for obs := range b.entries {
		if err := cb.Add(encodeKey(obs)); err != nil {
			return nil, fmt.Errorf("lookup: add CHD key: %w", err)
		}
	}
	h, err := cb.Freeze(0.9)
	if err != nil {
		return nil, fmt.Errorf("lookup: build CHD index: %w", err)
	}

	keys := make([]int64, n)
	values := make([]int16, n)
	for obs, bucket := range b.entries {
		idx := h.Find(encodeKey(obs))
		if idx >= uint64(n) {
			return nil, fmt.Errorf("lookup: CHD slot %d out of range for %d keys", idx, n)
		}
		keys[idx] = obs
		values[idx] = bucket
	}

	return &Table{hash: h, keys: keys, values: values}, nil
}

// Table is a frozen Isomorphism->Abstraction Lookup: exact-match only, keys
// absent at Freeze time report not-found (those fall back to the domain
// binding's default priors, per §4.9).
type Table struct {
	hash   *chd.Chd
	keys   []int64
	values []int16
}

// Get returns the abstraction bucket for obs and whether it was present at
// Freeze time.
func (t *Table) Get(obs int64) (int16, bool) {
	if t == nil || t.hash == nil {
		return 0, false
	}
	idx := t.hash.Find(encodeKey(obs))
	if idx >= uint64(len(t.values)) || t.keys[idx] != obs {
		return 0, false
	}
	return t.values[idx], true
}

// Len reports the number of entries in the frozen table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

func encodeKey(obs int64) uint64 {
	return uint64(obs)
}
