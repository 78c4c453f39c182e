package memstore

import (
	"cmp"
	"slices"
	"strconv"
	"sync"
)

// Table is an in-memory collection of records guarded by a RWMutex. Records
// are cloned on the way in and on the way out so that callers never share
// memory with the table.
type Table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	keyOf func(T) string
	clone func(T) T
	seq   int
}

func NewTable[T any](keyOf func(T) string, clone func(T) T, seed ...T) *Table[T] {
	t := &Table[T]{
		rows:  make(map[string]T, len(seed)),
		keyOf: keyOf,
		clone: clone,
	}

	for _, r := range seed {
		t.rows[keyOf(r)] = clone(r)
	}

	t.seq = len(t.rows)

	return t
}

func (t *Table[T]) Get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.rows[key]
	if !ok {
		var zero T
		return zero, false
	}

	return t.clone(r), true
}

// All returns a copy of every record, ordered by key
func (t *Table[T]) All() []T {
	return t.Filter(func(T) bool { return true })
}

// Filter returns a copy of every record that matches the predicate, ordered
// by key.
func (t *Table[T]) Filter(predicate func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.rows))
	for k, r := range t.rows {
		if predicate(r) {
			keys = append(keys, k)
		}
	}

	slices.SortFunc(keys, CompareKeys)

	result := make([]T, 0, len(keys))
	for _, k := range keys {
		result = append(result, t.clone(t.rows[k]))
	}

	return result
}

// Update applies fn to the stored record under the write lock. The boolean
// result is false, and nothing is changed, when the key does not exist.
func (t *Table[T]) Update(key string, fn func(*T)) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[key]
	if !ok {
		var zero T
		return zero, false
	}

	r = t.clone(r)
	fn(&r)
	t.rows[key] = r

	return t.clone(r), true
}

// Insert builds a new record from the next value of the table's sequence and
// stores it. The sequence starts at the number of seeded records and is never
// reused, so keys derived from it do not collide.
func (t *Table[T]) Insert(build func(seq int) T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	r := t.clone(build(t.seq))

	key := t.keyOf(r)
	if _, exists := t.rows[key]; exists {
		var zero T
		return zero, false
	}

	t.rows[key] = r

	return t.clone(r), true
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.rows)
}

// CompareKeys orders numeric keys by value and everything else lexically
func CompareKeys(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)

	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}

	return cmp.Compare(a, b)
}
