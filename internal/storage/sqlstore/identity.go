package sqlstore

import "hr_reviews/internal/adapters/observability"

// identityMap holds the one in-memory object per primary key.
// Entries leave only through evict or clear.
type identityMap[T any] struct {
	table   string
	entries map[int64]*T
}

func newIdentityMap[T any](table string) *identityMap[T] {
	return &identityMap[T]{table: table, entries: make(map[int64]*T)}
}

func (m *identityMap[T]) get(id int64) (*T, bool) {
	v, ok := m.entries[id]
	return v, ok
}

func (m *identityMap[T]) put(id int64, v *T) {
	m.entries[id] = v
	observability.ObserveIdentityMap(m.table, len(m.entries))
}

func (m *identityMap[T]) evict(id int64) bool {
	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	observability.ObserveIdentityMap(m.table, len(m.entries))
	return true
}

func (m *identityMap[T]) clear() {
	m.entries = make(map[int64]*T)
	observability.ObserveIdentityMap(m.table, 0)
}

func (m *identityMap[T]) len() int { return len(m.entries) }
