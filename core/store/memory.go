package store

import (
	"context"
	"sync"

	"github.com/kilianp07/citypredict/core/prediction"
)

// DefaultCapacity bounds each domain's history in the memory store.
const DefaultCapacity = 1000

// MemoryStore keeps the most recent records of each domain in a ring buffer.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	rings    map[prediction.Domain]*ring
}

// NewMemoryStore returns a store keeping up to capacity records per domain.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity, rings: map[prediction.Domain]*ring{}}
}

// Append implements Store. The oldest record of the domain is evicted when
// its ring is full.
func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rings[rec.Module]
	if !ok {
		r = &ring{buf: make([]Record, m.capacity)}
		m.rings[rec.Module] = r
	}
	r.push(rec)
	return nil
}

// Query implements Store. Without a module filter the limit applies to each
// domain first and then to the concatenation in domain order.
func (m *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if q.Module != "" {
		return q.tail(m.collect(q.Module, q)), nil
	}
	var out []Record
	for _, d := range prediction.Domains() {
		out = append(out, q.tail(m.collect(d, q))...)
	}
	return q.tail(out), nil
}

// Counts returns the number of records held per domain.
func (m *MemoryStore) Counts() map[prediction.Domain]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[prediction.Domain]int, len(prediction.Domains()))
	for _, d := range prediction.Domains() {
		if r, ok := m.rings[d]; ok {
			out[d] = r.n
		} else {
			out[d] = 0
		}
	}
	return out
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) collect(d prediction.Domain, q Query) []Record {
	r, ok := m.rings[d]
	if !ok {
		return nil
	}
	out := make([]Record, 0, r.n)
	r.each(func(rec Record) {
		if q.match(rec) {
			out = append(out, rec)
		}
	})
	return out
}

type ring struct {
	buf  []Record
	next int
	n    int
}

func (r *ring) push(rec Record) {
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// each visits the records oldest first.
func (r *ring) each(fn func(Record)) {
	start := (r.next - r.n + len(r.buf)) % len(r.buf)
	for i := 0; i < r.n; i++ {
		fn(r.buf[(start+i)%len(r.buf)])
	}
}
