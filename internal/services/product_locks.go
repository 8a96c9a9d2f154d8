package services

import (
	"sort"
	"sync"
)

// ProductLocker serializes read-modify-write sequences on stock balances.
// Concurrent sale/stock-in workflows touching the same product take the same
// per-product mutex, so their balance checks and updates never interleave.
// The store-level guarded UPDATE remains as a backstop.
type ProductLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewProductLocker creates a new ProductLocker. One instance must be shared
// by every service that mutates stock balances.
func NewProductLocker() *ProductLocker {
	return &ProductLocker{locks: make(map[int64]*sync.Mutex)}
}

func (l *ProductLocker) mutexFor(productID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	return m
}

// Lock acquires the mutexes for the given products and returns a function
// releasing them. Products are deduplicated and acquired in ascending ID
// order so two workflows over overlapping product sets cannot deadlock.
func (l *ProductLocker) Lock(productIDs ...int64) (unlock func()) {
	seen := make(map[int64]bool, len(productIDs))
	ordered := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	acquired := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		m := l.mutexFor(id)
		m.Lock()
		acquired = append(acquired, m)
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
