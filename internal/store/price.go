// Package store provides the per-symbol session state containers: the
// latest-price map and the append-only candle series. Both are written by
// exactly one writer (the feed client) and read by any number of
// consumers. Change notification is a plain subscriber-callback registry;
// with a single writer, each subscriber observes notifications in
// mutation order.
package store

import "sync"

// PriceSubscriber is invoked after every price mutation.
type PriceSubscriber func(symbol string, price float64)

// PriceStore holds the latest observed price per symbol.
// Last write wins — no timestamp ordering check is applied.
type PriceStore struct {
	mu     sync.RWMutex
	prices map[string]float64
	subs   []PriceSubscriber
}

// NewPriceStore creates an empty price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{prices: make(map[string]float64)}
}

// SetPrice replaces the stored price for symbol unconditionally and then
// notifies all subscribers. The mutation is visible before any subscriber
// runs.
func (s *PriceStore) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	s.prices[symbol] = price
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(symbol, price)
	}
}

// Read returns the latest price for symbol, or 0 if the symbol has never
// been seen. Non-blocking.
func (s *PriceStore) Read(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices[symbol]
}

// Snapshot returns a copy of the full symbol→price map.
func (s *PriceStore) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.prices))
	for k, v := range s.prices {
		cp[k] = v
	}
	return cp
}

// Subscribe registers fn for change notification. Subscribers live for the
// store's lifetime; there is no unsubscribe.
func (s *PriceStore) Subscribe(fn PriceSubscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
