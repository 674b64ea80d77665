package store

import (
	"sync"

	"trading-console/internal/model"
)

// CandleSubscriber is invoked after every candle append.
type CandleSubscriber func(symbol string, c model.Candle)

// CandleStore holds the append-only candle series per symbol, in arrival
// order. Series are never truncated, reordered, or mutated in place once
// appended; repeated period-start buckets produce separate entries.
type CandleStore struct {
	mu      sync.RWMutex
	candles map[string][]model.Candle
	subs    []CandleSubscriber
}

// NewCandleStore creates an empty candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{candles: make(map[string][]model.Candle)}
}

// Append adds c to the symbol's series, creating the series on first use,
// and then notifies all subscribers. SequenceIndex is stamped with the
// candle's arrival-order position.
func (s *CandleStore) Append(symbol string, c model.Candle) {
	s.mu.Lock()
	c.SequenceIndex = len(s.candles[symbol])
	s.candles[symbol] = append(s.candles[symbol], c)
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(symbol, c)
	}
}

// Read returns a snapshot copy of the symbol's series, empty if the symbol
// has never been seen. The copy never changes under the caller.
func (s *CandleStore) Read(symbol string) []model.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.candles[symbol]
	cp := make([]model.Candle, len(series))
	copy(cp, series)
	return cp
}

// Len returns the current series length for symbol without copying.
func (s *CandleStore) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles[symbol])
}

// Symbols returns the symbols that have at least one candle.
func (s *CandleStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.candles))
	for sym := range s.candles {
		out = append(out, sym)
	}
	return out
}

// Subscribe registers fn for change notification. Subscribers live for the
// store's lifetime; there is no unsubscribe.
func (s *CandleStore) Subscribe(fn CandleSubscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
