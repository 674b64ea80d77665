package model

// Event is one store update, fanned out to downstream consumers (the
// Redis session mirror, renderers). Kind is KindPrice or KindCandle;
// the matching field carries the payload.
type Event struct {
	Kind   Kind
	Symbol string
	Price  float64
	Candle Candle
}
