package model

import "time"

// PriceTick represents a single instantaneous quote for a symbol.
// Ticks are not retained historically — each new tick for a symbol
// overwrites the prior value in the price store.
type PriceTick struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"` // observation time (UTC)
	Price  float64   `json:"price"`
}
