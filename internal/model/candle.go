package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Candle represents one fixed-width OHLC bucket for a single symbol.
// Prices are float64 to match the wire contract and the chart math.
type Candle struct {
	Symbol      string    `json:"symbol"`
	PeriodStart time.Time `json:"start"` // bucket left edge (UTC)
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`

	// SequenceIndex is the arrival-order position within the symbol's
	// series. Stamped by the candle store on append; not part of the
	// wire contract.
	SequenceIndex int `json:"sequence_index,omitempty"`
}

// Bullish reports whether the candle closed at or above its open.
func (c *Candle) Bullish() bool {
	return c.Close >= c.Open
}

// PeriodStartSeconds returns the bucket start as Unix seconds, the form
// used for chart X-axis values.
func (c *Candle) PeriodStartSeconds() int64 {
	return c.PeriodStart.Unix()
}

// Validate checks the OHLC ordering invariant and the volume sign.
// Callers log violations; ingestion accepts the candle either way.
func (c *Candle) Validate() error {
	lo, hi := c.Open, c.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	if c.Low > lo {
		return fmt.Errorf("candle %s@%d: low %.6f above body low %.6f", c.Symbol, c.PeriodStartSeconds(), c.Low, lo)
	}
	if c.High < hi {
		return fmt.Errorf("candle %s@%d: high %.6f below body high %.6f", c.Symbol, c.PeriodStartSeconds(), c.High, hi)
	}
	if c.Volume < 0 {
		return fmt.Errorf("candle %s@%d: negative volume %.6f", c.Symbol, c.PeriodStartSeconds(), c.Volume)
	}
	return nil
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
