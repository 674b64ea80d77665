// Package render holds the console's rendering consumers: the price
// ticker and the chart frame builder. Consumers read store snapshots on
// their own schedule and never block the ingestion path.
package render

import (
	"fmt"
	"math"
	"strconv"

	"trading-console/internal/chart"
	"trading-console/internal/model"
	"trading-console/internal/store"
)

// FormatPrice renders a price for the ticker: two decimals under 100
// absolute, a rounded integer above.
func FormatPrice(v float64) string {
	if math.Abs(v) < 100 {
		return fmt.Sprintf("$%.2f", v)
	}
	return "$" + strconv.FormatInt(int64(math.Round(v)), 10)
}

// Ticker is the price-display consumer. It reads the price store as a
// snapshot; a zero (never seen) price renders as "$0.00".
type Ticker struct {
	prices  *store.PriceStore
	symbols []string
}

// NewTicker creates a ticker over the given symbols.
func NewTicker(prices *store.PriceStore, symbols []string) *Ticker {
	return &Ticker{prices: prices, symbols: symbols}
}

// Lines returns one formatted line per symbol, in configuration order.
func (t *Ticker) Lines() []string {
	lines := make([]string, len(t.symbols))
	for i, sym := range t.symbols {
		lines[i] = fmt.Sprintf("%-10s %s", sym, FormatPrice(t.prices.Read(sym)))
	}
	return lines
}

// ChartFrame is the complete draw data for one symbol's candlestick
// chart: the padded Y-axis domain plus one shape per candle.
type ChartFrame struct {
	Symbol     string
	DomainMin  float64
	DomainMax  float64
	Shapes     []chart.CandleShape
	CandleSeen int
}

// BuildChartFrame lays the series out across area, one equal-width slot
// per candle in arrival order, and computes the per-candle geometry.
func BuildChartFrame(symbol string, candles []model.Candle, area chart.Rect) ChartFrame {
	domainMin, domainMax := chart.Domain(candles)

	shapes := make([]chart.CandleShape, len(candles))
	if n := len(candles); n > 0 {
		slot := area.Width / float64(n)
		for i, c := range candles {
			r := chart.Rect{
				X:      area.X + float64(i)*slot,
				Y:      area.Y,
				Width:  slot,
				Height: area.Height,
			}
			shapes[i] = chart.Shape(c, r)
		}
	}

	return ChartFrame{
		Symbol:     symbol,
		DomainMin:  domainMin,
		DomainMax:  domainMax,
		Shapes:     shapes,
		CandleSeen: len(candles),
	}
}
