// Package chart computes candlestick draw geometry. Everything here is a
// pure function over a candle and a target pixel rectangle; no state, no
// side effects. The chart widget calls Shape once per visible candle and
// Domain once per series to scale its Y axis.
package chart

import "trading-console/internal/model"

// Fixed draw colors.
const (
	BullishColor = "#10b981" // green
	BearishColor = "#ef4444" // red
	WickColor    = "#6b7280" // gray
)

const (
	bodyWidthFraction = 0.6
	minBodyHeight     = 1.0
	domainPadFraction = 0.05
)

// Rect is a target drawing rectangle in pixel space. Y grows downward.
type Rect struct {
	X, Y, Width, Height float64
}

// CandleShape holds the computed wick line and body rectangle for one
// candle, ready for a renderer to draw.
type CandleShape struct {
	WickX      float64 // wick vertical line, horizontally centered
	WickTop    float64
	WickBottom float64
	WickColor  string

	Body      Rect
	BodyColor string
}

// Shape maps a candle's OHLC values into r. The candle's own [low, high]
// range spans the full rect height, inverted so high maps to the top.
// The body covers 60% of the rect width, centered, and its height is
// clamped to a 1px minimum so doji candles stay visible.
func Shape(c model.Candle, r Rect) CandleShape {
	bodyColor := BearishColor
	if c.Bullish() {
		bodyColor = BullishColor
	}

	centerX := r.X + r.Width/2
	bodyWidth := r.Width * bodyWidthFraction
	bodyX := r.X + (r.Width-bodyWidth)/2

	// Linear scale from price space onto [Y, Y+Height]. A zero price
	// range collapses everything onto the top edge; the body minimum
	// keeps it drawable.
	scale := 0.0
	if priceRange := c.High - c.Low; priceRange > 0 {
		scale = r.Height / priceRange
	}

	openY := r.Y + (c.High-c.Open)*scale
	closeY := r.Y + (c.High-c.Close)*scale

	bodyTop := openY
	if closeY < bodyTop {
		bodyTop = closeY
	}
	bodyHeight := openY - closeY
	if bodyHeight < 0 {
		bodyHeight = -bodyHeight
	}
	if bodyHeight < minBodyHeight {
		bodyHeight = minBodyHeight
	}

	return CandleShape{
		WickX:      centerX,
		WickTop:    r.Y,
		WickBottom: r.Y + r.Height,
		WickColor:  WickColor,
		Body: Rect{
			X:      bodyX,
			Y:      bodyTop,
			Width:  bodyWidth,
			Height: bodyHeight,
		},
		BodyColor: bodyColor,
	}
}

// Domain computes the padded Y-axis value range for a candle series:
// [min low, max high] widened by 5% of the range on each side, with the
// lower bound floor-clamped at zero. An empty series yields [0, 100].
func Domain(candles []model.Candle) (min, max float64) {
	if len(candles) == 0 {
		return 0, 100
	}

	min, max = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < min {
			min = c.Low
		}
		if c.High > max {
			max = c.High
		}
	}

	pad := (max - min) * domainPadFraction
	min -= pad
	max += pad
	if min < 0 {
		min = 0
	}
	return min, max
}
