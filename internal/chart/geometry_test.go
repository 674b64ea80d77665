package chart

import (
	"math"
	"testing"

	"trading-console/internal/model"
)

func candle(open, high, low, close_ float64) model.Candle {
	return model.Candle{Symbol: "ETH-USD", Open: open, High: high, Low: low, Close: close_}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestShape_BodyColor(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 200}

	bull := Shape(candle(100, 110, 90, 105), r)
	if bull.BodyColor != BullishColor {
		t.Errorf("bullish color: got %q, want %q", bull.BodyColor, BullishColor)
	}

	bear := Shape(candle(105, 110, 90, 100), r)
	if bear.BodyColor != BearishColor {
		t.Errorf("bearish color: got %q, want %q", bear.BodyColor, BearishColor)
	}

	if bull.BodyColor == bear.BodyColor {
		t.Error("bullish and bearish candles must differ in color")
	}

	// close == open counts as bullish
	flat := Shape(candle(100, 110, 90, 100), r)
	if flat.BodyColor != BullishColor {
		t.Errorf("doji color: got %q, want %q", flat.BodyColor, BullishColor)
	}
}

func TestShape_BodyExtentAndWick(t *testing.T) {
	r := Rect{X: 40, Y: 10, Width: 10, Height: 200}
	s := Shape(candle(100, 110, 90, 105), r)

	if !almostEqual(s.Body.Width, 6) {
		t.Errorf("body width: got %v, want 6 (60%% of 10)", s.Body.Width)
	}
	if !almostEqual(s.Body.X, 42) {
		t.Errorf("body x: got %v, want 42 (centered)", s.Body.X)
	}
	if !almostEqual(s.WickX, 45) {
		t.Errorf("wick x: got %v, want 45 (rect center)", s.WickX)
	}
	if !almostEqual(s.WickTop, 10) || !almostEqual(s.WickBottom, 210) {
		t.Errorf("wick extent: got [%v,%v], want [10,210]", s.WickTop, s.WickBottom)
	}
	if s.WickColor != WickColor {
		t.Errorf("wick color: got %q, want %q", s.WickColor, WickColor)
	}
}

func TestShape_VerticalMappingInverted(t *testing.T) {
	// range 90..110 over a 200px rect: 10px per unit.
	r := Rect{X: 0, Y: 0, Width: 10, Height: 200}
	s := Shape(candle(100, 110, 90, 105), r)

	// close=105 maps 5 units below high → y=50; open=100 → y=100.
	if !almostEqual(s.Body.Y, 50) {
		t.Errorf("body top: got %v, want 50 (close edge)", s.Body.Y)
	}
	if !almostEqual(s.Body.Height, 50) {
		t.Errorf("body height: got %v, want 50", s.Body.Height)
	}
}

func TestShape_MinimumBodyHeight(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 200}
	s := Shape(candle(100, 110, 90, 100), r)
	if s.Body.Height != 1 {
		t.Errorf("doji body height: got %v, want 1", s.Body.Height)
	}
}

func TestShape_ZeroPriceRange(t *testing.T) {
	// high == low must not divide by zero; all edges collapse to the top
	// and the minimum body height applies.
	r := Rect{X: 0, Y: 20, Width: 10, Height: 200}
	s := Shape(candle(100, 100, 100, 100), r)
	if !almostEqual(s.Body.Y, 20) {
		t.Errorf("degenerate body top: got %v, want 20", s.Body.Y)
	}
	if s.Body.Height != 1 {
		t.Errorf("degenerate body height: got %v, want 1", s.Body.Height)
	}
}

func TestDomain_PaddedRange(t *testing.T) {
	series := []model.Candle{
		candle(12, 20, 10, 15),
		candle(15, 22, 12, 18),
		candle(14, 18, 8, 12),
	}

	min, max := Domain(series)
	if !almostEqual(min, 7.3) {
		t.Errorf("domain min: got %v, want 7.3", min)
	}
	if !almostEqual(max, 22.7) {
		t.Errorf("domain max: got %v, want 22.7", max)
	}
}

func TestDomain_FloorClampedAtZero(t *testing.T) {
	series := []model.Candle{candle(0.2, 10, 0.1, 5)}
	min, _ := Domain(series)
	if min < 0 {
		t.Errorf("domain min below zero: %v", min)
	}
}

func TestDomain_EmptySeriesDefault(t *testing.T) {
	min, max := Domain(nil)
	if min != 0 || max != 100 {
		t.Errorf("empty domain: got [%v,%v], want [0,100]", min, max)
	}
}
