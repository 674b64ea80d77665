package render

import (
	"strings"
	"testing"
	"time"

	"trading-console/internal/chart"
	"trading-console/internal/model"
	"trading-console/internal/store"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2345.12, "$2345"},
		{99.994, "$99.99"},
		{18.22, "$18.22"},
		{0, "$0.00"},
		{100, "$100"},
		{62300.44, "$62300"},
	}
	for _, tc := range cases {
		if got := FormatPrice(tc.in); got != tc.want {
			t.Errorf("FormatPrice(%v): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTicker_Lines(t *testing.T) {
	prices := store.NewPriceStore()
	prices.SetPrice("ETH-USD", 2345.12)

	ticker := NewTicker(prices, []string{"ETH-USD", "BTC-USD"})
	lines := ticker.Lines()

	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "ETH-USD") || !strings.Contains(lines[0], "$2345") {
		t.Errorf("ETH line: got %q", lines[0])
	}
	// Never-seen symbol renders the zero price, not an error.
	if !strings.Contains(lines[1], "$0.00") {
		t.Errorf("BTC line: got %q, want a $0.00 placeholder", lines[1])
	}
}

func TestBuildChartFrame_SlotLayout(t *testing.T) {
	candles := []model.Candle{
		{Symbol: "ETH-USD", PeriodStart: time.Unix(1000, 0), Open: 12, High: 20, Low: 10, Close: 15},
		{Symbol: "ETH-USD", PeriodStart: time.Unix(1060, 0), Open: 15, High: 22, Low: 12, Close: 18},
		{Symbol: "ETH-USD", PeriodStart: time.Unix(1120, 0), Open: 14, High: 18, Low: 8, Close: 12},
	}
	area := chart.Rect{X: 0, Y: 0, Width: 300, Height: 200}

	frame := BuildChartFrame("ETH-USD", candles, area)

	if frame.DomainMin != 7.3 || frame.DomainMax != 22.7 {
		t.Errorf("domain: got [%v,%v], want [7.3,22.7]", frame.DomainMin, frame.DomainMax)
	}
	if len(frame.Shapes) != 3 {
		t.Fatalf("shapes: got %d, want 3", len(frame.Shapes))
	}

	// 3 candles over 300px → 100px slots, wicks centered at 50/150/250.
	wantWickX := []float64{50, 150, 250}
	for i, s := range frame.Shapes {
		if s.WickX != wantWickX[i] {
			t.Errorf("shape %d wick x: got %v, want %v", i, s.WickX, wantWickX[i])
		}
		if s.Body.Width != 60 {
			t.Errorf("shape %d body width: got %v, want 60", i, s.Body.Width)
		}
	}
}

func TestBuildChartFrame_EmptySeries(t *testing.T) {
	frame := BuildChartFrame("ETH-USD", nil, chart.Rect{Width: 300, Height: 200})
	if frame.DomainMin != 0 || frame.DomainMax != 100 {
		t.Errorf("empty domain: got [%v,%v], want [0,100]", frame.DomainMin, frame.DomainMax)
	}
	if len(frame.Shapes) != 0 {
		t.Errorf("empty frame has %d shapes", len(frame.Shapes))
	}
}
