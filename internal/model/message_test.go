package model

import (
	"testing"
	"time"
)

func TestDecode_PriceFrame(t *testing.T) {
	raw := []byte(`{"kind":"price","symbol":"ETH-USD","time":"2024-01-01T00:00:00Z","price":2345.12}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.Kind != KindPrice {
		t.Fatalf("expected KindPrice, got %v", msg.Kind)
	}
	if msg.Price.Symbol != "ETH-USD" {
		t.Errorf("symbol: got %q, want ETH-USD", msg.Price.Symbol)
	}
	if msg.Price.Price != 2345.12 {
		t.Errorf("price: got %v, want 2345.12", msg.Price.Price)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !msg.Price.Time.Equal(want) {
		t.Errorf("time: got %v, want %v", msg.Price.Time, want)
	}
}

func TestDecode_CandleFrame(t *testing.T) {
	raw := []byte(`{"kind":"candle","symbol":"BTC-USD","start":1700000000,"open":100,"high":110,"low":90,"close":105,"volume":12.5}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.Kind != KindCandle {
		t.Fatalf("expected KindCandle, got %v", msg.Kind)
	}
	c := msg.Candle
	if c.Symbol != "BTC-USD" {
		t.Errorf("symbol: got %q, want BTC-USD", c.Symbol)
	}
	if c.PeriodStartSeconds() != 1700000000 {
		t.Errorf("start: got %d, want 1700000000", c.PeriodStartSeconds())
	}
	if c.Open != 100 || c.High != 110 || c.Low != 90 || c.Close != 105 {
		t.Errorf("ohlc: got %v/%v/%v/%v", c.Open, c.High, c.Low, c.Close)
	}
	if c.Volume != 12.5 {
		t.Errorf("volume: got %v, want 12.5", c.Volume)
	}
}

func TestDecode_Classification(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Kind
		wantErr bool
	}{
		{"price missing price field", `{"kind":"price","symbol":"ETH-USD","time":"2024-01-01T00:00:00Z"}`, KindUnknown, false},
		{"price with string price", `{"kind":"price","symbol":"ETH-USD","price":"2345"}`, KindUnknown, true},
		{"candle missing start", `{"kind":"candle","symbol":"BTC-USD","open":1,"high":2,"low":0.5,"close":1.5}`, KindUnknown, false},
		{"unrecognised kind", `{"kind":"heartbeat","seq":42}`, KindUnknown, false},
		{"no kind at all", `{"hello":"world"}`, KindUnknown, false},
		{"not json", `]]garbage[[`, KindUnknown, true},
		{"json array", `[1,2,3]`, KindUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Decode([]byte(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected decode error, got %v", msg.Kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if msg.Kind != tc.want {
				t.Errorf("kind: got %v, want %v", msg.Kind, tc.want)
			}
		})
	}
}

func TestDecode_PriceZeroIsStillPrice(t *testing.T) {
	// A present-but-zero price must classify as a price frame; only a
	// missing price key makes the frame unknown.
	msg, err := Decode([]byte(`{"kind":"price","symbol":"ENA-USD","time":"2024-01-01T00:00:00Z","price":0}`))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.Kind != KindPrice {
		t.Fatalf("expected KindPrice for zero price, got %v", msg.Kind)
	}
}

func TestCandle_Validate(t *testing.T) {
	good := Candle{Symbol: "ETH-USD", Low: 90, Open: 95, Close: 100, High: 105, Volume: 1}
	if err := good.Validate(); err != nil {
		t.Errorf("valid candle rejected: %v", err)
	}

	badLow := Candle{Symbol: "ETH-USD", Low: 96, Open: 95, Close: 100, High: 105}
	if err := badLow.Validate(); err == nil {
		t.Error("expected error for low above body")
	}

	badHigh := Candle{Symbol: "ETH-USD", Low: 90, Open: 95, Close: 100, High: 99}
	if err := badHigh.Validate(); err == nil {
		t.Error("expected error for high below body")
	}

	badVol := Candle{Symbol: "ETH-USD", Low: 90, Open: 95, Close: 100, High: 105, Volume: -1}
	if err := badVol.Validate(); err == nil {
		t.Error("expected error for negative volume")
	}
}

func TestCandle_Bullish(t *testing.T) {
	bull := Candle{Open: 100, Close: 105}
	if !bull.Bullish() {
		t.Error("close above open should be bullish")
	}
	flat := Candle{Open: 100, Close: 100}
	if !flat.Bullish() {
		t.Error("close equal to open counts as bullish")
	}
	bear := Candle{Open: 105, Close: 100}
	if bear.Bullish() {
		t.Error("close below open should be bearish")
	}
}
