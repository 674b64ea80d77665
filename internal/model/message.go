package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the two wire-level message shapes.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrice
	KindCandle
)

func (k Kind) String() string {
	switch k {
	case KindPrice:
		return "price"
	case KindCandle:
		return "candle"
	default:
		return "unknown"
	}
}

// Message is the tagged union produced by Decode. Exactly one of Price or
// Candle is populated, matching Kind. Untyped payloads never leave this
// package — ingestion routes on Kind only.
type Message struct {
	Kind   Kind
	Price  PriceTick
	Candle Candle
}

// wireFrame covers both inbound shapes. Pointer fields distinguish a
// missing key from a zero value during classification.
type wireFrame struct {
	Kind   string   `json:"kind"`
	Symbol string   `json:"symbol"`
	Time   string   `json:"time"`  // ISO-8601, price frames only
	Start  *int64   `json:"start"` // epoch seconds, candle frames only
	Price  *float64 `json:"price"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  float64  `json:"close"`
	Volume float64  `json:"volume"`
}

// Decode parses one inbound frame and classifies it. A JSON-level failure
// returns an error; a well-formed frame that matches neither shape comes
// back as KindUnknown with a nil error. Epoch-second timestamps are
// converted to time.Time here, at the ingestion boundary.
func Decode(raw []byte) (Message, error) {
	var f wireFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Message{}, fmt.Errorf("decode frame: %w", err)
	}

	switch {
	case f.Kind == "price" && f.Price != nil:
		ts, err := time.Parse(time.RFC3339, f.Time)
		if err != nil {
			// Unparseable observation time is not worth dropping the
			// quote over; fall back to arrival time.
			ts = time.Now().UTC()
		}
		return Message{
			Kind: KindPrice,
			Price: PriceTick{
				Symbol: f.Symbol,
				Time:   ts,
				Price:  *f.Price,
			},
		}, nil

	case f.Kind == "candle" && f.Start != nil:
		return Message{
			Kind: KindCandle,
			Candle: Candle{
				Symbol:      f.Symbol,
				PeriodStart: time.Unix(*f.Start, 0).UTC(),
				Open:        f.Open,
				High:        f.High,
				Low:         f.Low,
				Close:       f.Close,
				Volume:      f.Volume,
			},
		}, nil

	default:
		return Message{Kind: KindUnknown}, nil
	}
}

// SubscribeRequest is the outbound subscription frame sent to the feed.
type SubscribeRequest struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// NewSubscribeRequest builds a subscribe frame for the given symbols.
func NewSubscribeRequest(symbols ...string) SubscribeRequest {
	return SubscribeRequest{Action: "subscribe", Symbols: symbols}
}
