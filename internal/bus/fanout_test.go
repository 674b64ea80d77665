package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"trading-console/internal/model"
)

func TestFanOut_BroadcastsToAll(t *testing.T) {
	fo := New(10)
	out1 := fo.Subscribe()
	out2 := fo.Subscribe()

	input := make(chan model.Event, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go fo.Run(ctx, input)

	input <- model.Event{Kind: model.KindPrice, Symbol: "ETH-USD", Price: 2345.12}

	select {
	case ev := <-out1:
		if ev.Symbol != "ETH-USD" || ev.Price != 2345.12 {
			t.Errorf("out1: got %s/%v, want ETH-USD/2345.12", ev.Symbol, ev.Price)
		}
	case <-time.After(time.Second):
		t.Fatal("out1: timed out waiting for event")
	}

	select {
	case ev := <-out2:
		if ev.Symbol != "ETH-USD" {
			t.Errorf("out2: got symbol %s, want ETH-USD", ev.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("out2: timed out waiting for event")
	}

	cancel()
}

func TestFanOut_SlowConsumerDropsNotBlocks(t *testing.T) {
	fo := New(1) // room for a single event per subscriber
	_ = fo.Subscribe()

	var drops atomic.Int32
	fo.OnDrop = func(int) { drops.Add(1) }

	input := make(chan model.Event, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	for i := 0; i < 5; i++ {
		input <- model.Event{Kind: model.KindPrice, Symbol: "BTC-USD", Price: float64(i)}
	}

	deadline := time.After(time.Second)
	for drops.Load() < 4 {
		select {
		case <-deadline:
			t.Fatalf("expected 4 drops for unread subscriber, got %d", drops.Load())
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestFanOut_ClosesOutputsWhenInputCloses(t *testing.T) {
	fo := New(4)
	out := fo.Subscribe()

	input := make(chan model.Event)
	go fo.Run(context.Background(), input)
	close(input)

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected closed output channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for output close")
	}
}
