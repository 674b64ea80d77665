// Package redis mirrors the in-memory session state into Redis so
// external dashboards can read the current snapshot. The mirror is a
// volatile session cache fed from the fan-out bus; it is never read back
// by the console and losing it loses nothing the stores still hold.
package redis

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"trading-console/internal/model"
)

const (
	// Keep roughly a session's worth of candles per symbol.
	candleListMaxLen = 2000
	latestPriceTTL   = 30 * time.Minute
)

// MirrorConfig configures the Redis session mirror.
type MirrorConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Mirror writes latest prices and recent candles to Redis.
type Mirror struct {
	client *goredis.Client

	// Optional hooks, wired to metrics by the caller.
	OnWrite func()
	OnError func()
}

// Client returns the underlying Redis client for health checks.
func (m *Mirror) Client() *goredis.Client { return m.client }

// New creates a new Mirror and pings the server.
func New(cfg MirrorConfig) (*Mirror, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Mirror{client: client}, nil
}

// Run reads store update events from eventCh and mirrors them to Redis.
// Blocks until ctx is cancelled or eventCh is closed.
func (m *Mirror) Run(ctx context.Context, eventCh <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			m.write(ctx, ev)
		}
	}
}

func (m *Mirror) write(ctx context.Context, ev model.Event) {
	var err error
	switch ev.Kind {
	case model.KindPrice:
		key := "px:latest:" + ev.Symbol
		err = m.client.Set(ctx, key,
			strconv.FormatFloat(ev.Price, 'f', -1, 64), latestPriceTTL).Err()

	case model.KindCandle:
		key := "px:candles:" + ev.Symbol
		pipe := m.client.Pipeline()
		pipe.RPush(ctx, key, ev.Candle.JSON())
		pipe.LTrim(ctx, key, -candleListMaxLen, -1)
		_, err = pipe.Exec(ctx)

	default:
		return
	}

	if err != nil {
		log.Printf("[redis] mirror write failed for %s %s: %v", ev.Kind, ev.Symbol, err)
		if m.OnError != nil {
			m.OnError()
		}
		return
	}
	if m.OnWrite != nil {
		m.OnWrite()
	}
}

// Close releases the Redis connection.
func (m *Mirror) Close() error {
	return m.client.Close()
}
