// Package feed implements the market-data client. It owns the persistent
// WebSocket connection to the feed server, decodes and classifies every
// inbound frame, and routes it into the price and candle stores. One
// goroutine reads frames; decode, store mutation, and subscriber
// notification for a frame all complete before the next frame is read,
// so per-symbol store order equals wire arrival order.
package feed

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"trading-console/internal/model"
	"trading-console/internal/store"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Config holds configuration for the feed client.
type Config struct {
	// URL of the feed WebSocket server, e.g. "ws://localhost:8080/ws".
	URL string

	// Symbols is the initial subscription set.
	Symbols []string

	// ReconnectDelay is the initial delay before reconnection attempts.
	// Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration

	// MaxReconnectAttempts bounds retries per outage. Zero disables
	// reconnection entirely: the first transport failure closes the
	// client.
	MaxReconnectAttempts int
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Client connects to the feed, classifies inbound frames, and routes them
// to the stores. Create with New, run with Start, stop with Close or by
// cancelling the Start context.
type Client struct {
	cfg     Config
	prices  *store.PriceStore
	candles *store.CandleStore

	state atomic.Int32

	mu         sync.Mutex // guards conn, symbols, subscribed, closed
	conn       *websocket.Conn
	symbols    []string
	subscribed map[string]bool
	closed     bool

	writeMu sync.Mutex // serializes outbound frames

	// Optional hooks, wired to metrics by the caller.
	OnFrame         func()
	OnParseError    func()
	OnUnknown       func()
	OnInvalidCandle func()
	OnRouted        func(kind model.Kind)
	OnReconnect     func()
	OnSubscribeSent func()
	OnStateChange   func(s State)
}

// New creates a feed client writing into the given stores.
// Returns an error if the URL is unparseable.
func New(cfg Config, prices *store.PriceStore, candles *store.CandleStore) (*Client, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("feed: parse url: %w", err)
	}

	subscribed := make(map[string]bool, len(cfg.Symbols))
	symbols := make([]string, 0, len(cfg.Symbols))
	for _, sym := range cfg.Symbols {
		if subscribed[sym] {
			continue
		}
		subscribed[sym] = true
		symbols = append(symbols, sym)
	}

	return &Client{
		cfg:        cfg,
		prices:     prices,
		candles:    candles,
		symbols:    symbols,
		subscribed: subscribed,
	}, nil
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Symbols returns a copy of the current subscription set.
func (c *Client) Symbols() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]string, len(c.symbols))
	copy(cp, c.symbols)
	return cp
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	if c.OnStateChange != nil {
		c.OnStateChange(s)
	}
}

// Start runs the connect/read/reconnect loop. Blocks until ctx is
// cancelled, Close is called, or the reconnect policy is exhausted.
// Every (re)connect re-issues the full subscription set — the server does
// not preserve subscriptions across connections.
func (c *Client) Start(ctx context.Context) error {
	delay := c.cfg.ReconnectDelay
	attempts := 0

	for {
		select {
		case <-ctx.Done():
			c.setState(StateClosed)
			return nil
		default:
		}

		if attempts == 0 {
			c.setState(StateConnecting)
		}

		connected, err := c.runOnce(ctx)
		if err == nil {
			// Clean shutdown via ctx cancel or Close.
			c.setState(StateClosed)
			return nil
		}
		if connected {
			// The outage starts fresh after a working connection.
			delay = c.cfg.ReconnectDelay
			attempts = 0
		}

		if c.cfg.MaxReconnectAttempts <= 0 {
			log.Printf("[feed] disconnected (%v), no reconnect policy, closing", err)
			c.setState(StateClosed)
			return err
		}
		attempts++
		if attempts > c.cfg.MaxReconnectAttempts {
			log.Printf("[feed] reconnect attempts exhausted after %d tries, closing", c.cfg.MaxReconnectAttempts)
			c.setState(StateClosed)
			return fmt.Errorf("feed: reconnect attempts exhausted: %w", err)
		}

		c.setState(StateReconnecting)
		log.Printf("[feed] disconnected (%v), reconnecting in %s (attempt %d/%d)...",
			err, delay, attempts, c.cfg.MaxReconnectAttempts)
		if c.OnReconnect != nil {
			c.OnReconnect()
		}

		select {
		case <-ctx.Done():
			c.setState(StateClosed)
			return nil
		case <-time.After(delay):
		}

		// Exponential backoff
		delay *= 2
		if delay > c.cfg.MaxReconnectDelay {
			delay = c.cfg.MaxReconnectDelay
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect or
// ctx cancel. The returned bool reports whether the dial succeeded.
func (c *Client) runOnce(ctx context.Context) (bool, error) {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return true, nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	log.Printf("[feed] connected to %s", c.cfg.URL)

	if err := c.writeSubscribe(conn, c.Symbols()); err != nil {
		return true, fmt.Errorf("initial subscribe: %w", err)
	}

	// Context watcher — closes the connection when ctx is cancelled so
	// the blocked ReadMessage returns promptly.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || c.State() == StateClosed {
				return true, nil
			}
			return true, err
		}
		c.handleFrame(raw)
	}
}

// handleFrame decodes, classifies, and routes one inbound frame.
// Never panics and never stops the read loop: malformed and unknown
// frames are logged and dropped.
func (c *Client) handleFrame(raw []byte) {
	if c.OnFrame != nil {
		c.OnFrame()
	}

	msg, err := model.Decode(raw)
	if err != nil {
		log.Printf("[feed] parse error: %v (raw: %s)", err, raw)
		if c.OnParseError != nil {
			c.OnParseError()
		}
		return
	}

	switch msg.Kind {
	case model.KindPrice:
		c.prices.SetPrice(msg.Price.Symbol, msg.Price.Price)

	case model.KindCandle:
		if err := msg.Candle.Validate(); err != nil {
			// Known gap: inconsistent candles are accepted as-is.
			log.Printf("[feed] inconsistent candle accepted: %v", err)
			if c.OnInvalidCandle != nil {
				c.OnInvalidCandle()
			}
		}
		c.candles.Append(msg.Candle.Symbol, msg.Candle)

	default:
		log.Printf("[feed] unknown message dropped: %s", raw)
		if c.OnUnknown != nil {
			c.OnUnknown()
		}
		return
	}

	if c.OnRouted != nil {
		c.OnRouted(msg.Kind)
	}
}

// AddSymbol adds one symbol to the subscription set. Idempotent: a symbol
// already subscribed is a no-op. While connected, exactly one incremental
// subscribe frame is sent; otherwise the symbol rides along with the next
// full (re)subscribe.
func (c *Client) AddSymbol(symbol string) error {
	c.mu.Lock()
	if c.subscribed[symbol] {
		c.mu.Unlock()
		return nil
	}
	c.subscribed[symbol] = true
	c.symbols = append(c.symbols, symbol)
	conn := c.conn
	c.mu.Unlock()

	if c.State() != StateConnected || conn == nil {
		return nil
	}
	if err := c.writeSubscribe(conn, []string{symbol}); err != nil {
		return fmt.Errorf("feed: incremental subscribe %s: %w", symbol, err)
	}
	return nil
}

// writeSubscribe sends one subscribe frame for the given symbols.
func (c *Client) writeSubscribe(conn *websocket.Conn, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(model.NewSubscribeRequest(symbols...)); err != nil {
		return err
	}
	log.Printf("[feed] subscribe sent for %d symbol(s): %v", len(symbols), symbols)
	if c.OnSubscribeSent != nil {
		c.OnSubscribeSent()
	}
	return nil
}

// Close terminates the client from any state. Idempotent. No frames are
// routed after Close returns the connection to the transport; an in-flight
// frame finishes its store mutation first (mutations are atomic under the
// store locks).
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.setState(StateClosed)
	if conn != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed"))
		conn.Close()
	}
	log.Println("[feed] closed")
}
