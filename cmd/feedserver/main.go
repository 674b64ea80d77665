// cmd/feedserver — demo market-data feed server.
// Broadcasts simulated price ticks and candles for running the console
// without a real exchange connection.
//
// Wire shapes match the console's inbound contract:
//
//	{"kind":"price","symbol":"ETH-USD","time":"2024-01-01T00:00:00Z","price":2345.12}
//	{"kind":"candle","symbol":"ETH-USD","start":1704067200,"open":...,"high":...,"low":...,"close":...,"volume":...}
//
// Clients select symbols with {"action":"subscribe","symbols":[...]};
// repeat subscribes extend the set.
//
// Config (env vars):
//
//	FEED_SERVER_ADDR    — listen address          (default: ":8080")
//	FEED_SYMBOLS        — comma-separated symbols (default: major USD pairs)
//	PRICE_INTERVAL_MS   — tick interval           (default: "500")
//	CANDLE_INTERVAL_MS  — candle bucket width     (default: "5000")
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// priceMsg and candleMsg mirror the console's wire contract.
type priceMsg struct {
	Kind   string    `json:"kind"`
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
}

type candleMsg struct {
	Kind   string  `json:"kind"`
	Symbol string  `json:"symbol"`
	Start  int64   `json:"start"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// subscribeMsg is the inbound subscription request.
type subscribeMsg struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// instrument holds per-symbol simulation state.
type instrument struct {
	Symbol string
	Price  float64

	// forming candle state for the current bucket
	bucketStart int64
	open, high  float64
	low, close_ float64
	volume      float64
	started     bool
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

type client struct {
	ch      chan []byte
	mu      sync.RWMutex
	symbols map[string]bool
}

func (c *client) subscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols[symbol]
}

func (c *client) subscribe(symbols []string) {
	c.mu.Lock()
	for _, s := range symbols {
		c.symbols[s] = true
	}
	c.mu.Unlock()
}

type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *hub) register(conn *websocket.Conn) *client {
	c := &client{
		ch:      make(chan []byte, 256),
		symbols: make(map[string]bool),
	}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	return c
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if c, ok := h.clients[conn]; ok {
		close(c.ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// broadcast delivers msg to every client subscribed to symbol.
func (h *hub) broadcast(symbol string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.subscribed(symbol) {
			continue
		}
		select {
		case c.ch <- msg:
		default: // slow client — drop frame
		}
	}
}

// ─── WebSocket handler ────────────────────────────────────────────────────────

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

func wsHandler(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[feedserver] upgrade error: %v", err)
			return
		}
		log.Printf("[feedserver] client connected: %s", r.RemoteAddr)

		c := h.register(conn)
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Printf("[feedserver] client disconnected: %s", r.RemoteAddr)
		}()

		// Read pump: handles subscribe requests.
		go func() {
			for {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var sub subscribeMsg
				if json.Unmarshal(raw, &sub) != nil || sub.Action != "subscribe" {
					log.Printf("[feedserver] ignoring frame from %s: %s", r.RemoteAddr, raw)
					continue
				}
				c.subscribe(sub.Symbols)
				log.Printf("[feedserver] %s subscribed to %v", r.RemoteAddr, sub.Symbols)
			}
		}()

		// Write pump: sends frames to this client.
		for msg := range c.ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// ─── Frame generator ─────────────────────────────────────────────────────────

// walkPrice applies a tiny random walk (±0.1%) to simulate price movement.
func walkPrice(price float64) float64 {
	pct := (rand.Float64()*0.2 - 0.1) / 100.0
	newPrice := price * (1 + pct)
	if newPrice < 0.0001 {
		newPrice = 0.0001
	}
	return newPrice
}

func runGenerator(h *hub, instruments []*instrument, priceIntervalMs, candleIntervalMs int) {
	ticker := time.NewTicker(time.Duration(priceIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	bucketWidth := int64(candleIntervalMs / 1000)
	if bucketWidth < 1 {
		bucketWidth = 1
	}

	for now := range ticker.C {
		nowSec := now.Unix()
		bucket := nowSec - nowSec%bucketWidth

		for _, inst := range instruments {
			inst.Price = walkPrice(inst.Price)

			// Price frame
			pb, err := json.Marshal(priceMsg{
				Kind:   "price",
				Symbol: inst.Symbol,
				Time:   now.UTC(),
				Price:  inst.Price,
			})
			if err == nil {
				h.broadcast(inst.Symbol, pb)
			}

			// Candle aggregation: emit the forming bucket when a new one
			// begins.
			if inst.started && bucket != inst.bucketStart {
				cb, err := json.Marshal(candleMsg{
					Kind:   "candle",
					Symbol: inst.Symbol,
					Start:  inst.bucketStart,
					Open:   inst.open,
					High:   inst.high,
					Low:    inst.low,
					Close:  inst.close_,
					Volume: inst.volume,
				})
				if err == nil {
					h.broadcast(inst.Symbol, cb)
				}
				inst.started = false
			}

			if !inst.started {
				inst.bucketStart = bucket
				inst.open = inst.Price
				inst.high = inst.Price
				inst.low = inst.Price
				inst.started = true
				inst.volume = 0
			}
			if inst.Price > inst.high {
				inst.high = inst.Price
			}
			if inst.Price < inst.low {
				inst.low = inst.Price
			}
			inst.close_ = inst.Price
			inst.volume += float64(rand.Intn(100)+1) / 10
		}
	}
}

// ─── main ─────────────────────────────────────────────────────────────────────

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[feedserver] starting demo feed server...")

	addr := envOrDefault("FEED_SERVER_ADDR", ":8080")
	symbolsEnv := envOrDefault("FEED_SYMBOLS",
		"ETH-USD,BTC-USD,LINK-USD,UNI-USD,AAVE-USD,DOT-USD,ENA-USD,MNT-USD,OKB-USD,POL-USD")
	priceIntervalMs := envIntOrDefault("PRICE_INTERVAL_MS", 500)
	candleIntervalMs := envIntOrDefault("CANDLE_INTERVAL_MS", 5000)

	instruments := parseInstruments(symbolsEnv)
	if len(instruments) == 0 {
		log.Fatalf("[feedserver] no symbols configured via FEED_SYMBOLS")
	}
	log.Printf("[feedserver] symbols: %d, price interval: %dms, candle interval: %dms",
		len(instruments), priceIntervalMs, candleIntervalMs)

	h := newHub()
	go runGenerator(h, instruments, priceIntervalMs, candleIntervalMs)

	http.HandleFunc("/ws", wsHandler(h))
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"status":"ok","service":"feedserver"}`)
	})

	log.Printf("[feedserver] listening on %s  (WebSocket: ws://localhost%s/ws)", addr, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("[feedserver] server error: %v", err)
	}
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func parseInstruments(s string) []*instrument {
	// Starting prices for the well-known symbols; anything else gets a
	// round default.
	startPrices := map[string]float64{
		"ETH-USD":  2345.12,
		"BTC-USD":  62300.44,
		"LINK-USD": 18.22,
		"UNI-USD":  7.84,
		"AAVE-USD": 96.10,
		"DOT-USD":  6.05,
		"ENA-USD":  0.62,
		"MNT-USD":  0.48,
		"OKB-USD":  42.10,
		"POL-USD":  0.72,
	}

	var result []*instrument
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		price := startPrices[part]
		if price == 0 {
			price = 100
		}
		result = append(result, &instrument{Symbol: part, Price: price})
	}
	return result
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
