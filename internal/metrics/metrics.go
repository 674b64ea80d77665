package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the market-data console.
type Metrics struct {
	FramesTotal     prometheus.Counter
	PriceTicksTotal prometheus.Counter
	CandlesTotal    prometheus.Counter
	UnknownMsgs     prometheus.Counter
	ParseErrors     prometheus.Counter
	InvalidCandles  prometheus.Counter

	Reconnects     prometheus.Counter
	SubscribesSent prometheus.Counter
	ConnState      prometheus.Gauge

	// Fan-out backpressure
	FanoutDropsTotal     *prometheus.CounterVec // labels: subscriber
	ChannelSaturationPct *prometheus.GaugeVec   // labels: channel_name

	// Redis session mirror
	MirrorWrites prometheus.Counter
	MirrorErrors prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_frames_total",
			Help: "Total inbound frames read from the feed WebSocket",
		}),
		PriceTicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_price_ticks_total",
			Help: "Total price tick frames routed to the price store",
		}),
		CandlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_candles_total",
			Help: "Total candle frames routed to the candle store",
		}),
		UnknownMsgs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_unknown_messages_total",
			Help: "Frames matching neither the price nor the candle shape",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_parse_errors_total",
			Help: "Frames dropped because they were not valid JSON",
		}),
		InvalidCandles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_invalid_candles_total",
			Help: "Candles violating the OHLC ordering invariant (accepted, logged)",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_feed_reconnects_total",
			Help: "Total feed reconnection attempts",
		}),
		SubscribesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_subscribes_sent_total",
			Help: "Outbound subscribe frames sent to the feed",
		}),
		ConnState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_feed_conn_state",
			Help: "Feed client state (0=disconnected 1=connecting 2=connected 3=reconnecting 4=closed)",
		}),
		FanoutDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_fanout_drops_total",
			Help: "Events dropped by the fan-out bus per subscriber",
		}, []string{"subscriber"}),
		ChannelSaturationPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "console_channel_saturation_pct",
			Help: "Channel fill percentage (len/cap * 100)",
		}, []string{"channel_name"}),
		MirrorWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_redis_mirror_writes_total",
			Help: "Store updates mirrored to the Redis session cache",
		}),
		MirrorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_redis_mirror_errors_total",
			Help: "Redis session mirror write failures",
		}),
	}

	prometheus.MustRegister(
		m.FramesTotal,
		m.PriceTicksTotal,
		m.CandlesTotal,
		m.UnknownMsgs,
		m.ParseErrors,
		m.InvalidCandles,
		m.Reconnects,
		m.SubscribesSent,
		m.ConnState,
		m.FanoutDropsTotal,
		m.ChannelSaturationPct,
		m.MirrorWrites,
		m.MirrorErrors,
	)

	return m
}

// HealthStatus represents the console's health as served by /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	FeedConnected  bool      `json:"feed_connected"`
	LastFrameTime  time.Time `json:"last_frame_time"`
	RedisEnabled   bool      `json:"redis_enabled"`
	RedisConnected bool      `json:"redis_connected"`
	Symbols        []string  `json:"symbols"`

	RedisLatencyMs float64   `json:"redis_latency_ms"`
	LastCheckAt    time.Time `json:"last_check_at"`
	StartedAt      time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetFeedConnected(v bool) {
	h.mu.Lock()
	h.FeedConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastFrameTime(t time.Time) {
	h.mu.Lock()
	h.LastFrameTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisEnabled(v bool) {
	h.mu.Lock()
	h.RedisEnabled = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSymbols(symbols []string) {
	h.mu.Lock()
	h.Symbols = symbols
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rdb == nil {
					continue
				}
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				h.CheckRedis(probeCtx, rdb)
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.FeedConnected {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	frameAge := ""
	if !h.LastFrameTime.IsZero() {
		frameAge = time.Since(h.LastFrameTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status         string   `json:"status"`
		Uptime         string   `json:"uptime"`
		FeedConnected  bool     `json:"feed_connected"`
		LastFrameTime  string   `json:"last_frame_time"`
		FrameAge       string   `json:"frame_age"`
		RedisEnabled   bool     `json:"redis_enabled"`
		RedisConnected bool     `json:"redis_connected"`
		RedisLatencyMs float64  `json:"redis_latency_ms"`
		Symbols        []string `json:"symbols"`
		LastCheckAt    string   `json:"last_check_at"`
	}{
		Status:         overallStatus,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		FeedConnected:  h.FeedConnected,
		LastFrameTime:  h.LastFrameTime.Format(time.RFC3339),
		FrameAge:       frameAge,
		RedisEnabled:   h.RedisEnabled,
		RedisConnected: h.RedisConnected,
		RedisLatencyMs: h.RedisLatencyMs,
		Symbols:        h.Symbols,
		LastCheckAt:    h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
