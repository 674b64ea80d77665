// cmd/console — market-data console.
//
// Connects to the feed WebSocket, routes price ticks and candles into the
// in-memory session stores, fans updates out to the optional Redis mirror,
// and periodically renders the price ticker. Configuration is environment
// driven; see config.Config for the variables and defaults.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"trading-console/config"
	"trading-console/internal/bus"
	"trading-console/internal/chart"
	"trading-console/internal/controls"
	"trading-console/internal/feed"
	"trading-console/internal/metrics"
	"trading-console/internal/model"
	"trading-console/internal/render"
	"trading-console/internal/store"
	redisstore "trading-console/internal/store/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[console] starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[console] config: %v", err)
	}
	log.Printf("[console] feed=%s symbols=%v", cfg.FeedURL, cfg.Symbols)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetSymbols(cfg.Symbols)
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Session stores ----
	prices := store.NewPriceStore()
	candles := store.NewCandleStore()

	// ---- Fan-out bus fed by store subscriptions ----
	// Store notifications run on the ingestion goroutine, so the handoff
	// to downstream consumers is a non-blocking channel send.
	eventCh := make(chan model.Event, 5000)
	fanout := bus.New(5000)
	fanout.OnDrop = func(subscriberIdx int) {
		prom.FanoutDropsTotal.WithLabelValues(strconv.Itoa(subscriberIdx)).Inc()
	}

	prices.Subscribe(func(symbol string, price float64) {
		select {
		case eventCh <- model.Event{Kind: model.KindPrice, Symbol: symbol, Price: price}:
		default:
		}
	})
	candles.Subscribe(func(symbol string, c model.Candle) {
		select {
		case eventCh <- model.Event{Kind: model.KindCandle, Symbol: symbol, Candle: c}:
		default:
		}
	})

	// ---- Redis session mirror (optional) ----
	if cfg.RedisAddr != "" {
		mirror, err := redisstore.New(redisstore.MirrorConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Printf("[console] WARNING: redis init failed: %v (continuing without mirror)", err)
		} else {
			health.SetRedisEnabled(true)
			mirror.OnWrite = prom.MirrorWrites.Inc
			mirror.OnError = prom.MirrorErrors.Inc
			go mirror.Run(ctx, fanout.Subscribe())
			health.StartLivenessChecker(ctx, mirror.Client(), 10*time.Second)
			defer mirror.Close()
			log.Println("[console] redis session mirror ready")
		}
	}

	go fanout.Run(ctx, eventCh)

	// ---- Channel saturation reporting ----
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for i, s := range fanout.ChannelStats() {
					if s.Cap > 0 {
						pct := float64(s.Len) / float64(s.Cap) * 100
						prom.ChannelSaturationPct.WithLabelValues("fanout_" + strconv.Itoa(i)).Set(pct)
					}
				}
				pct := float64(len(eventCh)) / float64(cap(eventCh)) * 100
				prom.ChannelSaturationPct.WithLabelValues("events").Set(pct)
			}
		}
	}()

	// ---- Trading controls (parameter surface only) ----
	panel := controls.NewPanel()
	for _, sym := range cfg.Symbols {
		panel.SetSymbolTrading(sym, false)
	}
	log.Printf("[console] controls ready: philosophy=%s exchange=%s trading=%v",
		panel.Philosophy(), panel.Exchange(), panel.TradingOn())

	// ---- Feed client ----
	client, err := feed.New(feed.Config{
		URL:                  cfg.FeedURL,
		Symbols:              cfg.Symbols,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectDelay:    cfg.MaxReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	}, prices, candles)
	if err != nil {
		log.Fatalf("[console] feed client init: %v", err)
	}

	client.OnFrame = func() {
		prom.FramesTotal.Inc()
		health.SetLastFrameTime(time.Now())
	}
	client.OnRouted = func(kind model.Kind) {
		switch kind {
		case model.KindPrice:
			prom.PriceTicksTotal.Inc()
		case model.KindCandle:
			prom.CandlesTotal.Inc()
		}
	}
	client.OnParseError = prom.ParseErrors.Inc
	client.OnUnknown = prom.UnknownMsgs.Inc
	client.OnInvalidCandle = prom.InvalidCandles.Inc
	client.OnReconnect = prom.Reconnects.Inc
	client.OnSubscribeSent = prom.SubscribesSent.Inc
	client.OnStateChange = func(s feed.State) {
		prom.ConnState.Set(float64(s))
		health.SetFeedConnected(s == feed.StateConnected)
	}

	clientDone := make(chan error, 1)
	go func() { clientDone <- client.Start(ctx) }()

	// ---- Price ticker + chart summary renderer ----
	ticker := render.NewTicker(prices, cfg.Symbols)
	chartArea := chart.Rect{Width: 800, Height: 300}
	go func() {
		tick := time.NewTicker(cfg.TickerInterval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				for _, line := range ticker.Lines() {
					log.Printf("[ticker] %s", line)
				}
				for _, sym := range cfg.Symbols {
					if n := candles.Len(sym); n > 0 {
						frame := render.BuildChartFrame(sym, candles.Read(sym), chartArea)
						log.Printf("[chart] %s: %d candles, domain [%.2f, %.2f]",
							sym, frame.CandleSeen, frame.DomainMin, frame.DomainMax)
					}
				}
			}
		}
	}()

	// ---- Wait for shutdown ----
	select {
	case sig := <-sigCh:
		log.Printf("[console] received %v, shutting down...", sig)
	case err := <-clientDone:
		if err != nil {
			log.Printf("[console] feed client stopped: %v", err)
		}
	}

	client.Close()
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	metricsSrv.Stop(shCtx)

	log.Println("[console] shutdown complete")
}
