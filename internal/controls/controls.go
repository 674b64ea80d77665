// Package controls holds the user-facing trading parameters: philosophy
// selection, exchange preference, the global start/stop switch with its
// daily loss threshold gate, and per-symbol toggles. The parameters are
// plumbing for a future execution layer; no trading decision logic lives
// here.
package controls

import (
	"errors"
	"math"
	"sync"
)

// Philosophy selects the placeholder strategy family.
type Philosophy string

const (
	PhilosophyTrend     Philosophy = "trend"
	PhilosophyMean      Philosophy = "mean"
	PhilosophyArbitrage Philosophy = "arbitrage"
	PhilosophyMomentum  Philosophy = "momentum"
)

// Exchange selects the preferred venue.
type Exchange string

const (
	ExchangeCoinbase Exchange = "coinbase"
	ExchangeUniswap  Exchange = "uniswap"
)

// ErrThresholdMet is returned when starting is blocked by the daily
// loss threshold.
var ErrThresholdMet = errors.New("daily P/L threshold met, trading start blocked")

// Panel is the mutable control state behind the console's toggles and
// sliders. Safe for concurrent use.
type Panel struct {
	mu             sync.RWMutex
	philosophy     Philosophy
	exchange       Exchange
	tradingOn      bool
	maxDailyAbsPnL float64
	currentPnL     float64
	symbolOn       map[string]bool
}

// NewPanel returns a panel with the console defaults: trend philosophy,
// Coinbase, trading off, $50 daily threshold.
func NewPanel() *Panel {
	return &Panel{
		philosophy:     PhilosophyTrend,
		exchange:       ExchangeCoinbase,
		maxDailyAbsPnL: 50,
		symbolOn:       make(map[string]bool),
	}
}

func (p *Panel) Philosophy() Philosophy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.philosophy
}

func (p *Panel) SetPhilosophy(v Philosophy) {
	p.mu.Lock()
	p.philosophy = v
	p.mu.Unlock()
}

func (p *Panel) Exchange() Exchange {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exchange
}

func (p *Panel) SetExchange(v Exchange) {
	p.mu.Lock()
	p.exchange = v
	p.mu.Unlock()
}

// ThresholdMet reports whether |current P/L| has reached the configured
// daily limit. A zero limit disables the gate.
func (p *Panel) ThresholdMet() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.thresholdMetLocked()
}

func (p *Panel) thresholdMetLocked() bool {
	return p.maxDailyAbsPnL > 0 && math.Abs(p.currentPnL) >= p.maxDailyAbsPnL
}

// StartTrading turns the global switch on. Blocked with ErrThresholdMet
// while the daily loss threshold is met.
func (p *Panel) StartTrading() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.thresholdMetLocked() {
		return ErrThresholdMet
	}
	p.tradingOn = true
	return nil
}

// StopTrading turns the global switch off. Always allowed.
func (p *Panel) StopTrading() {
	p.mu.Lock()
	p.tradingOn = false
	p.mu.Unlock()
}

func (p *Panel) TradingOn() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tradingOn
}

// SetMaxDailyAbsPnL updates the threshold slider value.
func (p *Panel) SetMaxDailyAbsPnL(v float64) {
	p.mu.Lock()
	p.maxDailyAbsPnL = v
	p.mu.Unlock()
}

// SetCurrentPnL records the running daily P/L (fed by an external
// service; the console only gates on it).
func (p *Panel) SetCurrentPnL(v float64) {
	p.mu.Lock()
	p.currentPnL = v
	p.mu.Unlock()
}

// SetSymbolTrading toggles one symbol's per-token switch.
func (p *Panel) SetSymbolTrading(symbol string, on bool) {
	p.mu.Lock()
	p.symbolOn[symbol] = on
	p.mu.Unlock()
}

// SymbolTrading reports a symbol's toggle; unknown symbols are off.
func (p *Panel) SymbolTrading(symbol string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.symbolOn[symbol]
}
