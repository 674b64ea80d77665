package controls

import (
	"errors"
	"testing"
)

func TestPanel_Defaults(t *testing.T) {
	p := NewPanel()
	if p.Philosophy() != PhilosophyTrend {
		t.Errorf("default philosophy: got %q", p.Philosophy())
	}
	if p.Exchange() != ExchangeCoinbase {
		t.Errorf("default exchange: got %q", p.Exchange())
	}
	if p.TradingOn() {
		t.Error("trading should default to off")
	}
}

func TestPanel_ThresholdGatesStart(t *testing.T) {
	p := NewPanel()
	p.SetMaxDailyAbsPnL(50)

	p.SetCurrentPnL(-50)
	if err := p.StartTrading(); !errors.Is(err, ErrThresholdMet) {
		t.Errorf("start at threshold: got %v, want ErrThresholdMet", err)
	}
	if p.TradingOn() {
		t.Error("trading turned on despite blocked start")
	}

	p.SetCurrentPnL(-49.99)
	if err := p.StartTrading(); err != nil {
		t.Errorf("start below threshold: got %v", err)
	}
	if !p.TradingOn() {
		t.Error("trading should be on after successful start")
	}

	// Stop is always allowed, even past the threshold.
	p.SetCurrentPnL(-100)
	p.StopTrading()
	if p.TradingOn() {
		t.Error("trading should be off after stop")
	}
}

func TestPanel_ZeroThresholdDisablesGate(t *testing.T) {
	p := NewPanel()
	p.SetMaxDailyAbsPnL(0)
	p.SetCurrentPnL(-1000)
	if err := p.StartTrading(); err != nil {
		t.Errorf("zero threshold must not gate start: got %v", err)
	}
}

func TestPanel_SymbolToggles(t *testing.T) {
	p := NewPanel()
	if p.SymbolTrading("ETH-USD") {
		t.Error("unknown symbol should be off")
	}
	p.SetSymbolTrading("ETH-USD", true)
	if !p.SymbolTrading("ETH-USD") {
		t.Error("toggle did not stick")
	}
	p.SetSymbolTrading("ETH-USD", false)
	if p.SymbolTrading("ETH-USD") {
		t.Error("toggle off did not stick")
	}
}
