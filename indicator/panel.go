// Package indicator keeps the keyboard LED state in memory.
package indicator

import (
	"log/slog"
	"sync"

	"github.com/Alia5/matrixkb/controller"
)

// State is a snapshot of every indicator.
type State struct {
	Red      bool `json:"red"`
	Green    bool `json:"green"`
	Blue     bool `json:"blue"`
	CapsLock bool `json:"capsLock"`
}

// Panel implements controller.Indicators.
type Panel struct {
	mu       sync.RWMutex
	on       [len(controller.AllIndicators)]bool
	logger   *slog.Logger
	onChange func(which controller.Indicator, on bool)
}

// NewPanel returns a panel with every indicator off. onChange, if set, is
// called after each state change, outside the panel lock.
func NewPanel(logger *slog.Logger, onChange func(which controller.Indicator, on bool)) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Panel{logger: logger, onChange: onChange}
}

func (p *Panel) SetIndicator(which controller.Indicator, on bool) {
	if int(which) >= len(p.on) {
		p.logger.Warn("unknown indicator", "indicator", uint8(which))
		return
	}
	p.mu.Lock()
	changed := p.on[which] != on
	p.on[which] = on
	p.mu.Unlock()
	if !changed {
		return
	}
	p.logger.Info("indicator", "led", which.String(), "on", on)
	if p.onChange != nil {
		p.onChange(which, on)
	}
}

// Get returns a single indicator.
func (p *Panel) Get(which controller.Indicator) bool {
	if int(which) >= len(p.on) {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.on[which]
}

func (p *Panel) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{
		Red:      p.on[controller.IndicatorRed],
		Green:    p.on[controller.IndicatorGreen],
		Blue:     p.on[controller.IndicatorBlue],
		CapsLock: p.on[controller.IndicatorCapsLock],
	}
}
