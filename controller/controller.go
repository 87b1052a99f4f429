// Package controller implements the keyboard firmware core: matrix scanning
// with debounce, the event queue between the scan tick and the consumer loop,
// typematic repeat, the caps-lock latch and the host command interpreter.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/matrixkb/command"
	"github.com/Alia5/matrixkb/scancode"
)

// Indicator identifies one of the keyboard's LEDs.
type Indicator uint8

const (
	IndicatorRed Indicator = iota
	IndicatorGreen
	IndicatorBlue
	IndicatorCapsLock
)

// AllIndicators lists every LED in declaration order.
var AllIndicators = [...]Indicator{IndicatorRed, IndicatorGreen, IndicatorBlue, IndicatorCapsLock}

func (i Indicator) String() string {
	switch i {
	case IndicatorRed:
		return "red"
	case IndicatorGreen:
		return "green"
	case IndicatorBlue:
		return "blue"
	case IndicatorCapsLock:
		return "capslock"
	default:
		return "unknown"
	}
}

// Matrix is the electrical key matrix. Select drives one row/bank strobe;
// Read samples a column of the selected strobe, true meaning pressed.
type Matrix interface {
	Select(row, bank uint8)
	Read(column uint8) bool
}

// Link is the serial connection to the host.
type Link interface {
	SendByte(b byte) error
	ByteAvailable() bool
	ReceiveByte() (byte, error)
}

// Indicators drives the LED outputs.
type Indicators interface {
	SetIndicator(which Indicator, on bool)
}

// Status is a point-in-time view of the controller state.
type Status struct {
	Typematic TypematicConfig `json:"typematic"`
	CapsLock  bool            `json:"capsLock"`
	Queued    int             `json:"queued"`
	QueueSize int             `json:"queueSize"`
}

// Controller ties the scan tick and the consumer loop together.
//
// Scan must run on one goroutine and Step on another (or the same); Run
// drives both. Scan-owned state is guarded by tickMu so that INIT, which is
// processed by the consumer, can reset it without racing the producer.
type Controller struct {
	cfg    Config
	matrix Matrix
	link   Link
	leds   Indicators
	logger *slog.Logger

	tickMu sync.Mutex
	deb    debouncer
	codes  []scancode.ScanCode

	queue *Queue
	rep   typematic
	caps  capsLatch

	statusMu sync.RWMutex
	status   Status
}

// New validates cfg and returns a controller in its power-on state with
// every indicator off.
func New(cfg Config, m Matrix, l Link, ind Indicators, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil || l == nil || ind == nil {
		return nil, fmt.Errorf("%w: a matrix, a link and indicators are required", ErrConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	q, err := NewQueue(cfg.QueueSize)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:    cfg,
		matrix: m,
		link:   l,
		leds:   ind,
		logger: logger,
		deb:    debouncer{threshold: cfg.SteadyThreshold},
		codes:  scancode.All(),
		queue:  q,
		caps:   capsLatch{code: cfg.CapsLock},
	}
	c.reset()
	return c, nil
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// Scan performs one full pass over the matrix and queues confirmed
// transitions in scan order.
func (c *Controller) Scan() {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	row, bank := uint8(0xFF), uint8(0xFF)
	for _, code := range c.codes {
		if code.Row() != row || code.Bank() != bank {
			row, bank = code.Row(), code.Bank()
			c.matrix.Select(row, bank)
		}
		if ev, ok := c.deb.sample(code, c.matrix.Read(code.Column())); ok {
			c.queue.Push(ev)
		}
	}
}

// Step runs one consumer loop iteration: a typematic tick, at most one
// queued event and at most one inbound command byte.
func (c *Controller) Step() {
	if b, ok := c.rep.tick(); ok {
		c.send(b)
	}
	if ev, ok := c.queue.Pop(); ok {
		c.forward(ev)
	}
	if c.link.ByteAvailable() {
		b, err := c.link.ReceiveByte()
		if err != nil {
			c.logger.Warn("link receive failed", "error", err)
			return
		}
		c.apply(command.Decode(b))
	}
}

func (c *Controller) forward(ev scancode.Event) {
	if ev.Code == c.caps.code {
		if b, ok := c.caps.handle(ev); ok {
			c.send(b)
			c.leds.SetIndicator(IndicatorCapsLock, c.caps.on)
			c.publish()
		}
	} else {
		c.send(ev.Byte())
	}
	c.rep.observe(ev, ev.Code.IsMeta() || ev.Code == c.caps.code)
}

func (c *Controller) send(b byte) {
	if err := c.link.SendByte(b); err != nil {
		c.logger.Warn("link send failed", "byte", b, "error", err)
	}
}

func (c *Controller) apply(cmd command.Command) {
	c.logger.Debug("host command", "command", cmd)
	switch cmd.Type {
	case command.TypeRegular:
		switch op := cmd.Opcode(); op {
		case command.RedOff, command.RedOn:
			c.leds.SetIndicator(IndicatorRed, op == command.RedOn)
		case command.GreenOff, command.GreenOn:
			c.leds.SetIndicator(IndicatorGreen, op == command.GreenOn)
		case command.BlueOff, command.BlueOn:
			c.leds.SetIndicator(IndicatorBlue, op == command.BlueOn)
		case command.Init:
			c.reset()
		default:
			c.logger.Debug("ignoring unknown opcode", "opcode", op)
		}
	case command.TypeDelay:
		c.rep.cfg.DelayTicks = cmd.Ticks()
		c.publish()
	case command.TypeRate:
		c.rep.cfg.RateTicks = cmd.Ticks()
		c.publish()
	default:
		c.logger.Debug("ignoring reserved command", "command", cmd)
	}
}

// reset returns every piece of state to its power-on value.
func (c *Controller) reset() {
	c.tickMu.Lock()
	c.deb.reset()
	c.queue.Reset()
	c.tickMu.Unlock()

	c.rep.reset(c.cfg.typematicDefaults())
	c.caps.on = false
	for _, ind := range AllIndicators {
		c.leds.SetIndicator(ind, false)
	}
	c.publish()
}

func (c *Controller) publish() {
	c.statusMu.Lock()
	c.status = Status{Typematic: c.rep.cfg, CapsLock: c.caps.on, QueueSize: c.queue.Cap()}
	c.statusMu.Unlock()
}

// Status returns a snapshot safe to call from any goroutine.
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	s := c.status
	c.statusMu.RUnlock()
	s.Queued = c.queue.Len()
	return s
}

// Run drives Scan and Step from their own tickers until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("controller running",
		"scanInterval", c.cfg.ScanInterval,
		"loopInterval", c.cfg.LoopInterval,
		"capsLock", c.cfg.CapsLock,
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return every(gctx, c.cfg.ScanInterval, c.Scan) })
	g.Go(func() error { return every(gctx, c.cfg.LoopInterval, c.Step) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func every(ctx context.Context, d time.Duration, fn func()) error {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn()
		}
	}
}
