package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alia5/matrixkb/scancode"
)

var (
	ErrQueueSize = errors.New("queue size must be a power of two between 2 and 256")
	ErrConfig    = errors.New("invalid controller config")
)

// Config represents the controller timing and policy configuration.
type Config struct {
	ScanInterval    time.Duration     `help:"Matrix scan tick period" default:"5ms" env:"MATRIXKB_SCAN_INTERVAL"`
	LoopInterval    time.Duration     `help:"Consumer loop tick period; one typematic tick" default:"1ms" env:"MATRIXKB_LOOP_INTERVAL"`
	SteadyThreshold uint8             `help:"Scans a new level must hold beyond before it is reported" default:"3" env:"MATRIXKB_STEADY_THRESHOLD"`
	QueueSize       int               `help:"Event queue slots (power of two)" default:"16" env:"MATRIXKB_QUEUE_SIZE"`
	DefaultDelay    uint16            `help:"Typematic delay in loop ticks restored by INIT" default:"252" env:"MATRIXKB_DEFAULT_DELAY"`
	DefaultRate     uint16            `help:"Typematic rate in loop ticks restored by INIT" default:"100" env:"MATRIXKB_DEFAULT_RATE"`
	CapsLock        scancode.ScanCode `help:"Caps-lock key as row.bank.column" default:"3.0.0" env:"MATRIXKB_CAPS_LOCK"`
}

// DefaultConfig mirrors the kong defaults for callers that do not go through the CLI.
func DefaultConfig() Config {
	return Config{
		ScanInterval:    5 * time.Millisecond,
		LoopInterval:    time.Millisecond,
		SteadyThreshold: 3,
		QueueSize:       16,
		DefaultDelay:    252,
		DefaultRate:     100,
		CapsLock:        scancode.MustNew(3, 0, 0),
	}
}

// Validate checks the configuration for values the controller cannot run with.
func (c Config) Validate() error {
	if c.ScanInterval <= 0 || c.LoopInterval <= 0 {
		return fmt.Errorf("%w: intervals must be > 0", ErrConfig)
	}
	if c.SteadyThreshold == 0xFF {
		return fmt.Errorf("%w: steady threshold must be below 255", ErrConfig)
	}
	if c.QueueSize < 2 || c.QueueSize > 256 || c.QueueSize&(c.QueueSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrQueueSize, c.QueueSize)
	}
	if !c.CapsLock.Valid() {
		return fmt.Errorf("%w: caps-lock %s is not a matrix key", ErrConfig, c.CapsLock)
	}
	if c.CapsLock.IsMeta() {
		return fmt.Errorf("%w: caps-lock %s is in the meta row", ErrConfig, c.CapsLock)
	}
	return nil
}

func (c Config) typematicDefaults() TypematicConfig {
	return TypematicConfig{DelayTicks: c.DefaultDelay, RateTicks: c.DefaultRate}
}
