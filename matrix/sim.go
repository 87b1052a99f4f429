// Package matrix provides an in-memory key matrix for running the controller
// without hardware.
package matrix

import (
	"fmt"
	"sync"

	"github.com/Alia5/matrixkb/scancode"
)

// Sim is a thread-safe simulated matrix. Keys are pressed and released from
// any goroutine; the scan tick strobes it through Select and Read.
type Sim struct {
	mu      sync.RWMutex
	down    [scancode.Slots]bool
	row     uint8
	bank    uint8
	strobes uint64
}

func New() *Sim {
	return &Sim{}
}

// Press closes the switch at c.
func (s *Sim) Press(c scancode.ScanCode) error {
	return s.set(c, true)
}

// Release opens the switch at c.
func (s *Sim) Release(c scancode.ScanCode) error {
	return s.set(c, false)
}

func (s *Sim) set(c scancode.ScanCode, down bool) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", scancode.ErrInvalid, c)
	}
	s.mu.Lock()
	s.down[c] = down
	s.mu.Unlock()
	return nil
}

// Pressed returns the closed switches in scan order.
func (s *Sim) Pressed() []scancode.ScanCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []scancode.ScanCode{}
	for _, c := range scancode.All() {
		if s.down[c] {
			out = append(out, c)
		}
	}
	return out
}

// Reset opens every switch.
func (s *Sim) Reset() {
	s.mu.Lock()
	s.down = [scancode.Slots]bool{}
	s.mu.Unlock()
}

// Strobes returns how many row/bank selections have been made.
func (s *Sim) Strobes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strobes
}

func (s *Sim) Select(row, bank uint8) {
	s.mu.Lock()
	s.row, s.bank = row, bank
	s.strobes++
	s.mu.Unlock()
}

func (s *Sim) Read(column uint8) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := scancode.New(s.row, s.bank, column)
	if err != nil {
		return false
	}
	return s.down[c]
}
