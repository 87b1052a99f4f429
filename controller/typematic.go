package controller

import "github.com/Alia5/matrixkb/scancode"

// TypematicConfig holds auto-repeat timing in loop ticks.
type TypematicConfig struct {
	DelayTicks uint16 `json:"delayTicks"`
	RateTicks  uint16 `json:"rateTicks"`
}

// typematic re-emits the last forwarded key while it is held.
// Owned by the consumer loop.
type typematic struct {
	cfg       TypematicConfig
	last      byte
	countdown uint16
}

// observe arms or cancels repeat for a forwarded event. excluded marks keys
// that never repeat (meta row, caps-lock).
func (t *typematic) observe(e scancode.Event, excluded bool) {
	if e.Dir == scancode.Down && !excluded {
		t.countdown = t.cfg.DelayTicks
		t.last = e.Byte()
		return
	}
	t.countdown = 0
}

// tick advances one loop tick and returns the byte to re-send, if due.
func (t *typematic) tick() (byte, bool) {
	if t.countdown == 0 {
		return 0, false
	}
	t.countdown--
	if t.countdown > 0 {
		return 0, false
	}
	t.countdown = t.cfg.RateTicks
	return t.last, true
}

func (t *typematic) reset(cfg TypematicConfig) {
	t.cfg = cfg
	t.last = 0
	t.countdown = 0
}
