package controller

import "github.com/Alia5/matrixkb/scancode"

// capsLatch turns momentary caps-lock presses into a toggled state.
type capsLatch struct {
	code scancode.ScanCode
	on   bool
}

// handle consumes a caps-lock event. It returns the synthetic byte to send
// and whether one should be sent at all; the new logical state is in l.on.
func (l *capsLatch) handle(e scancode.Event) (byte, bool) {
	if e.Dir == scancode.Up {
		return 0, false
	}
	l.on = !l.on
	out := scancode.Event{Code: l.code, Dir: scancode.Down}
	if !l.on {
		out.Dir = scancode.Up
	}
	return out.Byte(), true
}
