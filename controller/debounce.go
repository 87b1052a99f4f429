package controller

import "github.com/Alia5/matrixkb/scancode"

// debouncer gates raw matrix levels into confirmed transitions.
// Owned exclusively by the scan tick.
type debouncer struct {
	threshold uint8
	candidate [scancode.Slots / 8]uint8 // direction being debounced, 1 = down
	reported  [scancode.Slots / 8]uint8 // last direction pushed, 1 = down
	steady    [scancode.Slots]uint8
}

func bit(set *[scancode.Slots / 8]uint8, c scancode.ScanCode) bool {
	return set[c>>3]&(1<<(c&7)) != 0
}

func setBit(set *[scancode.Slots / 8]uint8, c scancode.ScanCode, on bool) {
	if on {
		set[c>>3] |= 1 << (c & 7)
	} else {
		set[c>>3] &^= 1 << (c & 7)
	}
}

// sample feeds one raw level for c and returns a confirmed event when the
// candidate has held for more than threshold consecutive scans.
func (d *debouncer) sample(c scancode.ScanCode, pressed bool) (scancode.Event, bool) {
	down := bit(&d.candidate, c)
	switch {
	case pressed != down:
		setBit(&d.candidate, c, pressed)
		if pressed == bit(&d.reported, c) {
			// bounced back to the reported level before confirmation
			d.steady[c] = 0
		} else {
			d.steady[c] = 1
		}
	case d.steady[c] > 0 && d.steady[c] <= d.threshold:
		d.steady[c]++
	}

	if d.steady[c] <= d.threshold {
		return scancode.Event{}, false
	}
	d.steady[c] = 0
	ev := scancode.Event{Code: c, Dir: scancode.Up}
	if bit(&d.candidate, c) {
		ev.Dir = scancode.Down
	}
	setBit(&d.reported, c, ev.Dir == scancode.Down)
	return ev, true
}

func (d *debouncer) reset() {
	d.candidate = [scancode.Slots / 8]uint8{}
	d.reported = [scancode.Slots / 8]uint8{}
	d.steady = [scancode.Slots]uint8{}
}
