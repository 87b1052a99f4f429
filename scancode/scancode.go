// Package scancode defines the 7-bit matrix key identifier and the one-byte
// key event reported to the host.
package scancode

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Matrix geometry.
const (
	Rows        = 6
	MetaRow     = 5 // single-bank modifier cluster
	Bank0Cols   = 8
	Bank1Cols   = 7
	MetaCols    = 7
	Slots       = 128 // every 7-bit value, valid or not
	rowShift    = 4
	bankShift   = 3
	columnMask  = 0x07
	bankMask    = 0x08
	rowMask     = 0x70
	codeMask    = 0x7F
	directionUp = 0x80
)

var ErrInvalid = errors.New("invalid scancode")

// ScanCode is a key address packed as row(3) | bank(1) | column(3).
type ScanCode uint8

// New builds a ScanCode and validates it against the matrix geometry.
func New(row, bank, column uint8) (ScanCode, error) {
	if row > 7 || bank > 1 || column > 7 {
		return 0, fmt.Errorf("%w: row %d bank %d column %d", ErrInvalid, row, bank, column)
	}
	c := ScanCode(row<<rowShift | bank<<bankShift | column)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: row %d bank %d column %d", ErrInvalid, row, bank, column)
	}
	return c, nil
}

// MustNew is New for compile-time constants; it panics on invalid input.
func MustNew(row, bank, column uint8) ScanCode {
	c, err := New(row, bank, column)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ScanCode) Row() uint8    { return uint8(c&rowMask) >> rowShift }
func (c ScanCode) Bank() uint8   { return uint8(c&bankMask) >> bankShift }
func (c ScanCode) Column() uint8 { return uint8(c & columnMask) }

// IsMeta reports whether the key sits in the modifier row.
func (c ScanCode) IsMeta() bool { return c.Row() == MetaRow }

// Valid reports whether c addresses a physical key.
func (c ScanCode) Valid() bool {
	if c > codeMask {
		return false
	}
	row, bank, col := c.Row(), c.Bank(), c.Column()
	switch {
	case row > MetaRow:
		return false
	case row == MetaRow:
		return bank == 0 && col < MetaCols
	case bank == 1:
		return col < Bank1Cols
	default:
		return col < Bank0Cols
	}
}

func (c ScanCode) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Row(), c.Bank(), c.Column())
}

// Parse accepts "row.bank.column" or a decimal / 0x-prefixed hex code.
func Parse(s string) (ScanCode, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, "."); len(parts) == 3 {
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
			}
			v[i] = uint8(n)
		}
		return New(v[0], v[1], v[2])
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	c := ScanCode(n)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler using the row.bank.column form.
func (c ScanCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; it accepts anything Parse does.
func (c *ScanCode) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// All returns every valid scancode in scan order: row-major, bank-major,
// column-minor.
func All() []ScanCode {
	out := make([]ScanCode, 0, 5*(Bank0Cols+Bank1Cols)+MetaCols)
	for row := uint8(0); row < Rows; row++ {
		for bank := uint8(0); bank < 2; bank++ {
			for col := uint8(0); col < 8; col++ {
				c := ScanCode(row<<rowShift | bank<<bankShift | col)
				if c.Valid() {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// Direction of a confirmed transition.
type Direction uint8

const (
	Down Direction = 0
	Up   Direction = 1
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Event is a confirmed key transition.
// Wire layout (1 byte): D RRR B CCC, D = 0 down, 1 up.
type Event struct {
	Code ScanCode
	Dir  Direction
}

// Byte packs the event into its wire byte.
func (e Event) Byte() byte {
	b := byte(e.Code) & codeMask
	if e.Dir == Up {
		b |= directionUp
	}
	return b
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Code, e.Dir)
}

// DecodeEvent unpacks a wire byte. Bytes addressing no physical key are rejected.
func DecodeEvent(b byte) (Event, error) {
	e := Event{Code: ScanCode(b & codeMask)}
	if b&directionUp != 0 {
		e.Dir = Up
	}
	if !e.Code.Valid() {
		return Event{}, fmt.Errorf("%w: 0x%02x", ErrInvalid, b)
	}
	return e, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e Event) MarshalBinary() ([]byte, error) {
	return []byte{e.Byte()}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Event) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return io.ErrUnexpectedEOF
	}
	ev, err := DecodeEvent(data[0])
	if err != nil {
		return err
	}
	*e = ev
	return nil
}
