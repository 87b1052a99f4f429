// Package command decodes the one-byte host to device control protocol.
//
// Wire layout:
//
//	bits 7-6: type (00 regular, 01 typematic delay, 10 typematic rate, 11 reserved)
//	bits 5-0: value (opcode for regular commands, 4-tick units otherwise)
//
// The protocol is fire-and-forget; the device never answers.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("invalid command")

// Type selects how Value is interpreted.
type Type uint8

const (
	TypeRegular  Type = 0b00
	TypeDelay    Type = 0b01
	TypeRate     Type = 0b10
	TypeReserved Type = 0b11
)

// Opcode enumerates regular commands.
type Opcode uint8

const (
	RedOff Opcode = iota
	RedOn
	GreenOff
	GreenOn
	BlueOff
	BlueOn
	Init
)

const (
	typeShift = 6
	valueMask = 0x3F

	// MaxValue is the largest value a command byte can carry.
	MaxValue = valueMask
	// TickScale converts a delay/rate value into loop ticks.
	TickScale = 4
)

var opcodeNames = map[Opcode]string{
	RedOff:   "RED_LED_OFF",
	RedOn:    "RED_LED_ON",
	GreenOff: "GREEN_LED_OFF",
	GreenOn:  "GREEN_LED_ON",
	BlueOff:  "BLUE_LED_OFF",
	BlueOn:   "BLUE_LED_ON",
	Init:     "INIT",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("OPCODE(%d)", uint8(o))
}

// Known reports whether o is a defined regular opcode.
func (o Opcode) Known() bool {
	_, ok := opcodeNames[o]
	return ok
}

func (t Type) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDelay:
		return "delay"
	case TypeRate:
		return "rate"
	default:
		return "reserved"
	}
}

// Command is a decoded command byte.
type Command struct {
	Type  Type
	Value uint8
}

// Decode splits a command byte. Every byte decodes; callers ignore what they
// do not understand.
func Decode(b byte) Command {
	return Command{Type: Type(b >> typeShift), Value: b & valueMask}
}

// Byte packs the command back into its wire byte. Values above MaxValue are
// truncated to 6 bits.
func (c Command) Byte() byte {
	return byte(c.Type&0b11)<<typeShift | c.Value&valueMask
}

// Opcode returns the regular opcode; only meaningful when Type is TypeRegular.
func (c Command) Opcode() Opcode { return Opcode(c.Value) }

// Ticks returns the delay/rate value scaled to loop ticks.
func (c Command) Ticks() uint16 { return uint16(c.Value) * TickScale }

func (c Command) String() string {
	switch c.Type {
	case TypeRegular:
		return c.Opcode().String()
	case TypeDelay, TypeRate:
		return fmt.Sprintf("%s=%d", c.Type, c.Ticks())
	default:
		return fmt.Sprintf("reserved(0x%02x)", c.Value)
	}
}

func Regular(op Opcode) Command { return Command{Type: TypeRegular, Value: uint8(op) & valueMask} }
func Delay(v uint8) Command     { return Command{Type: TypeDelay, Value: v & valueMask} }
func Rate(v uint8) Command      { return Command{Type: TypeRate, Value: v & valueMask} }

// ValueForTicks returns the command value closest to ticks without
// exceeding MaxValue.
func ValueForTicks(ticks uint16) uint8 {
	v := (ticks + TickScale/2) / TickScale
	if v > MaxValue {
		v = MaxValue
	}
	return uint8(v)
}

// Parse reads a command written the way String prints it ("INIT",
// "delay=20", case-insensitive, '-' for '_'), or a raw byte such as "0x45".
// Delay and rate are given in ticks and rounded with ValueForTicks.
func Parse(s string) (Command, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 0, 8); err == nil {
		return Decode(byte(n)), nil
	}
	if k, v, ok := strings.Cut(s, "="); ok {
		ticks, err := strconv.ParseUint(strings.TrimSpace(v), 10, 16)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "delay":
			return Delay(ValueForTicks(uint16(ticks))), nil
		case "rate":
			return Rate(ValueForTicks(uint16(ticks))), nil
		}
		return Command{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	name := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for op, n := range opcodeNames {
		if n == name {
			return Regular(op), nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrSyntax, s)
}
