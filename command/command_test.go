package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/matrixkb/command"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		in       byte
		expected command.Command
		ticks    uint16
		str      string
	}{
		{name: "red off", in: 0x00, expected: command.Regular(command.RedOff), str: "RED_LED_OFF"},
		{name: "blue on", in: 0x05, expected: command.Regular(command.BlueOn), str: "BLUE_LED_ON"},
		{name: "init", in: 0b00_000110, expected: command.Regular(command.Init), str: "INIT"},
		{name: "unknown opcode", in: 0x3F, expected: command.Command{Type: command.TypeRegular, Value: 63}, str: "OPCODE(63)"},
		{name: "delay 20 ticks", in: 0b01_000101, expected: command.Delay(5), ticks: 20, str: "delay=20"},
		{name: "rate 12 ticks", in: 0b10_000011, expected: command.Rate(3), ticks: 12, str: "rate=12"},
		{name: "max delay", in: 0b01_111111, expected: command.Delay(63), ticks: 252, str: "delay=252"},
		{name: "reserved", in: 0b11_000001, expected: command.Command{Type: command.TypeReserved, Value: 1}, str: "reserved(0x01)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := command.Decode(tt.in)
			assert.Equal(t, tt.expected, c)
			assert.Equal(t, tt.in, c.Byte())
			assert.Equal(t, tt.str, c.String())
			if c.Type == command.TypeDelay || c.Type == command.TypeRate {
				assert.Equal(t, tt.ticks, c.Ticks())
			}
		})
	}
}

func TestOpcodeKnown(t *testing.T) {
	for op := command.RedOff; op <= command.Init; op++ {
		assert.True(t, op.Known(), op.String())
	}
	assert.False(t, command.Opcode(7).Known())
}

func TestConstructorsTruncate(t *testing.T) {
	assert.Equal(t, byte(0b01_111111), command.Delay(0xFF).Byte())
	assert.Equal(t, byte(0b10_000000), command.Rate(0x40).Byte())
}

func TestValueForTicks(t *testing.T) {
	assert.Equal(t, uint8(25), command.ValueForTicks(100))
	assert.Equal(t, uint8(63), command.ValueForTicks(252))
	assert.Equal(t, uint8(63), command.ValueForTicks(1000))
	assert.Equal(t, uint8(0), command.ValueForTicks(1))
	assert.Equal(t, uint8(1), command.ValueForTicks(2))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    command.Command
		wantErr bool
	}{
		{in: "INIT", want: command.Regular(command.Init)},
		{in: "red-led-on", want: command.Regular(command.RedOn)},
		{in: " blue_led_off ", want: command.Regular(command.BlueOff)},
		{in: "delay=20", want: command.Delay(5)},
		{in: "RATE = 12", want: command.Rate(3)},
		{in: "rate=1000", want: command.Rate(63)},
		{in: "0x45", want: command.Delay(5)},
		{in: "131", want: command.Rate(3)},
		{in: "0xC1", want: command.Command{Type: command.TypeReserved, Value: 1}},
		{in: "purple_led_on", wantErr: true},
		{in: "delay=x", wantErr: true},
		{in: "speed=4", wantErr: true},
		{in: "0x100", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := command.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, command.ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundTripsString(t *testing.T) {
	for op := command.RedOff; op <= command.Init; op++ {
		c := command.Regular(op)
		got, err := command.Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	for _, c := range []command.Command{command.Delay(63), command.Rate(0), command.Rate(25)} {
		got, err := command.Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
