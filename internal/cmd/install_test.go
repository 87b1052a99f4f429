package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallUnit(t *testing.T) {
	tests := []struct {
		name     string
		install  Install
		contains []string
		excludes []string
	}{
		{
			name:    "api link",
			install: Install{Baud: 9600},
			contains: []string{
				"ExecStart=\"/opt/matrixkb/matrixkb\" \"run\"\n",
				"WorkingDirectory=/opt/matrixkb\n",
				"After=network.target\n",
				"Restart=on-failure\n",
			},
			excludes: []string{"BindsTo=", "SupplementaryGroups=", "--link.device"},
		},
		{
			name:    "serial device",
			install: Install{Device: "/dev/ttyUSB0", Baud: 115200},
			contains: []string{
				`ExecStart="/opt/matrixkb/matrixkb" "run" "--link.device=/dev/ttyUSB0" "--link.baud=115200"` + "\n",
				"BindsTo=dev-ttyUSB0.device\n",
				"After=dev-ttyUSB0.device network.target\n",
				"SupplementaryGroups=dialout\n",
			},
		},
		{
			name:    "extra run flags",
			install: Install{Device: "/dev/serial/by-id/usb-FTDI-if00", Baud: 9600, Args: []string{"--api.addr=:3242", "--controller.queue-size=32"}},
			contains: []string{
				`"--link.baud=9600" "--api.addr=:3242" "--controller.queue-size=32"` + "\n",
				`BindsTo=dev-serial-by\x2did-usb\x2dFTDI\x2dif00.device` + "\n",
			},
		},
		{
			name:     "percent is not a specifier",
			install:  Install{Baud: 9600, Args: []string{"--log.file=/var/log/100%.log"}},
			contains: []string{`"--log.file=/var/log/100%%.log"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := tt.install.unit("/opt/matrixkb/matrixkb")
			for _, s := range tt.contains {
				assert.Contains(t, unit, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, unit, s)
			}
		})
	}
}

func TestInstallValidate(t *testing.T) {
	assert.NoError(t, (&Install{Baud: 9600}).validate())
	assert.NoError(t, (&Install{Device: "/dev/ttyS0", Baud: 9600}).validate())
	assert.ErrorContains(t, (&Install{Device: "ttyS0", Baud: 9600}).validate(), "absolute path")
	assert.ErrorContains(t, (&Install{Baud: 0}).validate(), "invalid baud rate")
}

func TestSystemdEscapePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/dev/ttyUSB0", "dev-ttyUSB0"},
		{"/dev/ttyS0/", "dev-ttyS0"},
		{"//dev//ttyAMA0", "dev-ttyAMA0"},
		{"/dev/serial/by-id/usb-0403", `dev-serial-by\x2did-usb\x2d0403`},
		{"/dev/.hidden", `dev-.hidden`},
		{"/.tty", `\x2etty`},
		{"/", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, systemdEscapePath(tt.in))
		})
	}
}
