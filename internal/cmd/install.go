package cmd

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const serviceName = "matrixkb.service"

// Install registers matrixkb as a systemd service running "matrixkb run".
// With a link device the service is bound to that tty and stops when it
// disappears.
type Install struct {
	Device string   `name:"link.device" help:"Serial device the service talks to the host on"`
	Baud   int      `name:"link.baud" help:"Serial baud rate" default:"9600"`
	Args   []string `arg:"" optional:"" help:"Further run flags, after --"`
}

// Uninstall stops and removes the systemd service.
type Uninstall struct{}

func (i *Install) validate() error {
	if i.Device != "" && !filepath.IsAbs(i.Device) {
		return fmt.Errorf("link device %q must be an absolute path", i.Device)
	}
	if i.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", i.Baud)
	}
	return nil
}

func (i *Install) execStart(exePath string) string {
	args := []string{exePath, "run"}
	if i.Device != "" {
		args = append(args, "--link.device="+i.Device, fmt.Sprintf("--link.baud=%d", i.Baud))
	}
	args = append(args, i.Args...)
	for n, a := range args {
		args[n] = systemdQuote(a)
	}
	return strings.Join(args, " ")
}

func (i *Install) unit(exePath string) string {
	var b strings.Builder
	b.WriteString("[Unit]\nDescription=matrixkb keyboard controller\n")
	if i.Device != "" {
		dev := systemdEscapePath(i.Device) + ".device"
		fmt.Fprintf(&b, "BindsTo=%s\nAfter=%s network.target\n", dev, dev)
	} else {
		b.WriteString("After=network.target\n")
	}

	b.WriteString("\n[Service]\nType=simple\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", i.execStart(exePath))
	fmt.Fprintf(&b, "WorkingDirectory=%s\n", filepath.Dir(exePath))
	if i.Device != "" {
		b.WriteString("SupplementaryGroups=dialout\n")
	}
	b.WriteString("Restart=on-failure\nRestartSec=1\n")

	b.WriteString("\n[Install]\nWantedBy=multi-user.target\n")
	return b.String()
}

// systemdQuote double-quotes an ExecStart word and doubles '%' so it is not
// read as a unit specifier.
func systemdQuote(s string) string {
	return strings.ReplaceAll(fmt.Sprintf("%q", s), "%", "%%")
}

// systemdEscapePath mirrors "systemd-escape --path", giving the unit name
// stem systemd uses for a device node.
func systemdEscapePath(p string) string {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" {
		return "-"
	}
	var b strings.Builder
	for n := 0; n < len(p); n++ {
		c := p[n]
		switch {
		case c == '/':
			b.WriteByte('-')
		case c == '.' && n == 0:
			fmt.Fprintf(&b, `\x%02x`, c)
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ':', c == '_', c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}
