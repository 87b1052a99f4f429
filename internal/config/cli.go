// Package config declares the kong command line of the matrixkb binary.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/matrixkb/internal/cmd"
	"github.com/Alia5/matrixkb/internal/log"
)

type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (JSON, YAML or TOML by extension)" env:"MATRIXKB_CONFIG" type:"path"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        log.Config       `embed:"" prefix:"log."`

	Run       cmd.Run           `cmd:"" help:"Run the keyboard controller and management API"`
	Monitor   cmd.Monitor       `cmd:"" help:"Attach to the link as the host and print key events"`
	Config    cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Install   cmd.Install       `cmd:"" help:"Install the systemd service (linux)"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the systemd service (linux)"`
}
