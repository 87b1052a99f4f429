//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoServiceManager = errors.New("service installation is only supported on linux (systemd)")

func (i *Install) Run(*slog.Logger) error { return errNoServiceManager }

func (u *Uninstall) Run(*slog.Logger) error { return errNoServiceManager }
