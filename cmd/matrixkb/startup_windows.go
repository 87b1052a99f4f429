//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/Alia5/matrixkb/internal/util"
)

// A double-clicked binary has no arguments; default it to "run".
func init() {
	if !util.IsRunFromGUI() || (len(os.Args) > 1 && os.Args[1] == "run") {
		return
	}
	slog.Info("Detected GUI startup, injecting 'run' argument")
	slog.Warn("Run from a CLI for more options!")
	os.Args = append([]string{os.Args[0], "run"}, os.Args[1:]...)
}
