//go:build !windows

package util

// IsRunFromGUI reports whether the process was started by double-clicking
// it. Only Windows has such a launch path.
func IsRunFromGUI() bool { return false }

func HideConsoleWindow() {}
