//go:build windows

package util

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleProcessList = kernel32.NewProc("GetConsoleProcessList")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procShowWindow            = user32.NewProc("ShowWindow")
)

// A console created for a double-clicked binary is attached to that process
// alone. Launched from a shell, the shell shares it.
var ownsConsole = sync.OnceValue(func() bool {
	var pids [2]uint32
	n, _, _ := procGetConsoleProcessList.Call(uintptr(unsafe.Pointer(&pids[0])), uintptr(len(pids)))
	return n == 1
})

// IsRunFromGUI reports whether matrixkb got a console of its own, which
// happens when it is started from Explorer rather than a terminal.
func IsRunFromGUI() bool { return ownsConsole() }

// HideConsoleWindow hides the console matrixkb owns. Output keeps flowing to
// the log file when one is configured.
func HideConsoleWindow() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return
	}
	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
}
