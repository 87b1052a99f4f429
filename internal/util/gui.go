// Package util holds platform glue for launching matrixkb outside a shell.
package util

import (
	"fmt"
	"io"
	"os"
	"time"
)

// WaitIfRunFromGUI keeps a double-clicked console open until a key is
// pressed so a startup error stays readable.
func WaitIfRunFromGUI() {
	if !IsRunFromGUI() {
		return
	}
	waitForKey(os.Stdin, os.Stdout)
}

func waitForKey(in io.Reader, out io.Writer) {
	_, _ = fmt.Fprintln(out, "Press any key to exit...")
	b := make([]byte, 1)
	_, _ = in.Read(b)
}

// HideConsoleIfRunFromGUI hides the console shortly after a successful
// start when the process was double-clicked.
func HideConsoleIfRunFromGUI() {
	if !IsRunFromGUI() {
		return
	}
	go func() {
		time.Sleep(250 * time.Millisecond)
		HideConsoleWindow()
	}()
}
