//go:build !linux

package link

import (
	"errors"
	"os"
)

func OpenTTY(path string, baud int) (*os.File, error) {
	return nil, errors.New("serial devices are only supported on linux")
}
