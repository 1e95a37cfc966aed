//go:build !linux

package system

import (
	"context"
	"errors"
)

var errNoConsole = errors.New("console modes are only supported on linux")

func EnterGraphicsMode(l logger) error {
	logResult(l, errNoConsole, "", "KD_GRAPHICS failed")
	return errNoConsole
}

func LeaveGraphicsMode(l logger) error { return errNoConsole }

func WatchKeys(ctx context.Context, l logger, handlers map[uint16]func()) {
	if l != nil {
		l.Infof("input", "key bindings are only supported on linux")
	}
}
