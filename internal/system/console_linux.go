//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// Prefer /dev/tty (active VT), fall back to /dev/tty0.
var consolePaths = []string{"/dev/tty", "/dev/tty0"}

// EnterGraphicsMode switches the active console to graphics mode and hides
// the cursor so the preview display is not overdrawn by the text console.
func EnterGraphicsMode(l logger) error {
	err := setConsoleMode(kdGraphics)
	logResult(l, err, "KD_GRAPHICS set", "KD_GRAPHICS failed")
	cursorErr := writeConsole("\x1b[?25l")
	logResult(l, cursorErr, "cursor hidden", "hide cursor failed")
	return err
}

// LeaveGraphicsMode restores the text console and its cursor.
func LeaveGraphicsMode(l logger) error {
	cursorErr := writeConsole("\x1b[?25h")
	logResult(l, cursorErr, "cursor shown", "show cursor failed")
	err := setConsoleMode(kdText)
	logResult(l, err, "KD_TEXT set", "KD_TEXT failed")
	return err
}

func setConsoleMode(mode int) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeConsole(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write console: %w", lastErr)
}
