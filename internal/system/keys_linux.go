//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const evKey = 0x01

// WatchKeys reads Linux evdev devices under /dev/input/event* and calls the
// handler bound to a key code on every key press. Handlers run on the
// reader goroutine of the device that saw the press.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchKeys(ctx context.Context, l logger, handlers map[uint16]func()) {
	if len(handlers) == 0 {
		return
	}
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found")
		}
		return
	}
	for _, path := range paths {
		go watchDevice(ctx, path, handlers)
	}
}

func watchDevice(ctx context.Context, path string, handlers map[uint16]func()) {
	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() { _ = f.Close() }()

	buf := make([]byte, eventSize*64)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		revents := pollFds[0].Revents
		if revents&unix.POLLIN == 0 {
			if deviceGone(revents) {
				return
			}
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			typ, code, value := parseInputEvent(buf[off:off+eventSize], tvSize)
			if typ != evKey || value != 1 {
				continue
			}
			if handler := handlers[code]; handler != nil {
				handler()
			}
		}
	}
}

// deviceGone reports whether poll flagged the device as unplugged or broken.
func deviceGone(revents int16) bool {
	return revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0
}

// parseInputEvent splits one input_event record; type and code follow the
// timeval header.
func parseInputEvent(rec []byte, tvSize int) (typ, code uint16, value int32) {
	typ = binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
	code = binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
	value = int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
	return typ, code, value
}
