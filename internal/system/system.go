// Package system holds the host plumbing of the service: console mode for
// the preview display, key bindings and network discovery.
package system

// Key codes from linux/input-event-codes.h.
const (
	KeyEsc = 1
	KeyF4  = 62
	KeyF5  = 63
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

func logResult(l logger, err error, ok, failed string) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%s: %v", failed, err)
		return
	}
	l.Infof("tty", "%s", ok)
}
