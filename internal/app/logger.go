package app

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes "RFC3339 [LEVEL] component: message" lines. With
// ErrorsOnly set, Infof is dropped.
type FileLogger struct {
	w          io.Writer
	mu         *sync.Mutex
	ErrorsOnly bool
}

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w, mu: &sync.Mutex{}} }

// NewErrorLogger logs failures only; used for stderr when debug logging is off.
func NewErrorLogger(w io.Writer) FileLogger {
	l := NewFileLogger(w)
	l.ErrorsOnly = true
	return l
}

func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	if l.ErrorsOnly {
		return
	}
	l.write("INFO", component, format, args...)
}

func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.write("ERROR", component, format, args...)
}

func (l FileLogger) write(level, component, format string, args ...interface{}) {
	if l.w == nil {
		return
	}
	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	writeLog(l.w, level, component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}
