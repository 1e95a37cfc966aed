package web

import (
	"github.com/rook-computer/sigimage/internal/signature"
	"github.com/rook-computer/sigimage/internal/state"
)

const (
	DefaultMaxBodyBytes    = 4 << 20
	DefaultMaxCanvasPixels = 4096 * 4096
)

// sysLogger matches the component logger used across the service.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopSysLogger struct{}

func (noopSysLogger) Infof(string, string, ...interface{})  {}
func (noopSysLogger) Errorf(string, string, ...interface{}) {}

// APIV1Deps is everything the signature API needs.
type APIV1Deps struct {
	// Generator holds the server-wide render defaults; requests may
	// override them per call.
	Generator *signature.Generator
	Store     *state.Store

	// FontPath is the script font file for name renders. Empty means the
	// font must be installed on the host.
	FontPath string

	MaxBodyBytes    int64
	MaxCanvasPixels int

	Logger sysLogger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Generator == nil {
		out.Generator = signature.NewGenerator()
	}
	if out.Store == nil {
		out.Store = state.NewStore()
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if out.MaxCanvasPixels <= 0 {
		out.MaxCanvasPixels = DefaultMaxCanvasPixels
	}
	if out.Logger == nil {
		out.Logger = noopSysLogger{}
	}
	return out
}
