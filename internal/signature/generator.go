// Package signature turns signature-capture output into images: either the
// pen strokes a user drew, or their typed name set in a script font.
package signature

import (
	"fmt"
	"image"

	"github.com/rook-computer/sigimage/internal/fonts"
	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/strokes"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Generator renders signatures with a shared configuration. Set Config
// before rendering; every call works on a copy taken when it starts.
type Generator struct {
	Config Config
	Fonts  *fonts.Resolver

	// MaxSegments caps stroke payloads. Zero means unlimited.
	MaxSegments int

	Logger Logger
}

func NewGenerator() *Generator {
	return &Generator{Config: DefaultConfig(), Fonts: fonts.NewResolver()}
}

// WithConfig returns a copy of g that renders with cfg.
func (g *Generator) WithConfig(cfg Config) *Generator {
	out := *g
	out.Config = cfg
	return &out
}

// RenderStrokes draws the JSON line-segment payload produced by the capture
// widget. An empty payload yields the background alone.
func (g *Generator) RenderStrokes(payload string) (*image.RGBA, error) {
	return renderStrokes(g.Config, strokes.Decoder{MaxSegments: g.MaxSegments}, payload)
}

// RenderText draws name in the script font. fontPath may be empty, in which
// case the font must be installed on the host.
func (g *Generator) RenderText(name, fontPath string) (*image.RGBA, error) {
	resolver := g.Fonts
	if resolver == nil {
		resolver = fonts.NewResolver()
	}
	return renderText(g.Config, resolver, g.Logger, name, fontPath)
}

// RenderStrokes renders payload with an explicit configuration.
func RenderStrokes(cfg Config, payload string) (*image.RGBA, error) {
	return renderStrokes(cfg, strokes.Decoder{}, payload)
}

// RenderText renders name with an explicit configuration and resolver.
func RenderText(cfg Config, resolver *fonts.Resolver, name, fontPath string) (*image.RGBA, error) {
	return renderText(cfg, resolver, nil, name, fontPath)
}

func renderStrokes(cfg Config, decoder strokes.Decoder, payload string) (*image.RGBA, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Decoding first means a bad payload never allocates a canvas.
	segments, err := decoder.Decode(payload)
	if err != nil {
		return nil, err
	}

	canvas, surface, err := newCanvas(cfg)
	if err != nil {
		return nil, err
	}
	defer surface.Release()
	render.DrawStrokes(surface, segments, cfg.PenColor, cfg.PenWidth)
	return canvas.Image(), nil
}

func renderText(cfg Config, resolver *fonts.Resolver, logger Logger, name, fontPath string) (*image.RGBA, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = fonts.NewResolver()
	}

	canvas, surface, err := newCanvas(cfg)
	if err != nil {
		return nil, err
	}
	defer surface.Release()

	resolved, err := resolver.Resolve(fontPath, cfg.FontSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resolved.Close() }()

	if logger != nil {
		if missing := resolved.MissingRunes(name); len(missing) > 0 {
			logger.Infof("signature", "font %q has no glyphs for %q", resolved.Name, string(missing))
		}
		if w, _ := render.MeasureText(name, resolved.Face()); w > cfg.Width {
			logger.Infof("signature", "name is %dpx wide, clipped to %dpx", w, cfg.Width)
		}
	}
	render.DrawText(surface, name, resolved.Face(), cfg.PenColor)
	return canvas.Image(), nil
}

func newCanvas(cfg Config) (*render.Canvas, *render.Surface, error) {
	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		return nil, nil, fmt.Errorf("signature: %w", err)
	}
	if !cfg.transparent() {
		canvas.Fill(cfg.Background)
	}
	surface, err := canvas.Surface()
	if err != nil {
		return nil, nil, fmt.Errorf("signature: %w", err)
	}
	return canvas, surface, nil
}
