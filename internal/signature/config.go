package signature

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/rook-computer/sigimage/internal/render"
)

const (
	// MaxPenWidth bounds the pen so a single segment stays a stroke, not a fill.
	MaxPenWidth = 1024

	// MaxFontSize bounds the point size handed to the font rasterizer.
	MaxFontSize = 1024
)

var ErrInvalidConfig = errors.New("signature: invalid render config")

// Config is the per-call render configuration. It is a plain value: each
// render works on its own copy.
type Config struct {
	PenColor   color.Color
	Background color.Color // alpha 0 leaves the canvas transparent
	Width      int
	Height     int
	PenWidth   float64 // pixels
	FontSize   float64 // points
}

func DefaultConfig() Config {
	return Config{
		PenColor:   render.DefaultPenColor,
		Background: render.DefaultBackground,
		Width:      render.DefaultCanvasWidth,
		Height:     render.DefaultCanvasHeight,
		PenWidth:   2,
		FontSize:   24,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case !(c.PenWidth > 0) || c.PenWidth > MaxPenWidth:
		return fmt.Errorf("%w: pen width %v", ErrInvalidConfig, c.PenWidth)
	case !(c.FontSize > 0) || c.FontSize > MaxFontSize:
		return fmt.Errorf("%w: font size %v", ErrInvalidConfig, c.FontSize)
	}
	return nil
}

// withDefaults fills unset colors.
func (c Config) withDefaults() Config {
	if c.PenColor == nil {
		c.PenColor = render.DefaultPenColor
	}
	if c.Background == nil {
		c.Background = render.DefaultBackground
	}
	return c
}

func (c Config) transparent() bool {
	_, _, _, a := c.Background.RGBA()
	return a == 0
}
