package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Default colors and canvas size for a rendered signature.
var (
	DefaultPenColor   = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF} // #000000
	DefaultBackground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF} // #ffffff

	// Sized for one line of a typed name at 24pt.
	DefaultCanvasWidth  = 198
	DefaultCanvasHeight = 55
)

// Preview display palette and logical size. Frames are scaled to the
// framebuffer's real resolution when blitted.
var (
	DisplayForeground = color.RGBA{R: 0x90, G: 0x00, B: 0xFF, A: 0xFF} // #9000ff
	DisplayBackground = color.RGBA{R: 0xFF, G: 0xDC, B: 0x00, A: 0xFF} // #ffdc00

	DisplayWidth  = 1280
	DisplayHeight = 720
)

// Transparent is the background value that leaves the canvas unfilled.
var Transparent = color.RGBA{}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading '#' is
// optional) and the keyword "transparent". The result is non-premultiplied
// input converted to color.RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	raw := strings.TrimSpace(s)
	if strings.EqualFold(raw, "transparent") {
		return Transparent, nil
	}
	hex := strings.TrimPrefix(raw, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	nrgba := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(nrgba).(color.RGBA), nil
}

// FormatHexColor is the inverse of ParseHexColor for opaque and translucent colors.
func FormatHexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
