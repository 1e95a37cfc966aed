package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawText draws text in a single line starting at the canvas origin: the
// top of the line box sits on y=0 and the baseline is one ascent below it.
// Nothing is wrapped or centred; glyphs past the canvas edge are clipped.
func DrawText(s *Surface, text string, face font.Face, col color.Color) {
	dst := s.Dst()
	if dst == nil || text == "" || face == nil {
		return
	}
	origin := dst.Bounds().Min
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(origin.X),
		Y: fixed.I(origin.Y) + face.Metrics().Ascent,
	}
	drawer.DrawString(text)
}

// MeasureText returns the advance width and line height of text in pixels.
func MeasureText(text string, face font.Face) (width, height int) {
	if face == nil {
		return 0, 0
	}
	drawer := &font.Drawer{Face: face}
	metrics := face.Metrics()
	return drawer.MeasureString(text).Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
}
