package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
)

var (
	ErrInvalidSize = errors.New("render: canvas width and height must be positive")
	ErrSurfaceBusy = errors.New("render: canvas already has an active surface")
)

// Canvas is a fixed-size RGBA pixel buffer that a single render call draws
// into. A new canvas is fully transparent.
type Canvas struct {
	img    *image.RGBA
	active atomic.Bool
}

func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	// image.NewRGBA zeroes the buffer, so every pixel starts with alpha 0.
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Image returns the backing image. Callers must not keep drawing into it
// once it has been handed to an encoder.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Fill paints every pixel with col at full opacity.
func (c *Canvas) Fill(col color.Color) {
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	if rgba.A != 0xFF {
		n := color.NRGBAModel.Convert(col).(color.NRGBA)
		n.A = 0xFF
		rgba = color.RGBAModel.Convert(n).(color.RGBA)
	}
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: rgba}, image.Point{}, draw.Src)
}

// Surface hands out the drawing handle. Only one surface may be active at a
// time; it must be released before another one is requested.
func (c *Canvas) Surface() (*Surface, error) {
	if !c.active.CompareAndSwap(false, true) {
		return nil, ErrSurfaceBusy
	}
	return &Surface{canvas: c}, nil
}

// Surface is the scoped drawing context of a Canvas.
type Surface struct {
	canvas   *Canvas
	released bool
}

// Dst returns the drawable image, or nil once the surface has been released.
func (s *Surface) Dst() draw.Image {
	if s == nil || s.released {
		return nil
	}
	return s.canvas.img
}

func (s *Surface) Bounds() image.Rectangle {
	if s == nil || s.released {
		return image.Rectangle{}
	}
	return s.canvas.img.Bounds()
}

// Release ends the surface. It is safe to call more than once.
func (s *Surface) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.canvas.active.Store(false)
}
