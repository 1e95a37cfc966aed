package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/big"

	"github.com/rook-computer/sigimage/internal/strokes"
	"golang.org/x/image/vector"
)

// DrawStrokes draws segs in order onto the surface with an anti-aliased,
// round-capped pen of the given width. Each segment is composited with
// draw.Over, so later segments land on top of earlier ones. A zero-length
// segment becomes a disc whose diameter is the pen width.
//
// Coordinates are pixel indices; the pen is centred on pixel centres.
// Segments outside the surface are clipped and never fail.
func DrawStrokes(s *Surface, segs []strokes.LineSegment, pen color.Color, width float64) {
	dst := s.Dst()
	if dst == nil || len(segs) == 0 || !(width > 0) {
		return
	}
	bounds := dst.Bounds()
	radius := width / 2
	margin := radius + 1
	clip := rectF{
		minX: float64(bounds.Min.X) - margin,
		minY: float64(bounds.Min.Y) - margin,
		maxX: float64(bounds.Max.X) + margin,
		maxY: float64(bounds.Max.Y) + margin,
	}

	src := image.NewUniform(pen)
	var z vector.Rasterizer
	for _, seg := range segs {
		x0, y0, x1, y1, ok := clip.clipSegment(seg)
		if !ok {
			continue
		}
		area := image.Rect(
			int(math.Floor(math.Min(x0, x1)-radius)),
			int(math.Floor(math.Min(y0, y1)-radius)),
			int(math.Ceil(math.Max(x0, x1)+radius)),
			int(math.Ceil(math.Max(y0, y1)+radius)),
		).Intersect(bounds)
		if area.Empty() {
			continue
		}

		// The rasterizer only covers the segment's bounding box.
		ox, oy := float64(area.Min.X), float64(area.Min.Y)
		z.Reset(area.Dx(), area.Dy())
		z.DrawOp = draw.Over
		addCapsule(&z, x0-ox, y0-oy, x1-ox, y1-oy, radius)
		z.Draw(dst, area, src, area.Min)
	}
}

// addCapsule adds the outline of a round-capped line of the given radius.
// Every contour is wound the same way so overlapping parts never cancel.
func addCapsule(z *vector.Rasterizer, x0, y0, x1, y1, r float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		z.MoveTo(float32(x0+r), float32(y0))
		addArc(z, x0, y0, r, 0, -2*math.Pi)
		z.ClosePath()
		return
	}
	theta := math.Atan2(dy, dx)
	nx, ny := -dy/length*r, dx/length*r

	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	addArc(z, x1, y1, r, theta+math.Pi/2, -math.Pi)
	z.LineTo(float32(x0-nx), float32(y0-ny))
	addArc(z, x0, y0, r, theta-math.Pi/2, -math.Pi)
	z.ClosePath()
}

// addArc appends a circular arc as cubic Béziers of at most a quarter turn.
// The pen must already be at the arc's start point.
func addArc(z *vector.Rasterizer, cx, cy, r, start, sweep float64) {
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4) * r
	for i := 0; i < n; i++ {
		a0 := start + float64(i)*step
		a1 := a0 + step
		sin0, cos0 := math.Sincos(a0)
		sin1, cos1 := math.Sincos(a1)
		p0x, p0y := cx+r*cos0, cy+r*sin0
		p3x, p3y := cx+r*cos1, cy+r*sin1
		z.CubeTo(
			float32(p0x-k*sin0), float32(p0y+k*cos0),
			float32(p3x+k*sin1), float32(p3y-k*cos1),
			float32(p3x), float32(p3y),
		)
	}
}

// farCoord bounds the coordinates clipLine handles in float64. Beyond it
// the subtraction in x0+t*dx cancels away whole pixels.
const farCoord = 1 << 30

type rectF struct {
	minX, minY, maxX, maxY float64
}

// clipSegment clips seg, offset to pixel centres, to r.
func (r rectF) clipSegment(seg strokes.LineSegment) (float64, float64, float64, float64, bool) {
	for _, v := range [4]int{seg.Lx, seg.Ly, seg.Mx, seg.My} {
		if v < -farCoord || v > farCoord {
			return r.clipLineExact(seg)
		}
	}
	return r.clipLine(
		float64(seg.Lx)+0.5, float64(seg.Ly)+0.5,
		float64(seg.Mx)+0.5, float64(seg.My)+0.5,
	)
}

// clipLineExact is clipLine in rational arithmetic, for segments whose
// endpoints float64 cannot hold to the pixel.
func (r rectF) clipLineExact(seg strokes.LineSegment) (float64, float64, float64, float64, bool) {
	half := big.NewRat(1, 2)
	centre := func(v int) *big.Rat {
		return new(big.Rat).Add(new(big.Rat).SetInt64(int64(v)), half)
	}
	edge := func(f float64) *big.Rat { return new(big.Rat).SetFloat64(f) }

	x0, y0, x1, y1 := centre(seg.Lx), centre(seg.Ly), centre(seg.Mx), centre(seg.My)
	dx := new(big.Rat).Sub(x1, x0)
	dy := new(big.Rat).Sub(y1, y0)
	t0, t1 := new(big.Rat), big.NewRat(1, 1)
	edges := [4][2]*big.Rat{
		{new(big.Rat).Neg(dx), new(big.Rat).Sub(x0, edge(r.minX))},
		{dx, new(big.Rat).Sub(edge(r.maxX), x0)},
		{new(big.Rat).Neg(dy), new(big.Rat).Sub(y0, edge(r.minY))},
		{dy, new(big.Rat).Sub(edge(r.maxY), y0)},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p.Sign() == 0 {
			if q.Sign() < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := new(big.Rat).Quo(q, p)
		if p.Sign() < 0 {
			if t.Cmp(t1) > 0 {
				return 0, 0, 0, 0, false
			}
			if t.Cmp(t0) > 0 {
				t0 = t
			}
		} else {
			if t.Cmp(t0) < 0 {
				return 0, 0, 0, 0, false
			}
			if t.Cmp(t1) < 0 {
				t1 = t
			}
		}
	}
	at := func(o, d, t *big.Rat) float64 {
		f, _ := new(big.Rat).Add(o, new(big.Rat).Mul(d, t)).Float64()
		return f
	}
	return at(x0, dx, t0), at(y0, dy, t0), at(x0, dx, t1), at(y0, dy, t1), true
}

// clipLine clips a segment to r (Liang-Barsky). A degenerate segment is kept
// when its point lies inside r.
func (r rectF) clipLine(x0, y0, x1, y1 float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - r.minX},
		{dx, r.maxX - x0},
		{-dy, y0 - r.minY},
		{dy, r.maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
