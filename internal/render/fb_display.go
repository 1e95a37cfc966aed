package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/freetype/truetype"
	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/sigimage/internal/render/layout"
	"github.com/rook-computer/sigimage/internal/state"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	displayPadding   = 48
	captionHeight    = 96
	captionSizePt    = 28
	refreshInterval  = time.Second / 10
	forcedRedrawTick = time.Second
)

// FBDisplay shows the capture QR code while idle and the latest rendered
// signature afterwards, on the Linux framebuffer.
type FBDisplay struct {
	Device string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	fbDev   *fb.Device
	running atomic.Bool

	mu     sync.Mutex
	canvas *image.RGBA
	face   font.Face
	qrURL  string
	qrImg  image.Image
}

func NewFBDisplay(device string) *FBDisplay {
	if device == "" {
		device = "/dev/fb0"
	}
	return &FBDisplay{Device: device}
}

func (d *FBDisplay) Start(ctx context.Context) error {
	dev, err := fb.Open(d.Device)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", d.Device, err)
	}
	d.mu.Lock()
	d.fbDev = dev
	d.mu.Unlock()
	if d.Logger != nil {
		bounds := dev.Bounds()
		d.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	}
	d.running.Store(true)
	return nil
}

func (d *FBDisplay) Stop() error {
	d.running.Store(false)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fbDev != nil {
		d.fbDev.Close()
		d.fbDev = nil
	}
	return nil
}

// RedrawWithState composes a frame for snap and copies it to the framebuffer.
func (d *FBDisplay) RedrawWithState(snap state.State) {
	if !d.running.Load() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fbDev == nil {
		return
	}
	frame := d.compose(snap)
	xdraw.NearestNeighbor.Scale(d.fbDev, d.fbDev.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
}

// RunLoop polls the store about ten times per second. A frame is drawn when
// the store changed, and at least once a second so console output written
// over the framebuffer does not linger.
func (d *FBDisplay) RunLoop(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	var lastSeq uint64
	lastDraw := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := store.Snapshot()
			if snap.Seq == lastSeq && time.Since(lastDraw) < forcedRedrawTick {
				continue
			}
			d.RedrawWithState(snap)
			if d.Logger != nil && snap.Seq != lastSeq {
				d.Logger.Infof("fb", "redraw, phase=%s seq=%d", snap.Phase, snap.Seq)
			}
			lastSeq = snap.Seq
			lastDraw = time.Now()
		}
	}
}

// Compose draws the frame for snap into the logical canvas and returns it.
// The returned image is reused by the next call.
func (d *FBDisplay) Compose(snap state.State) *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compose(snap)
}

func (d *FBDisplay) compose(snap state.State) *image.RGBA {
	if d.canvas == nil {
		d.canvas = image.NewRGBA(image.Rect(0, 0, DisplayWidth, DisplayHeight))
	}
	if d.face == nil {
		d.face = d.captionFace()
	}
	draw.Draw(d.canvas, d.canvas.Bounds(), image.NewUniform(DisplayBackground), image.Point{}, draw.Src)

	content := layout.Inset(d.canvas.Bounds(), displayPadding)
	if snap.Last.Image != nil {
		d.drawSignature(content, snap)
	} else {
		d.drawIdle(content, snap)
	}
	return d.canvas
}

func (d *FBDisplay) drawSignature(content image.Rectangle, snap state.State) {
	area, caption := layout.SplitHorizontal(content, content.Dy()-captionHeight)
	img := snap.Last.Image

	// The signature keeps its own background; transparent ones sit on white.
	card := layout.FitAspect(area, img.Bounds())
	draw.Draw(d.canvas, card, image.NewUniform(DefaultBackground), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(d.canvas, card, img, img.Bounds(), xdraw.Over, nil)

	label := "Signature"
	if snap.Last.Kind == state.KindName && snap.Last.Name != "" {
		label = snap.Last.Name
	}
	label += "  " + snap.Last.At.Format("15:04:05")
	if snap.Phase == state.FAILED && snap.Last.Err != "" {
		label = "Last render failed: " + snap.Last.Err
	}
	d.drawLine(caption, 0, label)
}

func (d *FBDisplay) drawIdle(content image.Rectangle, snap state.State) {
	left, right := layout.SplitVertical(content, content.Dx()/2)
	right = layout.Inset(right, displayPadding/2)

	url := snap.Network.URL
	if url == "" {
		d.drawLine(right, 0, "Waiting for network")
		return
	}
	square := layout.FitSquare(left)
	if qr := d.qrCode(url, square.Dx()); qr != nil {
		draw.Draw(d.canvas, square, qr, qr.Bounds().Min, draw.Src)
	}
	d.drawLine(right, 0, "Scan to sign")
	d.drawLine(right, 1, url)
	d.drawLine(right, 2, fmt.Sprintf("%d signatures, %d names", snap.Counters.Strokes, snap.Counters.Names))
}

// qrCode caches the QR image for the current URL.
func (d *FBDisplay) qrCode(url string, sizePx int) image.Image {
	if url == d.qrURL && d.qrImg != nil && d.qrImg.Bounds().Dx() == sizePx {
		return d.qrImg
	}
	img, err := GenerateQRCodeImage(url, sizePx)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Errorf("fb", "qr code for %q failed: %v", url, err)
		}
		return nil
	}
	d.qrURL, d.qrImg = url, img
	return img
}

// drawLine draws text left-aligned on the given line of rect.
func (d *FBDisplay) drawLine(rect image.Rectangle, line int, text string) {
	metrics := d.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	drawer := &font.Drawer{
		Dst:  d.canvas,
		Src:  image.NewUniform(DisplayForeground),
		Face: d.face,
	}
	baseline := rect.Min.Y + line*lineHeight + metrics.Ascent.Ceil()
	drawer.Dot = fixed.P(rect.Min.X, baseline)
	drawer.DrawString(text)
}

func (d *FBDisplay) captionFace() font.Face {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Errorf("fb", "caption font parse failed, using basicfont: %v", err)
		}
		return basicfont.Face7x13
	}
	return truetype.NewFace(tt, &truetype.Options{Size: captionSizePt, DPI: 96, Hinting: font.HintingFull})
}
