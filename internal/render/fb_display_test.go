package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"

	"github.com/rook-computer/sigimage/internal/state"
)

func countColor(img *image.RGBA, rect image.Rectangle, match func(color.RGBA) bool) int {
	n := 0
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if match(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func isDark(c color.RGBA) bool { return c.R < 0x40 && c.G < 0x40 && c.B < 0x40 }

func TestComposeIdleShowsQRCode(t *testing.T) {
	d := NewFBDisplay("")
	frame := d.Compose(state.State{Network: state.NetworkInfo{URL: "http://10.0.0.2:8080/"}})

	if got := frame.Bounds(); got != image.Rect(0, 0, DisplayWidth, DisplayHeight) {
		t.Fatalf("Bounds() = %v", got)
	}
	left := image.Rect(0, 0, DisplayWidth/2, DisplayHeight)
	if countColor(frame, left, isDark) == 0 {
		t.Error("no QR modules in the left half")
	}
	if c := frame.RGBAAt(2, 2); c != DisplayBackground {
		t.Errorf("corner = %v, want display background", c)
	}
	right := image.Rect(DisplayWidth/2, 0, DisplayWidth, DisplayHeight)
	if countColor(frame, right, func(c color.RGBA) bool { return c == DisplayForeground }) == 0 {
		t.Error("no caption text on the right")
	}
}

func TestComposeWithoutNetwork(t *testing.T) {
	frame := NewFBDisplay("").Compose(state.State{})
	left := image.Rect(0, 0, DisplayWidth/2, DisplayHeight)
	if n := countColor(frame, left, isDark); n != 0 {
		t.Errorf("%d dark pixels without a URL", n)
	}
}

func TestComposeShowsLastSignature(t *testing.T) {
	sig := image.NewRGBA(image.Rect(0, 0, 198, 55))
	draw.Draw(sig, sig.Bounds(), image.NewUniform(color.RGBA{A: 0xFF}), image.Point{}, draw.Src)

	d := NewFBDisplay("")
	frame := d.Compose(state.State{
		Phase: state.RENDERED,
		Last:  state.LastRender{Kind: state.KindName, Name: "Jane Doe", At: time.Now(), Image: sig},
	})
	if c := frame.RGBAAt(DisplayWidth/2, DisplayHeight/3); !isDark(c) {
		t.Errorf("centre of the signature area = %v, want the signature ink", c)
	}

	// A second frame without an image goes back to idle.
	frame = d.Compose(state.State{})
	if c := frame.RGBAAt(DisplayWidth/2, DisplayHeight/3); c != DisplayBackground {
		t.Errorf("idle frame still shows the signature: %v", c)
	}
}

func TestFBDisplayWithoutDevice(t *testing.T) {
	d := NewFBDisplay("/nonexistent/fb")
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("Start() on a missing device succeeded")
	}
	d.RedrawWithState(state.State{})
	if err := d.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestFBDisplayStopDuringRedraw(t *testing.T) {
	d := NewFBDisplay("/nonexistent/fb")
	d.running.Store(true)
	store := state.NewStore()
	store.UpdateNetwork(state.NetworkInfo{URL: "http://10.0.0.2/"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.RedrawWithState(store.Snapshot())
			_ = d.Compose(store.Snapshot())
		}()
		go func() {
			defer wg.Done()
			_ = d.Stop()
		}()
	}
	wg.Wait()
	if d.running.Load() {
		t.Error("display still running after Stop")
	}
}

func TestQRCode(t *testing.T) {
	img, err := GenerateQRCodeImage("", 100)
	if img != nil || err != nil {
		t.Errorf("GenerateQRCodeImage(empty) = %v, %v", img, err)
	}
	img, err = GenerateQRCodeImage("http://sig.local/", 200)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 200 {
		t.Errorf("width = %d, want 200", got)
	}
	png, err := EncodeQRCodePNG("http://sig.local/", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("EncodeQRCodePNG did not return a PNG")
	}
}
