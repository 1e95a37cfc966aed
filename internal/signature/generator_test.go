package signature

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rook-computer/sigimage/internal/fonts"
	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/strokes"
	"golang.org/x/image/font/gofont/goregular"
)

func backgroundOnly(t *testing.T, cfg Config) *image.RGBA {
	t.Helper()
	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		t.Fatal(err)
	}
	canvas.Fill(cfg.Background)
	return canvas.Image()
}

func equalPixels(a, b *image.RGBA) bool {
	if a.Bounds() != b.Bounds() || len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func noHostFonts() *fonts.Resolver {
	return &fonts.Resolver{Family: fonts.DefaultFamily, Dirs: []string{}}
}

func testFontPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Width != 198 || cfg.Height != 55 {
		t.Errorf("size = %dx%d, want 198x55", cfg.Width, cfg.Height)
	}
	if cfg.PenWidth != 2 || cfg.FontSize != 24 {
		t.Errorf("PenWidth, FontSize = %v, %v, want 2, 24", cfg.PenWidth, cfg.FontSize)
	}
	if cfg.PenColor != color.Color(render.DefaultPenColor) || cfg.Background != color.Color(render.DefaultBackground) {
		t.Errorf("colors = %v on %v", cfg.PenColor, cfg.Background)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -3 }},
		{"zero pen", func(c *Config) { c.PenWidth = 0 }},
		{"huge pen", func(c *Config) { c.PenWidth = MaxPenWidth + 1 }},
		{"zero font", func(c *Config) { c.FontSize = 0 }},
		{"huge font", func(c *Config) { c.FontSize = MaxFontSize + 1 }},
		{"infinite font", func(c *Config) { c.FontSize = math.Inf(1) }},
		{"NaN font", func(c *Config) { c.FontSize = math.NaN() }},
		{"infinite pen", func(c *Config) { c.PenWidth = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if _, err := RenderStrokes(cfg, ""); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("RenderStrokes() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRenderStrokesEmptyIsBackground(t *testing.T) {
	g := NewGenerator()
	want := backgroundOnly(t, g.Config)
	for _, payload := range []string{"", "[]", "null"} {
		img, err := g.RenderStrokes(payload)
		if err != nil {
			t.Fatalf("RenderStrokes(%q) error = %v", payload, err)
		}
		if !equalPixels(img, want) {
			t.Errorf("RenderStrokes(%q) differs from the background canvas", payload)
		}
	}
}

func TestRenderStrokesDrawsEndpoints(t *testing.T) {
	g := NewGenerator()
	payload := `[{"lx":20,"ly":34,"mx":60,"my":20},{"lx":60,"ly":20,"mx":60,"my":20},{"lx":150,"ly":40,"mx":190,"my":5}]`
	img, err := g.RenderStrokes(payload)
	if err != nil {
		t.Fatalf("RenderStrokes() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 198, 55) {
		t.Fatalf("Bounds() = %v, want 198x55", got)
	}
	segs, _ := strokes.Decode(payload)
	white := render.DefaultBackground
	for _, s := range segs {
		if img.RGBAAt(s.Lx, s.Ly) == white || img.RGBAAt(s.Mx, s.My) == white {
			t.Errorf("segment %+v endpoints not drawn", s)
		}
	}
}

func TestRenderStrokesMalformed(t *testing.T) {
	g := NewGenerator()
	for _, payload := range []string{`{not valid}`, `[{"lx":1,"ly":2,"mx":3}]`} {
		img, err := g.RenderStrokes(payload)
		var malformed *strokes.MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("RenderStrokes(%q) error = %v, want *MalformedInputError", payload, err)
		}
		if img != nil {
			t.Errorf("RenderStrokes(%q) returned a partial image", payload)
		}
	}
}

func TestRenderStrokesMaxSegments(t *testing.T) {
	g := NewGenerator()
	g.MaxSegments = 1
	_, err := g.RenderStrokes(`[{"lx":1,"ly":1,"mx":2,"my":2},{"lx":2,"ly":2,"mx":3,"my":3}]`)
	if !errors.Is(err, strokes.ErrTooMany) {
		t.Errorf("RenderStrokes() error = %v, want ErrTooMany", err)
	}
}

func TestRenderStrokesTransparentBackground(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = render.Transparent
	img, err := RenderStrokes(cfg, `[{"lx":10,"ly":10,"mx":30,"my":10}]`)
	if err != nil {
		t.Fatal(err)
	}
	if a := img.RGBAAt(100, 40).A; a != 0 {
		t.Errorf("untouched pixel alpha = %d, want 0", a)
	}
	if a := img.RGBAAt(20, 10).A; a == 0 {
		t.Error("stroke pixel is transparent")
	}
}

func TestRenderStrokesCustomSize(t *testing.T) {
	g := NewGenerator()
	g.Config.Width, g.Config.Height = 400, 120
	img, err := g.RenderStrokes(`[{"lx":500,"ly":500,"mx":900,"my":900}]`)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 400, 120) {
		t.Errorf("Bounds() = %v, want 400x120", got)
	}
}

func TestRenderTextWithoutHostFont(t *testing.T) {
	g := NewGenerator()
	g.Fonts = noHostFonts()
	img, err := g.RenderText("Jane Doe", "")
	var notAvailable *fonts.FontNotAvailableError
	if !errors.As(err, &notAvailable) {
		t.Fatalf("RenderText() error = %v, want *FontNotAvailableError", err)
	}
	if img != nil {
		t.Error("RenderText() returned an image on failure")
	}
}

func TestRenderTextWithFontFile(t *testing.T) {
	g := NewGenerator()
	g.Fonts = noHostFonts()
	img, err := g.RenderText("Jane Doe", testFontPath(t))
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 198, 55) {
		t.Fatalf("Bounds() = %v, want 198x55", got)
	}
	if equalPixels(img, backgroundOnly(t, g.Config)) {
		t.Error("RenderText() drew nothing")
	}
	// The run starts at the origin, so the leftmost columns carry ink.
	inked := false
	for y := 0; y < 55 && !inked; y++ {
		for x := 0; x < 20; x++ {
			if img.RGBAAt(x, y) != render.DefaultBackground {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("no ink near the left edge")
	}
}

func TestRenderTextEmptyName(t *testing.T) {
	cfg := DefaultConfig()
	img, err := RenderText(cfg, noHostFonts(), "", testFontPath(t))
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if !equalPixels(img, backgroundOnly(t, cfg)) {
		t.Error("empty name changed the canvas")
	}
}

func TestRenderTextBadFontFile(t *testing.T) {
	_, err := RenderText(DefaultConfig(), noHostFonts(), "Jane", filepath.Join(t.TempDir(), "nope.ttf"))
	var loadErr *fonts.FontLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("RenderText() error = %v, want *FontLoadError", err)
	}
}

func TestRenderTextLongNameClipped(t *testing.T) {
	g := NewGenerator()
	g.Fonts = noHostFonts()
	g.Config.Width = 40
	img, err := g.RenderText("Bartholomew Montgomery-Fitzgerald", testFontPath(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 40 {
		t.Errorf("width = %d, want 40", got)
	}
}

func TestConcurrentRenders(t *testing.T) {
	fontPath := testFontPath(t)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cfg := DefaultConfig()
			cfg.PenWidth = float64(1 + i)
			_, err := RenderStrokes(cfg, `[{"lx":1,"ly":1,"mx":100,"my":50}]`)
			errs <- err
		}(i)
		go func() {
			defer wg.Done()
			_, err := RenderText(DefaultConfig(), noHostFonts(), "Jane Doe", fontPath)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent render error = %v", err)
		}
	}
}
