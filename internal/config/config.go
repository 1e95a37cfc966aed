// Package config binds render and font settings to command-line flags, with
// SIGIMAGE_* environment variables as fallbacks.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/rook-computer/sigimage/internal/fonts"
	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/signature"
)

// Settings are the render options shared by the service and the CLI.
type Settings struct {
	PenColor    string
	Background  string
	Width       int
	Height      int
	PenWidth    float64
	FontSize    float64
	FontPath    string
	FontFamily  string
	MaxSegments int

	envs map[string]string // flag name -> env var
}

func Defaults() Settings {
	def := signature.DefaultConfig()
	return Settings{
		PenColor:   render.FormatHexColor(def.PenColor),
		Background: render.FormatHexColor(def.Background),
		Width:      def.Width,
		Height:     def.Height,
		PenWidth:   def.PenWidth,
		FontSize:   def.FontSize,
		FontFamily: fonts.DefaultFamily,
	}
}

// Register adds the render flags to fs. defaultMaxSegments differs per
// binary: the service caps payloads, the CLI does not.
func (s *Settings) Register(fs *flag.FlagSet, defaultMaxSegments int) {
	s.MaxSegments = defaultMaxSegments
	s.envs = map[string]string{}
	bind := func(name, env string) { s.envs[name] = env }

	fs.StringVar(&s.PenColor, "pen-color", s.PenColor, "pen color (#rgb, #rrggbb, #rrggbbaa); env SIGIMAGE_PEN_COLOR")
	bind("pen-color", "SIGIMAGE_PEN_COLOR")
	fs.StringVar(&s.Background, "background", s.Background, "background color, or \"transparent\"; env SIGIMAGE_BACKGROUND")
	bind("background", "SIGIMAGE_BACKGROUND")
	fs.IntVar(&s.Width, "width", s.Width, "canvas width in pixels; env SIGIMAGE_WIDTH")
	bind("width", "SIGIMAGE_WIDTH")
	fs.IntVar(&s.Height, "height", s.Height, "canvas height in pixels; env SIGIMAGE_HEIGHT")
	bind("height", "SIGIMAGE_HEIGHT")
	fs.Float64Var(&s.PenWidth, "pen-width", s.PenWidth, "pen width in pixels; env SIGIMAGE_PEN_WIDTH")
	bind("pen-width", "SIGIMAGE_PEN_WIDTH")
	fs.Float64Var(&s.FontSize, "font-size", s.FontSize, "font size in points; env SIGIMAGE_FONT_SIZE")
	bind("font-size", "SIGIMAGE_FONT_SIZE")
	fs.StringVar(&s.FontPath, "font", s.FontPath, "script font file (.ttf/.otf); empty searches the host; env SIGIMAGE_FONT")
	bind("font", "SIGIMAGE_FONT")
	fs.StringVar(&s.FontFamily, "font-family", s.FontFamily, "font family to look up on the host; env SIGIMAGE_FONT_FAMILY")
	bind("font-family", "SIGIMAGE_FONT_FAMILY")
	fs.IntVar(&s.MaxSegments, "max-segments", s.MaxSegments, "maximum line segments per signature, 0 for unlimited; env SIGIMAGE_MAX_SEGMENTS")
	bind("max-segments", "SIGIMAGE_MAX_SEGMENTS")
}

// ApplyEnv fills every flag that was not given on the command line from its
// environment variable. Call it after fs.Parse.
func (s *Settings) ApplyEnv(fs *flag.FlagSet) error {
	return ApplyEnv(fs, s.envs)
}

// ApplyEnv sets each flag in envs that fs did not see on the command line
// from its environment variable, if that is non-empty.
func ApplyEnv(fs *flag.FlagSet, envs map[string]string) error {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	for name, env := range envs {
		if seen[name] {
			continue
		}
		raw := os.Getenv(env)
		if raw == "" {
			continue
		}
		if err := fs.Set(name, raw); err != nil {
			return fmt.Errorf("%s (got %q): %w", env, raw, err)
		}
	}
	return nil
}

// RenderConfig parses the colors and returns a validated render config.
func (s Settings) RenderConfig() (signature.Config, error) {
	pen, err := render.ParseHexColor(s.PenColor)
	if err != nil {
		return signature.Config{}, fmt.Errorf("pen color: %w", err)
	}
	bg, err := render.ParseHexColor(s.Background)
	if err != nil {
		return signature.Config{}, fmt.Errorf("background: %w", err)
	}
	cfg := signature.Config{
		PenColor:   pen,
		Background: bg,
		Width:      s.Width,
		Height:     s.Height,
		PenWidth:   s.PenWidth,
		FontSize:   s.FontSize,
	}
	if err := cfg.Validate(); err != nil {
		return signature.Config{}, err
	}
	return cfg, nil
}

// Generator builds a generator for these settings. logger may be nil.
func (s Settings) Generator(logger signature.Logger) (*signature.Generator, error) {
	cfg, err := s.RenderConfig()
	if err != nil {
		return nil, err
	}
	if s.MaxSegments < 0 {
		return nil, fmt.Errorf("%w: max segments %d", signature.ErrInvalidConfig, s.MaxSegments)
	}
	gen := signature.NewGenerator()
	gen.Config = cfg
	gen.MaxSegments = s.MaxSegments
	if s.FontFamily != "" {
		gen.Fonts.Family = s.FontFamily
	}
	if logger != nil {
		gen.Logger = logger
		gen.Fonts.Logger = logger
	}
	return gen, nil
}
