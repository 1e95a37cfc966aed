// Command convert renders a signature to a PNG file without the HTTP service:
//
//	convert -strokes signature.json -o out.png
//	convert -name "Jane Doe" -font journal.ttf -o out.png
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/rook-computer/sigimage/internal/app"
	"github.com/rook-computer/sigimage/internal/config"
	"github.com/rook-computer/sigimage/internal/fonts"
	"github.com/rook-computer/sigimage/internal/strokes"
)

const (
	exitOK    = 0
	exitUsage = 2
	exitInput = 3 // malformed strokes
	exitFont  = 4 // font missing or unreadable
	exitOther = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	settings := config.Defaults()
	settings.Register(fs, 0)
	strokesPath := fs.String("strokes", "", "stroke JSON file to render, or - for stdin")
	name := fs.String("name", "", "typed name to render in the script font")
	out := fs.String("o", "", "output PNG file, or - for stdout")
	verbose := fs.Bool("v", false, "log font lookup details to stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := settings.ApplyEnv(fs); err != nil {
		fmt.Fprintln(stderr, "convert:", err)
		return exitUsage
	}

	textMode := isSet(fs, "name")
	if (*strokesPath != "") == textMode || *out == "" {
		fmt.Fprintln(stderr, "convert: need exactly one of -strokes or -name, and -o")
		fs.Usage()
		return exitUsage
	}

	var logger app.Logger = app.NewErrorLogger(stderr)
	if *verbose {
		logger = app.NewFileLogger(stderr)
	}
	gen, err := settings.Generator(logger)
	if err != nil {
		fmt.Fprintln(stderr, "convert:", err)
		return exitUsage
	}

	var img *image.RGBA
	if textMode {
		img, err = gen.RenderText(*name, settings.FontPath)
	} else {
		var payload []byte
		payload, err = readInput(*strokesPath, stdin)
		if err == nil {
			img, err = gen.RenderStrokes(string(payload))
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, "convert:", err)
		return exitCode(err)
	}

	if err := writePNG(*out, stdout, img); err != nil {
		fmt.Fprintln(stderr, "convert:", err)
		return exitOther
	}
	logger.Infof("convert", "wrote %dx%d image to %s", img.Bounds().Dx(), img.Bounds().Dy(), *out)
	return exitOK
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writePNG(path string, stdout io.Writer, img image.Image) error {
	if path == "-" {
		w := bufio.NewWriter(stdout)
		if err := png.Encode(w, img); err != nil {
			return err
		}
		return w.Flush()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func exitCode(err error) int {
	var (
		malformed    *strokes.MalformedInputError
		notAvailable *fonts.FontNotAvailableError
		loadErr      *fonts.FontLoadError
	)
	switch {
	case errors.As(err, &malformed):
		return exitInput
	case errors.As(err, &notAvailable), errors.As(err, &loadErr):
		return exitFont
	}
	return exitOther
}
