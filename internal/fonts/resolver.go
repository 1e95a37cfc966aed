// Package fonts resolves the script font used to render typed-name
// signatures, either from an explicit font file or from the fonts installed
// on the host.
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	etxtfont "github.com/tinne26/etxt/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const (
	// DefaultFamily is the handwriting font family looked up on the host.
	DefaultFamily = "Journal"

	// DefaultDPI converts point sizes to pixels the way a desktop display does.
	DefaultDPI = 96
)

var ErrInvalidSize = errors.New("fonts: point size must be positive")

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Source tells where a resolved font came from.
type Source string

const (
	SourceFile Source = "file"
	SourceHost Source = "host"
)

// Resolver finds the signature font. The zero value looks for DefaultFamily
// in SystemFontDirs at DefaultDPI.
type Resolver struct {
	// Family is matched case-insensitively against installed fonts.
	Family string

	// Dirs are searched recursively when no font file is supplied.
	// Nil means SystemFontDirs().
	Dirs []string

	DPI    float64
	Logger Logger
}

func NewResolver() *Resolver {
	return &Resolver{Family: DefaultFamily, Dirs: SystemFontDirs(), DPI: DefaultDPI}
}

// ResolvedFont is a face at one point size. It belongs to the call that
// resolved it and must be closed when that call is done.
type ResolvedFont struct {
	Name   string
	Family string
	Source Source
	Path   string
	Size   float64

	parsed *sfnt.Font
	face   font.Face
}

func (f *ResolvedFont) Face() font.Face { return f.face }

// MissingRunes returns the runes of text the font has no glyph for.
func (f *ResolvedFont) MissingRunes(text string) []rune {
	missing, err := etxtfont.GetMissingRunes(f.parsed, text)
	if err != nil {
		return nil
	}
	return missing
}

func (f *ResolvedFont) Close() error {
	if f == nil || f.face == nil {
		return nil
	}
	err := f.face.Close()
	f.face = nil
	return err
}

// Resolve loads the font at path when path is non-empty. Otherwise it looks
// for the resolver's family among the installed fonts and fails with
// *FontNotAvailableError when it is not there.
func (r *Resolver) Resolve(path string, size float64) (*ResolvedFont, error) {
	if !(size > 0) {
		return nil, ErrInvalidSize
	}
	if path != "" {
		return r.load(path, SourceFile, size)
	}

	family := r.family()
	match, err := r.findInstalled(family)
	if err != nil {
		return nil, err
	}
	if match == "" {
		return nil, &FontNotAvailableError{Family: family}
	}
	r.infof("found %q at %s", family, match)
	return r.load(match, SourceHost, size)
}

// load parses the file into a library owned by this call only, so nothing
// registered here is visible to concurrent renders.
func (r *Resolver) load(path string, source Source, size float64) (*ResolvedFont, error) {
	// #nosec G304 -- font path comes from the service operator or the host font dirs
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}

	library := etxtfont.NewLibrary()
	name, err := library.ParseFromBytes(data)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	parsed := library.GetFont(name)
	family, err := etxtfont.GetFamily(parsed)
	if err != nil {
		family = name
	}

	face, err := r.newFace(data, parsed, size)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return &ResolvedFont{
		Name:   name,
		Family: family,
		Source: source,
		Path:   path,
		Size:   size,
		parsed: parsed,
		face:   face,
	}, nil
}

// newFace prefers freetype for TrueType outlines. freetype cannot read
// CFF-flavoured OpenType, which goes through x/image/font/opentype.
func (r *Resolver) newFace(data []byte, parsed *sfnt.Font, size float64) (font.Face, error) {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if tt, err := truetype.Parse(data); err == nil {
		return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingNone}), nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("create face at %.1fpt: %w", size, err)
	}
	return face, nil
}

// findInstalled walks the font directories and returns the path of the best
// font of the family: the regular style when present, else the first match
// in lexical order. It returns "" when nothing matches.
func (r *Resolver) findInstalled(family string) (string, error) {
	best, bestRegular := "", false
	for _, dir := range r.dirs() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// missing or unreadable entries are skipped
				return nil
			}
			if d.IsDir() || !isFontFile(path) {
				return nil
			}
			subfamily, ok := r.matchFamily(path, family)
			if !ok {
				return nil
			}
			regular := isRegular(subfamily)
			if best == "" || (regular && !bestRegular) {
				best, bestRegular = path, regular
			}
			if bestRegular {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("fonts: scan %s: %w", dir, err)
		}
		if bestRegular {
			break
		}
	}
	return best, nil
}

// matchFamily reads only the name table of the font at path.
func (r *Resolver) matchFamily(path, family string) (subfamily string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	parsed, err := sfnt.ParseReaderAt(f)
	if err != nil {
		r.infof("skipping %s: %v", path, err)
		return "", false
	}
	got, err := etxtfont.GetFamily(parsed)
	if err != nil || !strings.EqualFold(strings.TrimSpace(got), family) {
		return "", false
	}
	subfamily, _ = etxtfont.GetSubfamily(parsed)
	return subfamily, true
}

func isRegular(subfamily string) bool {
	s := strings.TrimSpace(subfamily)
	return strings.EqualFold(s, "Regular") || strings.EqualFold(s, "Book")
}

func (r *Resolver) family() string {
	if r.Family == "" {
		return DefaultFamily
	}
	return r.Family
}

func (r *Resolver) dirs() []string {
	if r.Dirs == nil {
		return SystemFontDirs()
	}
	return r.Dirs
}

func (r *Resolver) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("fonts", format, args...)
	}
}
