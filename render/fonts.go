// Package render implements the now-playing rendering pipeline: artwork
// acquisition with guaranteed fallback, text measurement and wrapping,
// canvas compositing, color-mode quantization with error diffusion, and the
// orchestration that writes the output artifacts atomically.
package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the three faces used by the compositor. The same faces are
// used for measuring (wrap decisions) and drawing, so layout arithmetic and
// rendered positions always agree.
type FontSet struct {
	Title  font.Face
	Artist font.Face
	Album  font.Face
}

// LoadFonts builds the FontSet. When fontPath names a readable TTF file its
// faces are used at the three sizes; otherwise (empty path, unreadable file,
// unparseable font) the embedded Go fonts are used instead and fellBack is
// true so the caller can log the downgrade. An error is only returned when
// even the embedded fonts cannot be parsed, which indicates a broken build.
func LoadFonts(fontPath string, sizeTitle, sizeArtist, sizeAlbum int) (fs *FontSet, fellBack bool, err error) {
	if fontPath != "" {
		if fs, ttfErr := loadTruetypeSet(fontPath, sizeTitle, sizeArtist, sizeAlbum); ttfErr == nil {
			return fs, false, nil
		}
		fellBack = true
	}

	fs, err = loadEmbeddedSet(sizeTitle, sizeArtist, sizeAlbum)
	if err != nil {
		return nil, fellBack, err
	}
	return fs, fellBack, nil
}

// loadTruetypeSet parses a user-supplied TTF file and derives the three faces.
func loadTruetypeSet(path string, sizeTitle, sizeArtist, sizeAlbum int) (*FontSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: failed to read font file %q: %w", path, err)
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: failed to parse font file %q: %w", path, err)
	}

	face := func(size int) font.Face {
		return truetype.NewFace(parsed, &truetype.Options{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	return &FontSet{
		Title:  face(sizeTitle),
		Artist: face(sizeArtist),
		Album:  face(sizeAlbum),
	}, nil
}

// loadEmbeddedSet builds faces from the Go fonts compiled into the binary:
// bold for the title, regular for artist and album.
func loadEmbeddedSet(sizeTitle, sizeArtist, sizeAlbum int) (*FontSet, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: failed to parse embedded bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: failed to parse embedded regular font: %w", err)
	}

	face := func(f *opentype.Font, size int) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	title, err := face(bold, sizeTitle)
	if err != nil {
		return nil, fmt.Errorf("render: failed to create title face: %w", err)
	}
	artist, err := face(regular, sizeArtist)
	if err != nil {
		return nil, fmt.Errorf("render: failed to create artist face: %w", err)
	}
	album, err := face(regular, sizeAlbum)
	if err != nil {
		return nil, fmt.Errorf("render: failed to create album face: %w", err)
	}

	return &FontSet{Title: title, Artist: artist, Album: album}, nil
}
