package render

import (
	"image"
	"image/color"
	"testing"
	"time"

	"nowplaying/core"
)

func testCompositor(t *testing.T) *Compositor {
	t.Helper()
	cfg := &core.Config{
		Station:     "doublej",
		Width:       250,
		Height:      122,
		ArtworkSize: 122,
		TextMargin:  10,
		LineSpacing: 5,
	}
	return NewCompositor(cfg, testFonts(t))
}

func solidSquare(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeDimensions(t *testing.T) {
	comp := testCompositor(t)
	meta := core.SongMetadata{Title: "Song", Artist: "Artist", Album: "Album"}

	out := comp.Compose(meta, solidSquare(122, color.RGBA{200, 50, 50, 255}))
	if b := out.Bounds(); b.Dx() != 250 || b.Dy() != 122 {
		t.Errorf("canvas is %dx%d, want 250x122", b.Dx(), b.Dy())
	}
}

func TestComposePastesArtworkAtOrigin(t *testing.T) {
	comp := testCompositor(t)
	red := color.RGBA{200, 30, 30, 255}

	out := comp.Compose(core.SongMetadata{Title: "Song"}, solidSquare(122, red))

	if got := out.RGBAAt(5, 5); got != red {
		t.Errorf("artwork area pixel = %v, want %v", got, red)
	}
	if got := out.RGBAAt(60, 110); got != red {
		t.Errorf("artwork area pixel = %v, want %v", got, red)
	}
}

func TestComposeResizesOversizedArtwork(t *testing.T) {
	comp := testCompositor(t)
	blue := color.RGBA{30, 30, 200, 255}

	out := comp.Compose(core.SongMetadata{Title: "Song"}, solidSquare(500, blue))

	// The resized artwork fills exactly the square; just right of it the
	// background is untouched white (no banner without a play time).
	got := out.RGBAAt(60, 60)
	if got.B < 150 || got.R > 100 {
		t.Errorf("artwork area pixel = %v, want predominantly blue", got)
	}
	if got := out.RGBAAt(123, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel right of artwork = %v, want white", got)
	}
}

func TestComposeBanner(t *testing.T) {
	comp := testCompositor(t)
	playTime := time.Date(2024, 6, 1, 15, 4, 0, 0, time.UTC)

	meta := core.SongMetadata{Title: "Song", Artist: "Artist", Album: "Album", PlayTime: &playTime}
	out := comp.Compose(meta, solidSquare(122, color.RGBA{128, 128, 128, 255}))

	// The banner strip right of the artwork is mostly black with white
	// label pixels.
	black := 0
	for x := 122; x < 250; x++ {
		for y := 0; y < bannerHeight; y++ {
			c := out.RGBAAt(x, y)
			if c.R < 50 && c.G < 50 && c.B < 50 {
				black++
			}
		}
	}
	if black < (250-122)*bannerHeight/2 {
		t.Errorf("banner area has only %d black pixels, expected a filled strip", black)
	}
}

func TestComposeNoBannerWithoutPlayTime(t *testing.T) {
	comp := testCompositor(t)
	meta := core.SongMetadata{Title: "Song", Artist: "Artist", Album: "Album"}
	out := comp.Compose(meta, solidSquare(122, color.RGBA{128, 128, 128, 255}))

	// Without a play time the top-right corner stays background white.
	if got := out.RGBAAt(249, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("top-right pixel = %v, want white", got)
	}
}

func TestComposeDrawsTextBlocks(t *testing.T) {
	comp := testCompositor(t)
	meta := core.SongMetadata{Title: "Title Text", Artist: "Artist Text", Album: "Album Text"}
	out := comp.Compose(meta, solidSquare(122, color.RGBA{255, 255, 255, 255}))

	// Text pixels are dark; scan the text column for any.
	dark := 0
	for x := 132; x < 240; x++ {
		for y := 0; y < 122; y++ {
			c := out.RGBAAt(x, y)
			if c.R < 100 && c.G < 100 && c.B < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no dark pixels in the text column; text was not drawn")
	}
}

func TestComposeEmptyMetadataUsesFallback(t *testing.T) {
	comp := testCompositor(t)
	out := comp.Compose(core.SongMetadata{}, solidSquare(122, color.RGBA{255, 255, 255, 255}))

	// "Unknown" must be drawn for every block, so the column has text.
	dark := 0
	for x := 132; x < 240; x++ {
		for y := 0; y < 122; y++ {
			c := out.RGBAAt(x, y)
			if c.R < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("empty metadata must still render the fallback label")
	}
}

func TestTextOrUnknown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", FallbackLine},
		{"   ", FallbackLine},
		{"Real Title", "Real Title"},
	}
	for _, tt := range tests {
		if got := textOrUnknown(tt.in); got != tt.want {
			t.Errorf("textOrUnknown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
