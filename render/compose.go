package render

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/gift"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"nowplaying/core"
)

// Fixed layout constants. The banner height and the bottom safety margin
// are part of the visual contract with the e-paper display.
const (
	bannerHeight       = 18
	bannerTextTop      = 2
	bottomSafetyMargin = 20
)

// playTimeFormat renders the banner clock, e.g. "7:41 PM".
const playTimeFormat = "3:04 PM"

// Compositor lays artwork and text blocks onto a fresh canvas of fixed
// dimensions. The canvas is created per call and never reused, so there is
// no incremental drawing state.
type Compositor struct {
	width        int
	height       int
	artworkSize  int
	textMargin   int
	lineSpacing  int
	fonts        *FontSet
	stationLabel string
}

// NewCompositor creates a compositor bound to the configured geometry.
func NewCompositor(cfg *core.Config, fonts *FontSet) *Compositor {
	return &Compositor{
		width:        cfg.Width,
		height:       cfg.Height,
		artworkSize:  cfg.ArtworkSize,
		textMargin:   cfg.TextMargin,
		lineSpacing:  cfg.LineSpacing,
		fonts:        fonts,
		stationLabel: cfg.StationLabel(),
	}
}

// Compose renders the metadata onto a new white canvas:
//
//  1. Artwork resized to the square artwork area, pasted at the origin.
//  2. If a play time is present, a solid banner across the top of the text
//     column with the station label and local time in inverted color.
//  3. Title, artist and album blocks wrapped to the text column, separated
//     by one extra line-spacing gap each; album lines stop silently when
//     the next line would cross the bottom safety margin.
func (c *Compositor) Compose(meta core.SongMetadata, artwork image.Image) *image.RGBA {
	dc := gg.NewContext(c.width, c.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.DrawImage(resizeSquare(artwork, c.artworkSize), 0, 0)

	textX := c.artworkSize + c.textMargin
	textWidth := c.width - textX - c.textMargin
	y := c.textMargin

	if meta.PlayTime != nil {
		y = c.drawBanner(dc, *meta.PlayTime, textX)
	}

	y = c.drawBlock(dc, textOrUnknown(meta.Title), c.fonts.Title, textX, textWidth, y, false)
	y += c.lineSpacing
	y = c.drawBlock(dc, textOrUnknown(meta.Artist), c.fonts.Artist, textX, textWidth, y, false)
	y += c.lineSpacing
	c.drawBlock(dc, textOrUnknown(meta.Album), c.fonts.Album, textX, textWidth, y, true)

	return dc.Image().(*image.RGBA)
}

// drawBanner fills the strip from the artwork's right edge to the canvas's
// right edge and renders the station label plus play time in inverted
// color. Returns the vertical cursor below the banner plus one gap.
func (c *Compositor) drawBanner(dc *gg.Context, playTime time.Time, textX int) int {
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(float64(c.artworkSize), 0, float64(c.width-c.artworkSize), bannerHeight)
	dc.Fill()

	label := fmt.Sprintf("%s   %s", c.stationLabel, playTime.Format(playTimeFormat))
	dc.SetFontFace(c.fonts.Album)
	dc.SetRGB(1, 1, 1)
	baseline := bannerTextTop + c.fonts.Album.Metrics().Ascent.Ceil()
	dc.DrawString(label, float64(textX), float64(baseline))

	return bannerHeight + c.lineSpacing
}

// drawBlock wraps text to the column and draws each line in black,
// advancing the cursor by the face's line height plus line spacing.
// When clipBottom is set, lines that would cross the bottom safety margin
// are dropped silently, with no truncation marker.
func (c *Compositor) drawBlock(dc *gg.Context, text string, face font.Face, x, maxWidth, y int, clipBottom bool) int {
	block := WrapBlock(text, face, maxWidth)
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	for _, line := range block.Lines {
		if clipBottom && y+bottomSafetyMargin > c.height {
			break
		}
		dc.DrawString(line, float64(x), float64(y+ascent))
		y += lineHeight + c.lineSpacing
	}
	return y
}

// resizeSquare scales src to size×size with Lanczos resampling.
func resizeSquare(src image.Image, size int) image.Image {
	b := src.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return src
	}
	g := gift.New(gift.Resize(size, size, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return dst
}

// textOrUnknown substitutes the fallback label for absent metadata fields.
func textOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return FallbackLine
	}
	return s
}
