package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"time"

	// Artwork URLs serve a mix of formats; register the decoders so
	// image.Decode can handle whatever the CDN returns.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FallbackReason explains why the placeholder was returned instead of real
// artwork. The empty value means real artwork was fetched. Modeling the
// fallback as an explicit value keeps every recovery path a visible branch.
type FallbackReason string

const (
	FallbackNone          FallbackReason = ""
	FallbackNoURL         FallbackReason = "no_artwork_url"
	FallbackRequestFailed FallbackReason = "request_failed"
	FallbackBadStatus     FallbackReason = "bad_status"
	FallbackUndecodable   FallbackReason = "undecodable"
)

// placeholderGray is the background shade of the fallback square.
var placeholderGray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// placeholderGlyph is drawn centered on the fallback square.
const placeholderGlyph = "♪" // eighth note

// ArtworkProvider obtains a square artwork image for the compositor.
//
// Contract: Fetch never fails. Any fetch or decode error, an HTTP error
// status, or an absent URL yields the deterministic placeholder, so the
// caller always receives a valid image ready for resizing.
type ArtworkProvider struct {
	client      *http.Client
	size        int
	placeholder image.Image
}

// NewArtworkProvider creates a provider with a bounded fetch timeout.
// The placeholder is built once at construction: a solid gray square of the
// configured size with a centered music glyph in the given face.
func NewArtworkProvider(timeout time.Duration, size int, glyphFace font.Face) *ArtworkProvider {
	return &ArtworkProvider{
		client:      &http.Client{Timeout: timeout},
		size:        size,
		placeholder: buildPlaceholder(size, glyphFace),
	}
}

// Fetch returns the artwork at url, or the placeholder with the reason it
// was substituted. The request is bounded by both the client timeout and
// the supplied context.
func (p *ArtworkProvider) Fetch(ctx context.Context, url string) (image.Image, FallbackReason) {
	if url == "" {
		return p.placeholder, FallbackNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return p.placeholder, FallbackRequestFailed
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.placeholder, FallbackRequestFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.placeholder, FallbackBadStatus
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return p.placeholder, FallbackRequestFailed
	}

	img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return p.placeholder, FallbackUndecodable
	}
	return img, FallbackNone
}

// Placeholder exposes the fallback image, mainly for tests.
func (p *ArtworkProvider) Placeholder() image.Image { return p.placeholder }

// buildPlaceholder renders the deterministic fallback square.
func buildPlaceholder(size int, glyphFace font.Face) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderGray), image.Point{}, draw.Src)

	if glyphFace != nil {
		width := font.MeasureString(glyphFace, placeholderGlyph).Ceil()
		metrics := glyphFace.Metrics()
		x := (size - width) / 2
		baseline := (size + metrics.Ascent.Ceil() - metrics.Descent.Ceil()) / 2

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: glyphFace,
			Dot:  fixed.P(x, baseline),
		}
		d.DrawString(placeholderGlyph)
	}

	return img
}
