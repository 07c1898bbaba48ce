package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"nowplaying/core"
)

// Quantize converts an RGB canvas into the target color mode's paletted
// representation. It is a pure function of (canvas pixels, mode): identical
// inputs always produce identical output, and the output dimensions always
// equal the input dimensions. The PNG encoder later picks the bit depth
// from the palette size (2 colors = 1-bit, 4 = 2-bit, 8 = 4-bit).
//
// All modes use Floyd–Steinberg error diffusion with the classic weights,
// processing pixels in raster order and propagating each pixel's
// quantization error to the right neighbor (7/16), bottom-left (3/16),
// bottom (5/16) and bottom-right (1/16).
func Quantize(canvas *image.RGBA, mode core.ColorMode) (*image.Paletted, error) {
	if canvas == nil {
		return nil, fmt.Errorf("render: canvas cannot be nil")
	}

	switch mode {
	case core.ModeMonochrome:
		return diffuseGray(canvas, []uint8{0, 255}), nil
	case core.ModeGrayscale4:
		return diffuseGray(canvas, []uint8{0, 85, 170, 255}), nil
	case core.ModePalette7:
		return diffuseColor(canvas, adaptivePalette(canvas, 7)), nil
	default:
		return nil, fmt.Errorf("render: unsupported color mode %v", mode)
	}
}

// luminance converts an RGB pixel to its ITU-R 601 luma, matching the
// grayscale conversion the original pipeline used.
func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// diffuseGray quantizes the canvas luminance to the given levels with error
// diffusion. The levels slice doubles as the output palette.
func diffuseGray(canvas *image.RGBA, levels []uint8) *image.Paletted {
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := canvas.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			lum[y*w+x] = luminance(canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2])
		}
	}

	palette := make(color.Palette, len(levels))
	for i, level := range levels {
		palette[i] = color.Gray{Y: level}
	}
	out := image.NewPaletted(image.Rect(0, 0, w, h), palette)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := lum[y*w+x]
			idx := nearestLevel(levels, old)
			out.SetColorIndex(x, y, uint8(idx))

			err := old - float64(levels[idx])
			if x+1 < w {
				lum[y*w+x+1] += err * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					lum[(y+1)*w+x-1] += err * 3 / 16
				}
				lum[(y+1)*w+x] += err * 5 / 16
				if x+1 < w {
					lum[(y+1)*w+x+1] += err * 1 / 16
				}
			}
		}
	}
	return out
}

// nearestLevel returns the index of the level closest to v. Ties resolve to
// the lower level so the result is deterministic.
func nearestLevel(levels []uint8, v float64) int {
	best := 0
	bestDist := -1.0
	for i, level := range levels {
		d := v - float64(level)
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// diffuseColor maps every canvas pixel to its nearest palette entry,
// diffusing the quantization error per channel.
func diffuseColor(canvas *image.RGBA, palette color.Palette) *image.Paletted {
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rf := make([]float64, w*h)
	gf := make([]float64, w*h)
	bf := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := canvas.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			rf[y*w+x] = float64(canvas.Pix[i])
			gf[y*w+x] = float64(canvas.Pix[i+1])
			bf[y*w+x] = float64(canvas.Pix[i+2])
		}
	}

	entries := make([][3]float64, len(palette))
	for i, c := range palette {
		r, g, b, _ := c.RGBA()
		entries[i] = [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
	}

	out := image.NewPaletted(image.Rect(0, 0, w, h), palette)

	diffuse := func(buf []float64, pos int, err float64, weight float64) {
		buf[pos] += err * weight / 16
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := y*w + x
			idx := nearestEntry(entries, rf[pos], gf[pos], bf[pos])
			out.SetColorIndex(x, y, uint8(idx))

			errR := rf[pos] - entries[idx][0]
			errG := gf[pos] - entries[idx][1]
			errB := bf[pos] - entries[idx][2]

			if x+1 < w {
				diffuse(rf, pos+1, errR, 7)
				diffuse(gf, pos+1, errG, 7)
				diffuse(bf, pos+1, errB, 7)
			}
			if y+1 < h {
				if x > 0 {
					diffuse(rf, pos+w-1, errR, 3)
					diffuse(gf, pos+w-1, errG, 3)
					diffuse(bf, pos+w-1, errB, 3)
				}
				diffuse(rf, pos+w, errR, 5)
				diffuse(gf, pos+w, errG, 5)
				diffuse(bf, pos+w, errB, 5)
				if x+1 < w {
					diffuse(rf, pos+w+1, errR, 1)
					diffuse(gf, pos+w+1, errG, 1)
					diffuse(bf, pos+w+1, errB, 1)
				}
			}
		}
	}
	return out
}

// nearestEntry returns the palette index with the smallest squared RGB
// distance to the (possibly error-shifted) pixel value. Ties resolve to the
// lower index.
func nearestEntry(entries [][3]float64, r, g, b float64) int {
	best := 0
	bestDist := -1.0
	for i, e := range entries {
		dr := r - e[0]
		dg := g - e[1]
		db := b - e[2]
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// colorBox is a median-cut bucket of pixels. Boxes partition the canvas's
// color distribution; each finished box contributes its mean color to the
// adaptive palette.
type colorBox struct {
	pixels [][3]uint8
}

// widestChannel returns the channel (0=R, 1=G, 2=B) with the largest value
// spread inside the box, and that spread.
func (b *colorBox) widestChannel() (int, int) {
	var min, max [3]int
	for ch := 0; ch < 3; ch++ {
		min[ch], max[ch] = 255, 0
	}
	for _, p := range b.pixels {
		for ch := 0; ch < 3; ch++ {
			v := int(p[ch])
			if v < min[ch] {
				min[ch] = v
			}
			if v > max[ch] {
				max[ch] = v
			}
		}
	}
	bestCh, bestSpread := 0, 0
	for ch := 0; ch < 3; ch++ {
		if spread := max[ch] - min[ch]; spread > bestSpread {
			bestCh, bestSpread = ch, spread
		}
	}
	return bestCh, bestSpread
}

// average returns the mean color of the box.
func (b *colorBox) average() color.RGBA {
	if len(b.pixels) == 0 {
		return color.RGBA{A: 255}
	}
	var sumR, sumG, sumB uint64
	for _, p := range b.pixels {
		sumR += uint64(p[0])
		sumG += uint64(p[1])
		sumB += uint64(p[2])
	}
	n := uint64(len(b.pixels))
	return color.RGBA{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
		A: 255,
	}
}

// adaptivePalette builds up to maxColors palette entries from the canvas's
// color distribution via median cut, then appends white as the final entry.
// The whole procedure is deterministic: boxes split on the widest channel at
// the median, with a total pixel ordering for tie-free sorting.
func adaptivePalette(canvas *image.RGBA, maxColors int) color.Palette {
	bounds := canvas.Bounds()
	pixels := make([][3]uint8, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := canvas.PixOffset(x, y)
			pixels = append(pixels, [3]uint8{canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2]})
		}
	}

	boxes := []*colorBox{{pixels: pixels}}
	for len(boxes) < maxColors {
		// Split the box with the widest channel spread; stop when every
		// box is a single color.
		splitIdx, splitSpread := -1, 0
		for i, box := range boxes {
			if _, spread := box.widestChannel(); spread > splitSpread {
				splitIdx, splitSpread = i, spread
			}
		}
		if splitIdx < 0 {
			break
		}

		box := boxes[splitIdx]
		ch, _ := box.widestChannel()
		sort.Slice(box.pixels, func(i, j int) bool {
			a, b := box.pixels[i], box.pixels[j]
			if a[ch] != b[ch] {
				return a[ch] < b[ch]
			}
			if a[0] != b[0] {
				return a[0] < b[0]
			}
			if a[1] != b[1] {
				return a[1] < b[1]
			}
			return a[2] < b[2]
		})

		mid := len(box.pixels) / 2
		boxes[splitIdx] = &colorBox{pixels: box.pixels[:mid]}
		boxes = append(boxes, &colorBox{pixels: box.pixels[mid:]})
	}

	palette := make(color.Palette, 0, len(boxes)+1)
	for _, box := range boxes {
		palette = append(palette, box.average())
	}
	palette = append(palette, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return palette
}
