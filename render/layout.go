package render

import (
	"strings"

	"golang.org/x/image/font"
)

// FallbackLine is rendered in place of empty or missing text.
const FallbackLine = "Unknown"

// LayoutBlock is an ordered sequence of wrapped lines together with the
// face whose metrics produced them. It is consumed once by the compositor.
type LayoutBlock struct {
	Lines []string
	Face  font.Face
}

// Wrap splits text into lines that fit within maxWidthPx when drawn with
// face, using greedy word accumulation: words are appended to the current
// line while the measured candidate still fits, otherwise the line is
// flushed and the word starts a new one. A single word wider than the
// limit is emitted as its own overflowing line; there is no hyphenation.
// Empty or whitespace-only input yields one FallbackLine.
//
// Measurement uses font.MeasureString on the same face the compositor draws
// with, so wrap decisions match rendered positions exactly.
func Wrap(text string, face font.Face, maxWidthPx int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{FallbackLine}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(face, candidate) <= maxWidthPx {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// WrapBlock wraps text and pairs the result with its face.
func WrapBlock(text string, face font.Face, maxWidthPx int) LayoutBlock {
	return LayoutBlock{Lines: Wrap(text, face, maxWidthPx), Face: face}
}

// measure returns the advance width of s in whole pixels.
func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
