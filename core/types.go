package core

import (
	"fmt"
	"strings"
	"time"
)

// SongMetadata is the immutable value handed to the rendering pipeline for
// each poll. Optional fields use explicit zero values: an empty ArtworkURL
// means no artwork is available, and a nil PlayTime means the upstream API
// did not report when the song started.
type SongMetadata struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	PlayTime   *time.Time
}

// ColorMode selects the target color depth of the rendered image.
// It is fixed at configuration time and never changes per render.
type ColorMode int

const (
	// ModeMonochrome produces 1-bit black/white output.
	ModeMonochrome ColorMode = iota

	// ModeGrayscale4 produces four discrete luminance levels (0, 85, 170, 255).
	ModeGrayscale4

	// ModePalette7 produces a 7-color adaptive palette plus white.
	ModePalette7
)

// ParseColorMode converts the configuration string to a ColorMode.
// Accepted values: "monochrome", "grayscale", "7color" (case-insensitive).
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monochrome":
		return ModeMonochrome, nil
	case "grayscale":
		return ModeGrayscale4, nil
	case "7color":
		return ModePalette7, nil
	default:
		return ModeMonochrome, fmt.Errorf("unknown color mode %q (valid: monochrome, grayscale, 7color)", s)
	}
}

// String returns the configuration spelling of the mode.
func (m ColorMode) String() string {
	switch m {
	case ModeMonochrome:
		return "monochrome"
	case ModeGrayscale4:
		return "grayscale"
	case ModePalette7:
		return "7color"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// Exit codes returned by the process.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)
