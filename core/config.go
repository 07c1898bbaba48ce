package core

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values. It is immutable after LoadConfig
// returns; components receive it at construction and never mutate it.
type Config struct {
	// Radio station settings
	Station                string
	PollInterval           time.Duration
	PreferredArtworkHeight int
	DisplayTimezone        string

	// Server settings
	ServerHost string
	ServerPort int

	// Output artifacts
	OutputDir     string
	ImageFilename string
	HashFilename  string

	// Canvas geometry
	Width       int
	Height      int
	ColorMode   ColorMode
	ArtworkSize int
	TextMargin  int
	LineSpacing int

	// Typography (FontPath empty means the embedded default fonts)
	FontPath       string
	FontSizeTitle  int
	FontSizeArtist int
	FontSizeAlbum  int

	// Artwork fetch
	ArtworkTimeout time.Duration

	// Logging
	LogFile string
	DevMode bool
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to parse integer environment variable with default value
func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Helper function to parse boolean environment variable with default value.
// Accepts case-insensitive: "true", "1", "yes", "on" as true values.
func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// layoutFile is the optional YAML overlay for layout and typography values.
// Pointer fields distinguish "absent" from "zero", so the file only
// overrides what it actually sets.
type layoutFile struct {
	Width          *int    `yaml:"width"`
	Height         *int    `yaml:"height"`
	ColorMode      *string `yaml:"color_mode"`
	ArtworkSize    *int    `yaml:"artwork_size"`
	TextMargin     *int    `yaml:"text_margin"`
	LineSpacing    *int    `yaml:"line_spacing"`
	FontPath       *string `yaml:"font_path"`
	FontSizeTitle  *int    `yaml:"font_size_title"`
	FontSizeArtist *int    `yaml:"font_size_artist"`
	FontSizeAlbum  *int    `yaml:"font_size_album"`
}

// LoadConfig loads configuration from environment variables with the same
// defaults the original deployment used, then applies the optional
// LAYOUT_FILE YAML overlay, then validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Station:                getEnvOrDefault("STATION", "doublej"),
		PollInterval:           time.Duration(parseIntEnv("POLL_INTERVAL", 30)) * time.Second,
		PreferredArtworkHeight: parseIntEnv("PREFERRED_ARTWORK_HEIGHT", 300),
		DisplayTimezone:        getEnvOrDefault("DISPLAY_TIMEZONE", "Australia/Sydney"),

		ServerHost: getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort: parseIntEnv("SERVER_PORT", 8080),

		OutputDir:     getEnvOrDefault("OUTPUT_DIR", "output"),
		ImageFilename: getEnvOrDefault("IMAGE_FILENAME", "current_song.png"),
		HashFilename:  getEnvOrDefault("HASH_FILENAME", "current_song_hash.txt"),

		Width:       parseIntEnv("IMAGE_WIDTH", 250),
		Height:      parseIntEnv("IMAGE_HEIGHT", 122),
		ArtworkSize: parseIntEnv("ARTWORK_SIZE", 122),
		TextMargin:  parseIntEnv("TEXT_MARGIN", 10),
		LineSpacing: parseIntEnv("LINE_SPACING", 5),

		FontPath:       os.Getenv("FONT_PATH"),
		FontSizeTitle:  parseIntEnv("FONT_SIZE_TITLE", 16),
		FontSizeArtist: parseIntEnv("FONT_SIZE_ARTIST", 14),
		FontSizeAlbum:  parseIntEnv("FONT_SIZE_ALBUM", 12),

		ArtworkTimeout: time.Duration(parseIntEnv("ARTWORK_TIMEOUT", 10)) * time.Second,

		LogFile: getEnvOrDefault("LOG_FILE", "nowplaying.log"),
		DevMode: parseBoolEnv("DEV_MODE", false),
	}

	colorModeStr := getEnvOrDefault("COLOR_MODE", "monochrome")

	if layoutPath := os.Getenv("LAYOUT_FILE"); layoutPath != "" {
		overlayMode, err := cfg.applyLayoutFile(layoutPath)
		if err != nil {
			return nil, err
		}
		if overlayMode != "" {
			colorModeStr = overlayMode
		}
	}

	mode, err := ParseColorMode(colorModeStr)
	if err != nil {
		return nil, ErrInvalidColorMode(colorModeStr)
	}
	cfg.ColorMode = mode

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLayoutFile merges the YAML overlay into the config. It returns the
// color mode string from the file (empty when unset) so the caller can parse
// and validate it alongside the env value.
func (c *Config) applyLayoutFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrInvalidLayoutFile(path, err)
	}

	var overlay layoutFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return "", ErrInvalidLayoutFile(path, err)
	}

	if overlay.Width != nil {
		c.Width = *overlay.Width
	}
	if overlay.Height != nil {
		c.Height = *overlay.Height
	}
	if overlay.ArtworkSize != nil {
		c.ArtworkSize = *overlay.ArtworkSize
	}
	if overlay.TextMargin != nil {
		c.TextMargin = *overlay.TextMargin
	}
	if overlay.LineSpacing != nil {
		c.LineSpacing = *overlay.LineSpacing
	}
	if overlay.FontPath != nil {
		c.FontPath = *overlay.FontPath
	}
	if overlay.FontSizeTitle != nil {
		c.FontSizeTitle = *overlay.FontSizeTitle
	}
	if overlay.FontSizeArtist != nil {
		c.FontSizeArtist = *overlay.FontSizeArtist
	}
	if overlay.FontSizeAlbum != nil {
		c.FontSizeAlbum = *overlay.FontSizeAlbum
	}

	if overlay.ColorMode != nil {
		return *overlay.ColorMode, nil
	}
	return "", nil
}

// Validate checks the loaded configuration and returns an actionable
// ConfigError for the first problem found.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidDimensions(fmt.Sprintf("width=%d height=%d", c.Width, c.Height))
	}
	if c.ArtworkSize <= 0 || c.ArtworkSize > c.Width {
		return ErrInvalidDimensions(fmt.Sprintf("artwork size %d must be between 1 and the image width %d", c.ArtworkSize, c.Width))
	}
	if c.TextMargin < 0 || c.LineSpacing < 0 {
		return ErrInvalidDimensions(fmt.Sprintf("text margin %d and line spacing %d must not be negative", c.TextMargin, c.LineSpacing))
	}
	if c.ArtworkSize+2*c.TextMargin >= c.Width {
		return ErrInvalidDimensions(fmt.Sprintf("no text column remains: artwork size %d plus margins exceeds width %d", c.ArtworkSize, c.Width))
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidPort(c.ServerPort)
	}
	if c.PollInterval <= 0 {
		return ErrInvalidInterval(int(c.PollInterval / time.Second))
	}
	for name, size := range map[string]int{
		"FONT_SIZE_TITLE":  c.FontSizeTitle,
		"FONT_SIZE_ARTIST": c.FontSizeArtist,
		"FONT_SIZE_ALBUM":  c.FontSizeAlbum,
	} {
		if size <= 0 {
			return ErrInvalidFontSize(name, size)
		}
	}
	return nil
}

// ImagePath returns the full path of the published image artifact.
func (c *Config) ImagePath() string {
	return filepath.Join(c.OutputDir, c.ImageFilename)
}

// HashPath returns the full path of the persisted render-hash artifact.
func (c *Config) HashPath() string {
	return filepath.Join(c.OutputDir, c.HashFilename)
}

// StationLabel returns the human-readable name drawn in the play-time
// banner for the configured station.
func (c *Config) StationLabel() string {
	switch strings.ToLower(c.Station) {
	case "doublej":
		return "DoubleJ"
	case "triplej":
		return "triple j"
	case "classic":
		return "ABC Classic"
	case "jazz":
		return "ABC Jazz"
	default:
		return c.Station
	}
}

// GetHTTPClient returns an HTTP client with the given timeout. All outbound
// requests (radio API, artwork) go through clients built here so timeout
// policy stays in one place.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
