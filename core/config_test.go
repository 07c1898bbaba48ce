package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearConfigEnv unsets every configuration variable so each test starts
// from the documented defaults.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STATION", "POLL_INTERVAL", "PREFERRED_ARTWORK_HEIGHT", "DISPLAY_TIMEZONE",
		"SERVER_HOST", "SERVER_PORT", "OUTPUT_DIR", "IMAGE_FILENAME", "HASH_FILENAME",
		"IMAGE_WIDTH", "IMAGE_HEIGHT", "COLOR_MODE", "ARTWORK_SIZE", "TEXT_MARGIN",
		"LINE_SPACING", "FONT_PATH", "FONT_SIZE_TITLE", "FONT_SIZE_ARTIST",
		"FONT_SIZE_ALBUM", "ARTWORK_TIMEOUT", "DISPLAY_TIMEZONE", "LOG_FILE",
		"DEV_MODE", "LAYOUT_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Station != "doublej" {
		t.Errorf("Station = %q, want doublej", cfg.Station)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.Width != 250 || cfg.Height != 122 {
		t.Errorf("canvas = %dx%d, want 250x122", cfg.Width, cfg.Height)
	}
	if cfg.ColorMode != ModeMonochrome {
		t.Errorf("ColorMode = %v, want monochrome", cfg.ColorMode)
	}
	if cfg.ArtworkSize != 122 {
		t.Errorf("ArtworkSize = %d, want 122", cfg.ArtworkSize)
	}
	if cfg.ServerHost != "0.0.0.0" || cfg.ServerPort != 8080 {
		t.Errorf("server = %s:%d, want 0.0.0.0:8080", cfg.ServerHost, cfg.ServerPort)
	}
	if cfg.ImagePath() != filepath.Join("output", "current_song.png") {
		t.Errorf("ImagePath() = %q", cfg.ImagePath())
	}
	if cfg.HashPath() != filepath.Join("output", "current_song_hash.txt") {
		t.Errorf("HashPath() = %q", cfg.HashPath())
	}
	if cfg.ArtworkTimeout != 10*time.Second {
		t.Errorf("ArtworkTimeout = %v, want 10s", cfg.ArtworkTimeout)
	}
	if cfg.DevMode {
		t.Error("DevMode must default to false")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STATION", "triplej")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("COLOR_MODE", "grayscale")
	t.Setenv("IMAGE_WIDTH", "400")
	t.Setenv("IMAGE_HEIGHT", "300")
	t.Setenv("ARTWORK_SIZE", "200")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEV_MODE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Station != "triplej" {
		t.Errorf("Station = %q, want triplej", cfg.Station)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.PollInterval)
	}
	if cfg.ColorMode != ModeGrayscale4 {
		t.Errorf("ColorMode = %v, want grayscale", cfg.ColorMode)
	}
	if cfg.Width != 400 || cfg.Height != 300 {
		t.Errorf("canvas = %dx%d, want 400x300", cfg.Width, cfg.Height)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if !cfg.DevMode {
		t.Error("DEV_MODE=true must enable dev mode")
	}
}

func TestLoadConfigInvalidColorMode(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("COLOR_MODE", "sepia")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() with invalid COLOR_MODE must fail")
	}
	cfgErr, ok := IsConfigError(err)
	if !ok {
		t.Fatalf("error is %T, want *ConfigError", err)
	}
	if cfgErr.Code != ErrCodeInvalidColorMode {
		t.Errorf("error code = %s, want %s", cfgErr.Code, ErrCodeInvalidColorMode)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantCode string
	}{
		{
			name:     "zero width",
			env:      map[string]string{"IMAGE_WIDTH": "0"},
			wantCode: ErrCodeInvalidDimensions,
		},
		{
			name:     "artwork wider than canvas",
			env:      map[string]string{"ARTWORK_SIZE": "300"},
			wantCode: ErrCodeInvalidDimensions,
		},
		{
			name:     "no text column left",
			env:      map[string]string{"ARTWORK_SIZE": "240", "TEXT_MARGIN": "10"},
			wantCode: ErrCodeInvalidDimensions,
		},
		{
			name:     "port out of range",
			env:      map[string]string{"SERVER_PORT": "70000"},
			wantCode: ErrCodeInvalidPort,
		},
		{
			name:     "non-positive poll interval",
			env:      map[string]string{"POLL_INTERVAL": "0"},
			wantCode: ErrCodeInvalidInterval,
		},
		{
			name:     "zero font size",
			env:      map[string]string{"FONT_SIZE_TITLE": "0"},
			wantCode: ErrCodeInvalidFontSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("LoadConfig() must fail")
			}
			cfgErr, ok := IsConfigError(err)
			if !ok {
				t.Fatalf("error is %T, want *ConfigError", err)
			}
			if cfgErr.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", cfgErr.Code, tt.wantCode)
			}
			if cfgErr.Action == "" {
				t.Error("config errors must carry an actionable instruction")
			}
		})
	}
}

func TestLoadConfigLayoutFileOverlay(t *testing.T) {
	clearConfigEnv(t)

	layout := filepath.Join(t.TempDir(), "layout.yaml")
	content := `width: 400
height: 300
color_mode: 7color
artwork_size: 150
font_size_title: 20
`
	if err := os.WriteFile(layout, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAYOUT_FILE", layout)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Width != 400 || cfg.Height != 300 {
		t.Errorf("canvas = %dx%d, want overlay 400x300", cfg.Width, cfg.Height)
	}
	if cfg.ColorMode != ModePalette7 {
		t.Errorf("ColorMode = %v, want 7color from overlay", cfg.ColorMode)
	}
	if cfg.ArtworkSize != 150 {
		t.Errorf("ArtworkSize = %d, want 150", cfg.ArtworkSize)
	}
	if cfg.FontSizeTitle != 20 {
		t.Errorf("FontSizeTitle = %d, want 20", cfg.FontSizeTitle)
	}
	// Values the overlay does not set keep their env defaults.
	if cfg.TextMargin != 10 {
		t.Errorf("TextMargin = %d, want default 10", cfg.TextMargin)
	}
	if cfg.FontSizeArtist != 14 {
		t.Errorf("FontSizeArtist = %d, want default 14", cfg.FontSizeArtist)
	}
}

func TestLoadConfigLayoutFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("LAYOUT_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := LoadConfig()
		cfgErr, ok := IsConfigError(err)
		if !ok || cfgErr.Code != ErrCodeInvalidLayoutFile {
			t.Errorf("err = %v, want %s config error", err, ErrCodeInvalidLayoutFile)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearConfigEnv(t)
		layout := filepath.Join(t.TempDir(), "layout.yaml")
		if err := os.WriteFile(layout, []byte("width: [not a number"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("LAYOUT_FILE", layout)

		_, err := LoadConfig()
		cfgErr, ok := IsConfigError(err)
		if !ok || cfgErr.Code != ErrCodeInvalidLayoutFile {
			t.Errorf("err = %v, want %s config error", err, ErrCodeInvalidLayoutFile)
		}
	})
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"monochrome", ModeMonochrome, false},
		{"grayscale", ModeGrayscale4, false},
		{"7color", ModePalette7, false},
		{"MONOCHROME", ModeMonochrome, false},
		{" grayscale ", ModeGrayscale4, false},
		{"sepia", ModeMonochrome, true},
		{"", ModeMonochrome, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStationLabel(t *testing.T) {
	tests := []struct {
		station string
		want    string
	}{
		{"doublej", "DoubleJ"},
		{"DoubleJ", "DoubleJ"},
		{"triplej", "triple j"},
		{"classic", "ABC Classic"},
		{"jazz", "ABC Jazz"},
		{"somethingelse", "somethingelse"},
	}
	for _, tt := range tests {
		cfg := &Config{Station: tt.station}
		if got := cfg.StationLabel(); got != tt.want {
			t.Errorf("StationLabel(%q) = %q, want %q", tt.station, got, tt.want)
		}
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := parseBoolEnv("TEST_BOOL", false); got != tt.want {
				t.Errorf("parseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
