package render

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadFontsEmbedded(t *testing.T) {
	fonts, fellBack, err := LoadFonts("", 16, 14, 12)
	if err != nil {
		t.Fatalf("LoadFonts() error: %v", err)
	}
	if fellBack {
		t.Error("an empty font path is the default, not a fallback")
	}
	if fonts.Title == nil || fonts.Artist == nil || fonts.Album == nil {
		t.Fatal("all three faces must be populated")
	}

	// Larger sizes give taller faces.
	if fonts.Title.Metrics().Height <= fonts.Album.Metrics().Height {
		t.Error("title face (16pt) must be taller than album face (12pt)")
	}
}

func TestLoadFontsUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}

	fonts, fellBack, err := LoadFonts(path, 16, 14, 12)
	if err != nil {
		t.Fatalf("LoadFonts() error: %v", err)
	}
	if fellBack {
		t.Error("a valid TTF file must not trigger the fallback")
	}
	if fonts.Title == nil {
		t.Fatal("faces missing")
	}
}

func TestLoadFontsFallsBackOnBadFile(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.ttf")
			},
		},
		{
			name: "unparseable file",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "garbage.ttf")
				if err := os.WriteFile(p, []byte("not a font"), 0644); err != nil {
					t.Fatal(err)
				}
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fonts, fellBack, err := LoadFonts(tt.path(t), 16, 14, 12)
			if err != nil {
				t.Fatalf("LoadFonts() error: %v", err)
			}
			if !fellBack {
				t.Error("unusable font file must report the fallback")
			}
			if fonts == nil {
				t.Fatal("fallback must still yield a usable FontSet")
			}
		})
	}
}
