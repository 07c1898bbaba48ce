package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nowplaying/core"
	"nowplaying/logging"
	"nowplaying/tracker"
)

// RenderResult reports what a RenderIfChanged call did.
type RenderResult struct {
	// Rendered is false when the change gate decided no new image was
	// needed; the previous artifacts remain published.
	Rendered bool

	// Hash is the RenderHash computed for the metadata, whether or not a
	// render happened.
	Hash string

	// ImagePath is the published image artifact location.
	ImagePath string

	// ArtworkFallback is set when the placeholder was substituted.
	ArtworkFallback FallbackReason
}

// Renderer orchestrates the pipeline: change detection gates everything;
// on a change it drives artwork fetch, composition, quantization and the
// atomic artifact writes, then persists the new hash.
//
// Renders are synchronous and the caller serializes invocations; the only
// state between calls lives in the hash file and the published image.
type Renderer struct {
	cfg        *core.Config
	log        *logging.Logger
	artwork    *ArtworkProvider
	compositor *Compositor
	tracker    *tracker.Tracker
}

// New wires up a Renderer from the immutable configuration. A missing or
// unusable FONT_PATH downgrades to the embedded fonts with a warning; it is
// never an error.
func New(cfg *core.Config, log *logging.Logger) (*Renderer, error) {
	fonts, fellBack, err := LoadFonts(cfg.FontPath, cfg.FontSizeTitle, cfg.FontSizeArtist, cfg.FontSizeAlbum)
	if err != nil {
		return nil, fmt.Errorf("render: failed to load fonts: %w", err)
	}
	if fellBack {
		log.Warn("font file unusable, falling back to embedded fonts",
			zap.String("font_path", cfg.FontPath))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("render: failed to create output directory: %w", err)
	}

	return &Renderer{
		cfg:        cfg,
		log:        log,
		artwork:    NewArtworkProvider(cfg.ArtworkTimeout, cfg.ArtworkSize, fonts.Title),
		compositor: NewCompositor(cfg, fonts),
		tracker:    tracker.New(cfg.HashPath()),
	}, nil
}

// RenderIfChanged renders the metadata unless its hash matches the
// persisted one. An unchanged song is a success with no file writes.
//
// Failure can never corrupt published state: the image is written to a
// temporary file and renamed into place, and the hash is persisted only
// after the image write fully succeeded. The method never panics across
// its boundary.
func (r *Renderer) RenderIfChanged(ctx context.Context, meta core.SongMetadata) (result RenderResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render: pipeline panic: %v", p)
		}
	}()

	result = RenderResult{
		Hash:      tracker.ComputeHash(meta),
		ImagePath: r.cfg.ImagePath(),
	}

	if !r.tracker.HasChanged(meta) {
		r.log.Debug("song unchanged, skipping render",
			zap.String("hash", result.Hash))
		return result, nil
	}

	artwork, reason := r.artwork.Fetch(ctx, meta.ArtworkURL)
	result.ArtworkFallback = reason
	if reason != FallbackNone {
		r.log.Warn("using placeholder artwork",
			zap.String("reason", string(reason)),
			zap.String("artwork_url", meta.ArtworkURL))
	}

	canvas := r.compositor.Compose(meta, artwork)

	quantized, err := Quantize(canvas, r.cfg.ColorMode)
	if err != nil {
		return result, fmt.Errorf("render: quantization failed: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, quantized); err != nil {
		return result, fmt.Errorf("render: PNG encoding failed: %w", err)
	}

	if err := writeFileAtomic(result.ImagePath, buf.Bytes()); err != nil {
		return result, fmt.Errorf("render: failed to publish image: %w", err)
	}

	// Hash last: if this fails the next poll re-renders, which is safe;
	// the reverse order could pin a stale image forever.
	if err := r.tracker.Save(result.Hash); err != nil {
		return result, fmt.Errorf("render: failed to persist hash: %w", err)
	}

	result.Rendered = true
	r.log.Info("render complete",
		zap.String("title", meta.Title),
		zap.String("artist", meta.Artist),
		zap.String("hash", result.Hash),
		zap.String("image", result.ImagePath),
		zap.String("color_mode", r.cfg.ColorMode.String()))
	return result, nil
}

// CurrentHash returns the persisted RenderHash, or ok=false when no render
// has been published yet.
func (r *Renderer) CurrentHash() (hash string, ok bool) {
	return r.tracker.Read()
}

// writeFileAtomic writes data to a uniquely named temp file in the target
// directory and renames it over path. Consumers polling the file never see
// a partial write; on failure the temp file is removed and the previously
// published file is untouched.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf("temp_%s%s", uuid.New().String(), filepath.Ext(path)))

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %q: %w", path, err)
	}
	return nil
}
