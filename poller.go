package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nowplaying/core"
	"nowplaying/logging"
	"nowplaying/render"
)

// MetadataSource yields the currently playing song, or nil when nothing
// is playing. radio.Client is the production implementation.
type MetadataSource interface {
	CurrentSong(ctx context.Context) (*core.SongMetadata, error)
}

// RenderSink consumes a song and updates the published artifacts when it
// differs from the last rendered one. render.Renderer is the production
// implementation.
type RenderSink interface {
	RenderIfChanged(ctx context.Context, meta core.SongMetadata) (render.RenderResult, error)
}

// Poller drives the fetch/render loop. A failed poll logs and waits for
// the next tick; the loop only stops when the context is canceled.
type Poller struct {
	source   MetadataSource
	sink     RenderSink
	interval time.Duration
	log      *logging.Logger
}

// NewPoller creates a poller over the given source and sink.
func NewPoller(source MetadataSource, sink RenderSink, interval time.Duration, log *logging.Logger) *Poller {
	return &Poller{
		source:   source,
		sink:     sink,
		interval: interval,
		log:      log,
	}
}

// Run polls immediately and then on every interval tick until ctx is
// canceled. It always returns nil apart from context cancellation being
// reported as a clean stop.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poll loop started", zap.Duration("interval", p.interval))

	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poll loop stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce performs a single fetch and conditional render. Errors are
// logged, never propagated; the loop must outlive transient failures of
// the radio API or the filesystem.
func (p *Poller) pollOnce(ctx context.Context) {
	meta, err := p.source.CurrentSong(ctx)
	if err != nil {
		p.log.Error("failed to fetch current song", zap.Error(err))
		return
	}
	if meta == nil {
		p.log.Debug("nothing playing")
		return
	}

	if _, err := p.sink.RenderIfChanged(ctx, *meta); err != nil {
		p.log.Error("render failed", zap.Error(err))
	}
}
