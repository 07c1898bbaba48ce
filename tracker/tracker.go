// Package tracker decides whether the currently playing song differs from
// the one rendered last. Song identity is a SHA-256 digest of the
// canonicalized (title, artist, album) triple; artwork and play time are
// deliberately excluded so cosmetic metadata changes never force a render.
package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"nowplaying/core"
)

// hashDelimiter joins the canonicalized fields before hashing. It is part
// of the persisted hash format and must never change.
const hashDelimiter = "|"

// ComputeHash returns the lowercase hex SHA-256 digest identifying a song.
//
// Each of title, artist and album is trimmed of surrounding whitespace and
// lowercased before joining, so casing and padding differences produce the
// same digest. This is a pure function with deterministic output.
func ComputeHash(meta core.SongMetadata) string {
	canonical := strings.Join([]string{
		canonicalize(meta.Title),
		canonicalize(meta.Artist),
		canonicalize(meta.Album),
	}, hashDelimiter)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func canonicalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tracker persists the single-slot render hash between invocations.
// It is the only state the pipeline keeps across renders.
type Tracker struct {
	path string
}

// New creates a Tracker persisting to the given file path.
func New(path string) *Tracker {
	return &Tracker{path: path}
}

// Path returns the hash file location.
func (t *Tracker) Path() string { return t.path }

// Read returns the previously persisted hash. A missing or unreadable file
// yields ("", false), which callers treat as "no previous hash".
func (t *Tracker) Read() (string, bool) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return "", false
	}
	hash := strings.TrimSpace(string(data))
	if hash == "" {
		return "", false
	}
	return hash, true
}

// Save atomically persists the hash: it writes a temp file in the same
// directory and renames it over the slot, so a crash mid-write can never
// leave a truncated hash behind.
func (t *Tracker) Save(hash string) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("tracker: failed to create hash directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf("temp_%s.txt", uuid.New().String()))
	if err := os.WriteFile(tmp, []byte(hash), 0644); err != nil {
		return fmt.Errorf("tracker: failed to write hash file: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tracker: failed to publish hash file: %w", err)
	}
	return nil
}

// HasChanged reports whether the song differs from the persisted hash.
// No previous hash (missing or unreadable file) counts as changed.
func (t *Tracker) HasChanged(meta core.SongMetadata) bool {
	previous, ok := t.Read()
	if !ok {
		return true
	}
	return ComputeHash(meta) != previous
}
