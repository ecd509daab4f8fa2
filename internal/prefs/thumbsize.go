package prefs

import (
	"log/slog"
	"strconv"
	"sync"
)

// ThumbSizeKey is the preference key holding the step index.
const ThumbSizeKey = "thumbSize"

// DefaultStep is the index used when nothing valid is stored.
const DefaultStep = 2

// Steps are the selectable thumbnail widths in pixels.
var Steps = []int{64, 96, 120, 144, 168, 192, 224, 256, 320, 360, 400}

// ThumbnailSize is the persisted thumbnail width. Store failures never
// surface: reads fall back to DefaultStep and writes are only logged.
type ThumbnailSize struct {
	mu    sync.Mutex
	kv    KV
	index int
}

// Load reads the stored step from kv.
func Load(kv KV) *ThumbnailSize {
	t := &ThumbnailSize{kv: kv, index: DefaultStep}
	if kv == nil {
		return t
	}

	raw, ok, err := kv.Get(ThumbSizeKey)
	if err != nil {
		slog.Warn("Failed to read thumbnail size, using default", "error", err)
		return t
	}
	if !ok {
		return t
	}

	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= len(Steps) {
		slog.Debug("Ignoring invalid stored thumbnail size", "value", raw)
		return t
	}
	t.index = i
	return t
}

// Index returns the current step index.
func (t *ThumbnailSize) Index() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

// Size returns the current width in pixels.
func (t *ThumbnailSize) Size() int {
	return Steps[t.Index()]
}

// Increase moves one step up, stopping at the largest size.
func (t *ThumbnailSize) Increase() int {
	return t.step(1)
}

// Decrease moves one step down, stopping at the smallest size.
func (t *ThumbnailSize) Decrease() int {
	return t.step(-1)
}

// Set clamps i to the valid range, persists it and returns the new size.
func (t *ThumbnailSize) Set(i int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setLocked(i)
}

func (t *ThumbnailSize) step(delta int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setLocked(t.index + delta)
}

// setLocked must be called with t.mu held so the stored value always
// matches the in-memory index.
func (t *ThumbnailSize) setLocked(i int) int {
	i = max(0, min(i, len(Steps)-1))
	t.index = i

	if t.kv != nil {
		if err := t.kv.Set(ThumbSizeKey, strconv.Itoa(i)); err != nil {
			slog.Warn("Failed to store thumbnail size", "error", err)
		}
	}
	return Steps[i]
}
