package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/airline-reservation/internal/search"
)

func TestCachedGraphExpiresAfterTTL(t *testing.T) {
	built := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	h := &SearchHandler{GraphTTL: time.Minute}
	h.graph = &search.Graph{}
	h.graphKey = "2026-09-10|2026-09-12|0|0"
	h.graphBuilt = built

	g, ok := h.cachedGraphLocked(h.graphKey, built.Add(30*time.Second))
	assert.True(t, ok)
	assert.Same(t, h.graph, g)

	_, ok = h.cachedGraphLocked(h.graphKey, built.Add(time.Minute))
	assert.False(t, ok, "a build older than the TTL must be rebuilt")

	_, ok = h.cachedGraphLocked("2026-09-11|2026-09-13|0|0", built.Add(time.Second))
	assert.False(t, ok, "a different window never reuses the cache")
}

func TestCachedGraphWithoutTTLNeverExpires(t *testing.T) {
	h := &SearchHandler{}
	h.graph = &search.Graph{}
	h.graphKey = "k"
	h.graphBuilt = time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	_, ok := h.cachedGraphLocked("k", h.graphBuilt.Add(24*time.Hour))
	assert.True(t, ok)
}
