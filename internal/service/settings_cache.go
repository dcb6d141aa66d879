package service

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// SettingsCache serves policy parameters from an immutable in-memory
// snapshot of the settings table. The snapshot is replaced wholesale by
// Refresh and never mutated in place, so reads are lock-free and can
// never observe a partially-updated map. Missing keys and unparsable
// values fall back to the caller-supplied default.
type SettingsCache struct {
	store    domain.SettingStore
	log      zerolog.Logger
	snapshot atomic.Pointer[map[string]string]
}

// NewSettingsCache returns a cache backed by the given store. The cache
// starts empty; call Refresh at startup to populate it.
func NewSettingsCache(store domain.SettingStore, log zerolog.Logger) *SettingsCache {
	c := &SettingsCache{store: store, log: log}
	empty := map[string]string{}
	c.snapshot.Store(&empty)
	return c
}

// Refresh reloads every setting row and swaps the snapshot in atomically.
// Readers concurrent with a refresh see either the old or the new map,
// never a mix. On error the previous snapshot stays in place.
func (c *SettingsCache) Refresh(ctx context.Context) error {
	settings, err := c.store.FindAll(ctx)
	if err != nil {
		return err
	}
	next := make(map[string]string, len(settings))
	for _, s := range settings {
		next[s.KeyName] = s.Value
	}
	c.snapshot.Store(&next)
	c.log.Info().Int("count", len(next)).Msg("settings cache refreshed")
	return nil
}

// Value returns the raw string for key, or def when the key is absent.
func (c *SettingsCache) Value(key, def string) string {
	if v, ok := (*c.snapshot.Load())[key]; ok {
		return v
	}
	return def
}

// IntValue returns the integer value for key. A missing key or a value
// that fails to parse yields the default; parse failures are logged at
// warn level and never surface as errors.
func (c *SettingsCache) IntValue(key string, def int) int {
	raw := c.Value(key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.log.Warn().Str("key", key).Str("value", raw).Int("default", def).
			Msg("setting is not an integer, using default")
		return def
	}
	return n
}

// All returns the rows currently persisted, bypassing the snapshot.
// Intended for the admin settings view.
func (c *SettingsCache) All(ctx context.Context) ([]model.Setting, error) {
	return c.store.FindAll(ctx)
}

// Update persists one key/value pair. The new value becomes visible to
// readers only after the next Refresh.
func (c *SettingsCache) Update(ctx context.Context, key, value string) error {
	return c.store.Upsert(ctx, key, value)
}
