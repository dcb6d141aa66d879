package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyroomhq/study-room-reservation/internal/model"
)

type memSettingStore struct {
	mu   sync.Mutex
	rows map[string]string
	err  error
}

func (s *memSettingStore) FindAll(ctx context.Context) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Setting, 0, len(s.rows))
	for k, v := range s.rows {
		out = append(out, model.Setting{KeyName: k, Value: v})
	}
	return out, nil
}

func (s *memSettingStore) Upsert(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows[key] = value
	return nil
}

func TestSettingsCacheDefaultsBeforeRefresh(t *testing.T) {
	store := &memSettingStore{rows: map[string]string{model.SettingOpeningHour: "8"}}
	cache := NewSettingsCache(store, zerolog.Nop())

	// Unrefreshed cache serves defaults only.
	assert.Equal(t, 9, cache.IntValue(model.SettingOpeningHour, 9))
	assert.Equal(t, "fallback", cache.Value("missing", "fallback"))
}

func TestSettingsCacheRefreshMakesValuesVisible(t *testing.T) {
	store := &memSettingStore{rows: map[string]string{
		model.SettingOpeningHour: "8",
		model.SettingClosingHour: "22",
	}}
	cache := NewSettingsCache(store, zerolog.Nop())
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Equal(t, 8, cache.IntValue(model.SettingOpeningHour, 9))
	assert.Equal(t, 22, cache.IntValue(model.SettingClosingHour, 21))

	// A later write becomes visible only after the next refresh.
	require.NoError(t, cache.Update(context.Background(), model.SettingOpeningHour, "10"))
	assert.Equal(t, 8, cache.IntValue(model.SettingOpeningHour, 9))
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, 10, cache.IntValue(model.SettingOpeningHour, 9))
}

func TestSettingsCacheKeepsSnapshotOnRefreshError(t *testing.T) {
	store := &memSettingStore{rows: map[string]string{model.SettingOpeningHour: "8"}}
	cache := NewSettingsCache(store, zerolog.Nop())
	require.NoError(t, cache.Refresh(context.Background()))

	store.mu.Lock()
	store.err = errors.New("db down")
	store.mu.Unlock()

	require.Error(t, cache.Refresh(context.Background()))
	assert.Equal(t, 8, cache.IntValue(model.SettingOpeningHour, 9))
}

func TestSettingsCacheUnparsableIntFallsBack(t *testing.T) {
	store := &memSettingStore{rows: map[string]string{model.SettingDailyLimitHours: "lots"}}
	cache := NewSettingsCache(store, zerolog.Nop())
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Equal(t, 3, cache.IntValue(model.SettingDailyLimitHours, 3))
	assert.Equal(t, "lots", cache.Value(model.SettingDailyLimitHours, ""))
}

func TestSettingsCacheConcurrentReadAndRefresh(t *testing.T) {
	store := &memSettingStore{rows: map[string]string{model.SettingOpeningHour: "8"}}
	cache := NewSettingsCache(store, zerolog.Nop())
	require.NoError(t, cache.Refresh(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := cache.IntValue(model.SettingOpeningHour, 9)
				// Readers may see the old or new value, never junk.
				assert.Contains(t, []int{8, 9}, v)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = cache.Refresh(context.Background())
			}
		}()
	}
	wg.Wait()
}
