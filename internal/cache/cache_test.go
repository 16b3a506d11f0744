// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontomap/pkg/types"
)

func memoryOnlyConfig(ttl time.Duration) types.CacheConfig {
	return types.CacheConfig{Enabled: true, TTL: ttl}
}

func persistentConfig(t *testing.T, ttl time.Duration, maxMB int) types.CacheConfig {
	t.Helper()
	return types.CacheConfig{
		Enabled:    true,
		TTL:        ttl,
		Dir:        t.TempDir(),
		MaxSizeMB:  maxMB,
		Persistent: true,
	}
}

func sampleRecords() []types.ResultRecord {
	return []types.ResultRecord{
		{URI: "http://purl.obolibrary.org/obo/MONDO_0100233", Label: "long COVID-19",
			Ontology: "MONDO", Source: types.SourceBioPortal},
		{URI: "http://purl.obolibrary.org/obo/HP_0012378", Label: "Fatigue",
			Ontology: "HP", Source: types.SourceBioPortal},
	}
}

func TestKeyNormalization(t *testing.T) {
	base := Key("long covid", "MONDO,HP", "bioportal")

	tests := []struct {
		name       string
		query      string
		ontologies string
		service    string
		wantEqual  bool
	}{
		{"identical", "long covid", "MONDO,HP", "bioportal", true},
		{"case varies", "Long COVID", "mondo,hp", "BioPortal", true},
		{"whitespace varies", "  long covid ", " MONDO,HP ", "bioportal", true},
		{"different query", "fatigue", "MONDO,HP", "bioportal", false},
		{"different ontologies", "long covid", "MONDO", "bioportal", false},
		{"different service", "long covid", "MONDO,HP", "ols", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(tt.query, tt.ontologies, tt.service)
			if (got == base) != tt.wantEqual {
				t.Errorf("Key(%q, %q, %q) equality = %v, want %v",
					tt.query, tt.ontologies, tt.service, got == base, tt.wantEqual)
			}
		})
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	s := NewStore(memoryOnlyConfig(0), nil)
	records := sampleRecords()

	s.Set("long covid", "MONDO,HP", "bioportal", records)

	// Case and whitespace variations reach the same logical key.
	got, ok := s.Get("  Long COVID ", "mondo,hp", "BIOPORTAL")
	require.True(t, ok)
	assert.Equal(t, records, got)

	stats := s.GetStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Sets)
}

func TestGetMiss(t *testing.T) {
	s := NewStore(memoryOnlyConfig(0), nil)
	_, ok := s.Get("nothing", "", "ols")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), s.GetStats().Misses)
}

func TestDisabledCacheNeverStores(t *testing.T) {
	s := NewStore(types.CacheConfig{Enabled: false}, nil)
	assert.False(t, s.Set("q", "MONDO", "ols", sampleRecords()))
	_, ok := s.Get("q", "MONDO", "ols")
	assert.False(t, ok)
	assert.Equal(t, 0, s.GetStats().MemoryEntries)
}

func TestTTLExpiry(t *testing.T) {
	s := NewStore(memoryOnlyConfig(time.Hour), nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Set("fatigue", "HP", "ols", sampleRecords())

	// Just inside TTL.
	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, ok := s.Get("fatigue", "HP", "ols")
	assert.True(t, ok)

	// Past TTL: lazily expired at next access.
	s.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, ok = s.Get("fatigue", "HP", "ols")
	assert.False(t, ok)
	assert.Equal(t, 0, s.GetStats().MemoryEntries)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(memoryOnlyConfig(0), nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Set("fatigue", "HP", "ols", sampleRecords())

	s.now = func() time.Time { return base.Add(1000 * time.Hour) }
	_, ok := s.Get("fatigue", "HP", "ols")
	assert.True(t, ok)
}

func TestPersistentRoundTripAndPromotion(t *testing.T) {
	cfg := persistentConfig(t, 0, 0)
	s := NewStore(cfg, nil)
	records := sampleRecords()
	s.Set("long covid", "MONDO", "bioportal", records)

	// A fresh store over the same directory has an empty memory tier and
	// must hit the file tier, then promote.
	s2 := NewStore(cfg, nil)
	got, ok := s2.Get("long covid", "MONDO", "bioportal")
	require.True(t, ok)
	assert.Equal(t, records, got)
	assert.Equal(t, 1, s2.GetStats().MemoryEntries)
}

func TestPersistedFileFormat(t *testing.T) {
	cfg := persistentConfig(t, 0, 0)
	s := NewStore(cfg, nil)
	s.Set("long covid", "MONDO", "bioportal", sampleRecords())

	key := Key("long covid", "MONDO", "bioportal")
	data, err := os.ReadFile(filepath.Join(cfg.Dir, key+".json"))
	require.NoError(t, err)

	str := string(data)
	assert.Contains(t, str, `"timestamp"`)
	assert.Contains(t, str, `"data"`)
	assert.Contains(t, str, `"query":"long covid"`)
	assert.Contains(t, str, `"ontologies":"MONDO"`)
	assert.Contains(t, str, `"service":"bioportal"`)
}

func TestCorruptPersistedEntryIsAMiss(t *testing.T) {
	cfg := persistentConfig(t, 0, 0)
	key := Key("q", "MONDO", "ols")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Dir, key+".json"), []byte("{not json"), 0o644))

	s := NewStore(cfg, nil)
	_, ok := s.Get("q", "MONDO", "ols")
	assert.False(t, ok)

	stats := s.GetStats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Errors)
}

func TestDelete(t *testing.T) {
	cfg := persistentConfig(t, 0, 0)
	s := NewStore(cfg, nil)
	s.Set("q", "MONDO", "ols", sampleRecords())

	assert.True(t, s.Delete("q", "MONDO", "ols"))
	_, ok := s.Get("q", "MONDO", "ols")
	assert.False(t, ok)

	// Already gone in both tiers.
	assert.False(t, s.Delete("q", "MONDO", "ols"))
	assert.Equal(t, uint64(1), s.GetStats().Deletes)
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore(persistentConfig(t, 0, 0), nil)
	s.Set("a", "MONDO", "ols", sampleRecords())
	s.Set("b", "HP", "bioportal", sampleRecords())

	// Memory and file entries both counted.
	assert.Equal(t, 4, s.Clear())
	assert.Equal(t, 0, s.Clear())
	assert.Equal(t, 0, s.GetStats().MemoryEntries)
}

func TestPruneRemovesOldestFirst(t *testing.T) {
	cfg := persistentConfig(t, 0, 1)
	s := NewStore(cfg, nil)

	// A payload a bit over half the 1 MB budget so two entries exceed it.
	big := make([]types.ResultRecord, 0, 600)
	for i := 0; i < 600; i++ {
		big = append(big, types.ResultRecord{
			URI:         "http://purl.obolibrary.org/obo/MONDO_0000001",
			Label:       "disease",
			Ontology:    "MONDO",
			Description: strings.Repeat("x", 1024),
			Source:      types.SourceOLS,
		})
	}

	s.Set("first", "MONDO", "ols", big)
	oldPath := filepath.Join(cfg.Dir, Key("first", "MONDO", "ols")+".json")
	// Backdate the first file so it is unambiguously the oldest.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	s.Set("second", "MONDO", "ols", big)

	_, err := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "oldest entry should have been pruned")
	_, err = os.Stat(filepath.Join(cfg.Dir, Key("second", "MONDO", "ols")+".json"))
	assert.NoError(t, err, "newest entry should survive pruning")
}

func TestZeroBudgetDisablesPruning(t *testing.T) {
	cfg := persistentConfig(t, 0, 0)
	s := NewStore(cfg, nil)
	for _, q := range []string{"a", "b", "c"} {
		s.Set(q, "MONDO", "ols", sampleRecords())
	}
	entries, err := os.ReadDir(cfg.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStatsShape(t *testing.T) {
	s := NewStore(memoryOnlyConfig(24*time.Hour), nil)
	s.Set("q", "MONDO", "ols", sampleRecords())
	s.Get("q", "MONDO", "ols")
	s.Get("other", "MONDO", "ols")

	stats := s.GetStats()
	assert.True(t, stats.Enabled)
	assert.False(t, stats.PersistentEnabled)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.MemoryEntries)
	assert.Equal(t, float64(86400), stats.TTLSeconds)
}
