// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a two-tier (memory + file) TTL cache for
// terminology service responses. Persistent-tier I/O failures never
// propagate; they count as misses and bump the error counter.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/pkg/types"
)

// Entry is the cached payload plus the request that produced it. The request
// fields are carried for debugging and survive the round trip to disk.
type Entry struct {
	// Timestamp is epoch seconds at write time.
	Timestamp  float64              `json:"timestamp"`
	Data       []types.ResultRecord `json:"data"`
	Query      string               `json:"query"`
	Ontologies string               `json:"ontologies"`
	Service    string               `json:"service"`
}

// Stats reports the cache's running counters.
type Stats struct {
	Enabled           bool    `json:"enabled"`
	Hits              uint64  `json:"hits"`
	Misses            uint64  `json:"misses"`
	HitRate           float64 `json:"hit_rate"`
	Sets              uint64  `json:"sets"`
	Deletes           uint64  `json:"deletes"`
	Errors            uint64  `json:"errors"`
	MemoryEntries     int     `json:"memory_entries"`
	PersistentEnabled bool    `json:"persistent_enabled"`
	TTLSeconds        float64 `json:"ttl_seconds"`
}

// Store is the two-tier response cache. All methods are safe for concurrent
// use.
type Store struct {
	cfg    types.CacheConfig
	logger *zap.SugaredLogger
	now    func() time.Time

	mu     sync.Mutex
	memory map[string]Entry

	hits    uint64
	misses  uint64
	sets    uint64
	deletes uint64
	errors  uint64
}

// NewStore builds the cache. When the persistent tier is enabled but its
// directory cannot be created, persistence is switched off with a warning
// rather than failing.
func NewStore(cfg types.CacheConfig, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Persistent && cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			logger.Warnw("could not create cache directory, disabling persistence",
				"dir", cfg.Dir, "error", err)
			cfg.Persistent = false
		}
	}
	return &Store{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		memory: make(map[string]Entry),
	}
}

// Key derives the deterministic cache key: a SHA-256 hex digest of the
// normalized "<query>|<ontologies>|<service>" string. Two logically
// identical requests always hash identically.
func Key(query, ontologies, service string) string {
	normalized := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(query)),
		strings.ToUpper(strings.TrimSpace(ontologies)),
		strings.ToLower(service))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for a request, or ok=false on a miss.
// Expired entries are deleted on access. A persistent-tier hit is promoted
// into memory.
func (s *Store) Get(query, ontologies, service string) ([]types.ResultRecord, bool) {
	if !s.cfg.Enabled {
		return nil, false
	}
	key := Key(query, ontologies, service)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.memory[key]; ok {
		if !s.expired(e.Timestamp) {
			s.hits++
			return e.Data, true
		}
		delete(s.memory, key)
	}

	if s.cfg.Persistent {
		if e, ok := s.readFile(key); ok {
			if !s.expired(e.Timestamp) {
				s.memory[key] = e
				s.hits++
				return e.Data, true
			}
			if err := os.Remove(s.filePath(key)); err != nil {
				s.errors++
			}
		}
	}

	s.misses++
	return nil, false
}

// Set caches a payload: always in memory, and on disk when persistence is
// enabled. After a persistent write, oldest-first pruning keeps the tier
// under the configured byte budget.
func (s *Store) Set(query, ontologies, service string, data []types.ResultRecord) bool {
	if !s.cfg.Enabled {
		return false
	}
	key := Key(query, ontologies, service)
	e := Entry{
		Timestamp:  float64(s.now().UnixNano()) / float64(time.Second),
		Data:       data,
		Query:      query,
		Ontologies: ontologies,
		Service:    service,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory[key] = e

	if s.cfg.Persistent {
		if err := s.writeFile(key, e); err != nil {
			s.errors++
			s.logger.Debugw("persistent cache write failed", "error", err)
		} else {
			s.pruneLocked()
		}
	}

	s.sets++
	return true
}

// Delete removes one request's entry from both tiers. Returns true if
// anything was removed.
func (s *Store) Delete(query, ontologies, service string) bool {
	if !s.cfg.Enabled {
		return false
	}
	key := Key(query, ontologies, service)

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	if _, ok := s.memory[key]; ok {
		delete(s.memory, key)
		deleted = true
	}
	if s.cfg.Persistent {
		path := s.filePath(key)
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				s.errors++
			} else {
				deleted = true
			}
		}
	}
	if deleted {
		s.deletes++
	}
	return deleted
}

// Clear removes every entry from both tiers and returns how many went away.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.memory)
	s.memory = make(map[string]Entry)

	if s.cfg.Persistent {
		entries, err := os.ReadDir(s.cfg.Dir)
		if err != nil {
			if !os.IsNotExist(err) {
				s.errors++
			}
			return count
		}
		for _, de := range entries {
			if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
				continue
			}
			if err := os.Remove(filepath.Join(s.cfg.Dir, de.Name())); err != nil {
				s.errors++
				continue
			}
			count++
		}
	}
	return count
}

// GetStats returns the running counters.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.hits + s.misses
	var rate float64
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}
	return Stats{
		Enabled:           s.cfg.Enabled,
		Hits:              s.hits,
		Misses:            s.misses,
		HitRate:           rate,
		Sets:              s.sets,
		Deletes:           s.deletes,
		Errors:            s.errors,
		MemoryEntries:     len(s.memory),
		PersistentEnabled: s.cfg.Persistent,
		TTLSeconds:        s.cfg.TTL.Seconds(),
	}
}

// expired reports whether a write timestamp has outlived the TTL.
// A zero TTL means entries never expire.
func (s *Store) expired(timestamp float64) bool {
	if s.cfg.TTL == 0 {
		return false
	}
	age := float64(s.now().UnixNano())/float64(time.Second) - timestamp
	return age > s.cfg.TTL.Seconds()
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.cfg.Dir, key+".json")
}

// readFile loads one persisted entry. Any I/O or decode problem counts as an
// error and a miss.
func (s *Store) readFile(key string) (Entry, bool) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.errors++
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.errors++
		return Entry{}, false
	}
	return e, true
}

func (s *Store) writeFile(key string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath(key), data, 0o644)
}

// pruneLocked deletes the globally oldest persisted entries (by modification
// time) until the tier is back under the configured byte budget. A zero
// budget disables pruning. Must be called with mu held.
func (s *Store) pruneLocked() {
	if s.cfg.MaxSizeMB == 0 {
		return
	}
	budget := int64(s.cfg.MaxSizeMB) * 1024 * 1024

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		s.errors++
		return
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []fileInfo
	var total int64
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(s.cfg.Dir, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
	}
	if total <= budget {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= budget {
			break
		}
		if err := os.Remove(f.path); err != nil {
			s.errors++
			continue
		}
		total -= f.size
	}
}
