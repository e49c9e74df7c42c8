package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sales-dashboard/internal/models"
)

// LoadFunc parses the dataset stored at path.
type LoadFunc func(ctx context.Context, path string) (*models.Dataset, error)

type cacheRecorder interface {
	IncrCacheHit()
	IncrCacheMiss()
	RecordLoad(records, dropped int, d time.Duration)
}

type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// DatasetCache memoizes parsed datasets by source path for the life of
// the process. Entries leave only through Invalidate or Clear.
type DatasetCache struct {
	mu         sync.RWMutex
	entries    map[string]*models.Dataset
	generation uint64
	hits       int64
	misses     int64

	group       singleflight.Group
	load        LoadFunc
	loadTimeout time.Duration
	recorder    cacheRecorder
	logger      *slog.Logger
}

// NewDatasetCache wraps load. Each load is bounded by loadTimeout and
// outlives the request that started it. recorder may be nil.
func NewDatasetCache(load LoadFunc, loadTimeout time.Duration, recorder cacheRecorder, logger *slog.Logger) *DatasetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetCache{
		entries:     make(map[string]*models.Dataset),
		load:        load,
		loadTimeout: loadTimeout,
		recorder:    recorder,
		logger:      logger,
	}
}

// Get returns the cached dataset for path, loading it on a miss.
// Concurrent misses for the same path share a single load.
func (c *DatasetCache) Get(ctx context.Context, path string) (*models.Dataset, error) {
	c.mu.Lock()
	if ds, ok := c.entries[path]; ok {
		c.hits++
		c.mu.Unlock()
		if c.recorder != nil {
			c.recorder.IncrCacheHit()
		}
		return ds, nil
	}
	c.misses++
	gen := c.generation
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.IncrCacheMiss()
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		if ds, ok := c.Peek(path); ok {
			return ds, nil
		}

		// Waiters share this load, so one caller's cancellation must not fail the rest.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		start := time.Now()
		ds, err := c.load(loadCtx, path)
		if err != nil {
			return nil, err
		}
		duration := time.Since(start)

		c.mu.Lock()
		// An Invalidate/Clear during the load means this result may be stale.
		if c.generation == gen {
			c.entries[path] = ds
		}
		c.mu.Unlock()

		if c.recorder != nil {
			c.recorder.RecordLoad(ds.Len(), ds.DroppedRows, duration)
		}
		c.logger.InfoContext(ctx, "dataset loaded",
			"path", path,
			"records", ds.Len(),
			"dropped_rows", ds.DroppedRows,
			"duration", duration,
		)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dataset), nil
}

// Peek returns the cached dataset without loading or counting a lookup.
func (c *DatasetCache) Peek(path string) (*models.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[path]
	return ds, ok
}

func (c *DatasetCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.generation++
	c.mu.Unlock()
	c.group.Forget(path)
}

func (c *DatasetCache) Clear() {
	c.mu.Lock()
	paths := make([]string, 0, len(c.entries))
	for path := range c.entries {
		paths = append(paths, path)
	}
	c.entries = make(map[string]*models.Dataset)
	c.generation++
	c.mu.Unlock()

	for _, path := range paths {
		c.group.Forget(path)
	}
}

func (c *DatasetCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
