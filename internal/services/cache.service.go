package services

import (
	"sync"
	"time"

	"devmon/internal/models"
)

// SnapshotCache holds the most recently published snapshot for REST readers.
// The sampler is the single writer; controllers only read.
type SnapshotCache struct {
	mu        sync.RWMutex
	snapshot  *models.Snapshot
	updatedAt time.Time
}

var snapshotCache = &SnapshotCache{}

// GetSnapshotCache returns the package snapshot cache.
func GetSnapshotCache() *SnapshotCache {
	return snapshotCache
}

// Set stores a newly published snapshot.
func (c *SnapshotCache) Set(snapshot *models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.updatedAt = time.Now()
}

// Latest returns the last snapshot and when it was stored. ok is false until
// the first successful tick has published.
func (c *SnapshotCache) Latest() (snapshot *models.Snapshot, updatedAt time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, time.Time{}, false
	}
	return c.snapshot, c.updatedAt, true
}

// Clear drops the stored snapshot.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.updatedAt = time.Time{}
}
