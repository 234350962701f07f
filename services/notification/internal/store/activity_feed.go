package store

import (
	"sort"
	"sync"
	"time"

	"draftroom/services/notification/internal/entity"

	"github.com/google/uuid"
)

// ActivityFeed keeps a bounded, newest-first activity log per project. Each
// project's buffer is an independent ring: appending past the cap drops the
// oldest item, and one project's eviction never touches another's.
type ActivityFeed struct {
	cap int

	mu         sync.RWMutex // guards the partition map only
	partitions map[string]*feedPartition
}

type feedPartition struct {
	mu    sync.Mutex
	items []entity.ActivityFeedItem // newest first
}

func NewActivityFeed(capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ActivityFeed{
		cap:        capacity,
		partitions: make(map[string]*feedPartition),
	}
}

func (f *ActivityFeed) partition(projectID string) *feedPartition {
	f.mu.RLock()
	p, ok := f.partitions[projectID]
	f.mu.RUnlock()
	if ok {
		return p
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok = f.partitions[projectID]; !ok {
		p = &feedPartition{}
		f.partitions[projectID] = p
	}
	return p
}

// Append inserts an item at the head of its project's buffer, assigning an
// id and timestamp if absent, and returns the stored value.
func (f *ActivityFeed) Append(item entity.ActivityFeedItem) entity.ActivityFeedItem {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}

	p := f.partition(item.ProjectID)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append([]entity.ActivityFeedItem{item}, p.items...)
	if len(p.items) > f.cap {
		p.items = p.items[:f.cap]
	}
	return item
}

// List returns up to limit items for one project, newest first. A limit
// <= 0 returns the whole buffer.
func (f *ActivityFeed) List(projectID string, limit int) []entity.ActivityFeedItem {
	p := f.partition(projectID)

	p.mu.Lock()
	snapshot := make([]entity.ActivityFeedItem, len(p.items))
	copy(snapshot, p.items)
	p.mu.Unlock()

	if limit > 0 && limit < len(snapshot) {
		snapshot = snapshot[:limit]
	}
	return snapshot
}

// ListForProjects merges the feeds of several projects, sorted by timestamp
// descending. Used for a user's cross-project view.
func (f *ActivityFeed) ListForProjects(projectIDs []string, limit int) []entity.ActivityFeedItem {
	merged := make([]entity.ActivityFeedItem, 0)
	for _, id := range projectIDs {
		merged = append(merged, f.List(id, 0)...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	if limit > 0 && limit < len(merged) {
		merged = merged[:limit]
	}
	return merged
}

// Size reports the current buffer length for a project.
func (f *ActivityFeed) Size(projectID string) int {
	p := f.partition(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
