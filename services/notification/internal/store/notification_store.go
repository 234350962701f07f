package store

import (
	"sync"
	"time"

	"draftroom/services/notification/internal/entity"

	"github.com/google/uuid"
)

// NotificationStore keeps each user's notifications in an isolated,
// individually locked partition. Creates, mark-reads and sweeps on the same
// partition are mutually exclusive; reads snapshot under the lock and filter
// outside it, and unrelated users never contend.
type NotificationStore struct {
	cap int

	mu         sync.RWMutex // guards the partition map only
	partitions map[string]*partition
}

type partition struct {
	mu    sync.Mutex
	items []*entity.Notification // newest first
}

// ListOptions filters a List call. A Limit <= 0 means no limit.
type ListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
	Category   string
}

func NewNotificationStore(capacity int) *NotificationStore {
	if capacity <= 0 {
		capacity = 200
	}
	return &NotificationStore{
		cap:        capacity,
		partitions: make(map[string]*partition),
	}
}

func (s *NotificationStore) partition(userID string) *partition {
	s.mu.RLock()
	p, ok := s.partitions[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.partitions[userID]; !ok {
		p = &partition{}
		s.partitions[userID] = p
	}
	return p
}

// Create stores a notification for its recipient, assigning an id and
// creation time if absent, and returns the stored value. When the partition
// is over capacity the retention policy evicts read notifications first,
// then the oldest by creation time.
func (s *NotificationStore) Create(n entity.Notification) entity.Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	p := s.partition(n.RecipientID)
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := n
	p.items = append([]*entity.Notification{&stored}, p.items...)
	for len(p.items) > s.cap {
		p.evictOne()
	}

	return stored
}

// evictOne removes the best eviction candidate: the oldest read
// notification, or the oldest overall when none are read. Caller holds the
// partition lock.
func (p *partition) evictOne() {
	victim := -1
	// items are newest first, so scan from the tail for the oldest read one
	for i := len(p.items) - 1; i >= 0; i-- {
		if p.items[i].IsRead {
			victim = i
			break
		}
	}
	if victim == -1 {
		victim = len(p.items) - 1
	}
	p.items = append(p.items[:victim], p.items[victim+1:]...)
}

// List returns the user's notifications newest first, excluding expired
// ones. The result is a snapshot: later inserts or mark-reads do not mutate
// a returned page.
func (s *NotificationStore) List(userID string, opts ListOptions) []entity.Notification {
	p := s.partition(userID)
	now := time.Now()

	p.mu.Lock()
	snapshot := make([]entity.Notification, 0, len(p.items))
	for _, n := range p.items {
		snapshot = append(snapshot, *n)
	}
	p.mu.Unlock()

	filtered := snapshot[:0]
	for i := range snapshot {
		n := snapshot[i]
		if n.Expired(now) {
			continue
		}
		if opts.UnreadOnly && n.IsRead {
			continue
		}
		if opts.Category != "" && n.Category != opts.Category {
			continue
		}
		filtered = append(filtered, n)
	}

	if opts.Offset >= len(filtered) {
		return []entity.Notification{}
	}
	filtered = filtered[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}

	result := make([]entity.Notification, len(filtered))
	copy(result, filtered)
	return result
}

// MarkRead marks the given notifications read and returns how many actually
// transitioned. Ids that don't belong to the user or are already read are
// skipped, which keeps the operation idempotent.
func (s *NotificationStore) MarkRead(userID string, ids []string) int {
	if len(ids) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	p := s.partition(userID)
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().UTC()
	marked := 0
	for _, n := range p.items {
		if _, ok := wanted[n.ID]; !ok || n.IsRead {
			continue
		}
		n.IsRead = true
		readAt := now
		n.ReadAt = &readAt
		marked++
	}
	return marked
}

// UnreadCount reports the number of unread, unexpired notifications.
func (s *NotificationStore) UnreadCount(userID string) int {
	p := s.partition(userID)
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0
	for _, n := range p.items {
		if !n.IsRead && !n.Expired(now) {
			count++
		}
	}
	return count
}

// SweepExpired removes every notification whose expiry has passed, across
// all partitions, taking each partition lock only for its own sweep.
func (s *NotificationStore) SweepExpired(now time.Time) int {
	s.mu.RLock()
	parts := make([]*partition, 0, len(s.partitions))
	for _, p := range s.partitions {
		parts = append(parts, p)
	}
	s.mu.RUnlock()

	removed := 0
	for _, p := range parts {
		p.mu.Lock()
		kept := p.items[:0]
		for _, n := range p.items {
			if n.Expired(now) {
				removed++
				continue
			}
			kept = append(kept, n)
		}
		p.items = kept
		p.mu.Unlock()
	}
	return removed
}

// PendingDigest returns copies of the user's notifications waiting on a
// digest flush, oldest first so the batch reads chronologically.
func (s *NotificationStore) PendingDigest(userID string) []entity.Notification {
	p := s.partition(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	pending := make([]entity.Notification, 0)
	for i := len(p.items) - 1; i >= 0; i-- {
		if p.items[i].PendingDigest {
			pending = append(pending, *p.items[i])
		}
	}
	return pending
}

// MarkDigested clears the pending-digest flag after a flush.
func (s *NotificationStore) MarkDigested(userID string, ids []string) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	p := s.partition(userID)
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range p.items {
		if _, ok := wanted[n.ID]; ok {
			n.PendingDigest = false
		}
	}
}

// UsersWithPendingDigest lists users that currently have at least one
// notification waiting on a digest flush.
func (s *NotificationStore) UsersWithPendingDigest() []string {
	s.mu.RLock()
	type userPart struct {
		id string
		p  *partition
	}
	parts := make([]userPart, 0, len(s.partitions))
	for id, p := range s.partitions {
		parts = append(parts, userPart{id: id, p: p})
	}
	s.mu.RUnlock()

	users := make([]string, 0)
	for _, up := range parts {
		up.p.mu.Lock()
		for _, n := range up.p.items {
			if n.PendingDigest {
				users = append(users, up.id)
				break
			}
		}
		up.p.mu.Unlock()
	}
	return users
}

// Size reports the current number of stored notifications for a user,
// including expired-but-unswept ones.
func (s *NotificationStore) Size(userID string) int {
	p := s.partition(userID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
