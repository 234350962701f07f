package usecase

import (
	"context"
	"sync"
	"time"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/store"
)

// DigestPublisher is the deferred delivery channel. The payload is an
// entity.DigestBatch; the mail worker behind the queue owns actual sending,
// failures here are logged and not retried.
type DigestPublisher interface {
	PublishDigest(payload interface{}) error
}

// Scheduler runs the periodic maintenance pass: purging expired
// notifications and flushing due digests. Flushes for different users run
// in their own goroutines so one slow digest never delays the sweep or
// anyone else's batch.
type Scheduler struct {
	notifications *store.NotificationStore
	prefs         PreferenceUseCase
	digests       DigestPublisher
	logger        *logger.Logger
	interval      time.Duration

	mu        sync.Mutex
	lastFlush map[string]time.Time
	inFlight  map[string]bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(
	notifications *store.NotificationStore,
	prefs PreferenceUseCase,
	digests DigestPublisher,
	log *logger.Logger,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		notifications: notifications,
		prefs:         prefs,
		digests:       digests,
		logger:        log,
		interval:      interval,
		lastFlush:     make(map[string]time.Time),
		inFlight:      make(map[string]bool),
		stop:          make(chan struct{}),
	}
}

// Start launches the tick loop. It returns immediately; cancel the context
// or call Stop to shut it down.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.RunOnce(now)
			}
		}
	}()
}

// Stop halts the tick loop and waits for in-flight flushes to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// RunOnce executes a single maintenance tick: one sweep, then one digest
// flush attempt per due user.
func (s *Scheduler) RunOnce(now time.Time) {
	if removed := s.notifications.SweepExpired(now); removed > 0 {
		s.logger.Info("Swept %d expired notifications", removed)
	}

	for _, userID := range s.notifications.UsersWithPendingDigest() {
		s.mu.Lock()
		if s.inFlight[userID] {
			s.mu.Unlock()
			continue
		}
		last, seen := s.lastFlush[userID]
		if !seen {
			// Anchor the first period at first sight rather than flushing
			// a partial window immediately
			s.lastFlush[userID] = now
			s.mu.Unlock()
			continue
		}
		period, ok := s.prefs.Get(userID).DigestFrequency.Interval()
		if !ok || now.Sub(last) < period {
			s.mu.Unlock()
			continue
		}
		s.inFlight[userID] = true
		s.mu.Unlock()

		s.wg.Add(1)
		go func(userID string, now time.Time) {
			defer s.wg.Done()
			s.flushUser(userID, now)
		}(userID, now)
	}
}

// flushUser emits one digest batch for a user and marks its notifications
// delivered. Delivery is deliver-once, best-effort: a publish failure is
// logged and the batch is still marked, never retried.
func (s *Scheduler) flushUser(userID string, now time.Time) {
	defer func() {
		s.mu.Lock()
		s.inFlight[userID] = false
		s.lastFlush[userID] = now
		s.mu.Unlock()
	}()

	pending := s.notifications.PendingDigest(userID)
	if len(pending) == 0 {
		return
	}

	batch := entity.DigestBatch{UserID: userID, Notifications: pending}
	if err := s.digests.PublishDigest(batch); err != nil {
		s.logger.Error("Failed to publish digest for user %s (%d notifications): %v", userID, len(pending), err)
	}

	ids := make([]string, len(pending))
	for i, n := range pending {
		ids[i] = n.ID
	}
	s.notifications.MarkDigested(userID, ids)

	s.logger.Info("Flushed digest for user %s: %d notifications", userID, len(pending))
}
