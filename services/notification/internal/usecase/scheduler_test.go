package usecase

import (
	"context"
	"testing"
	"time"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/store"

	"github.com/stretchr/testify/assert"
)

type schedulerFixture struct {
	scheduler     *Scheduler
	notifications *store.NotificationStore
	prefs         PreferenceUseCase
	sink          *fakeDigestSink
}

func newSchedulerFixture() *schedulerFixture {
	log := logger.New()
	notifications := store.NewNotificationStore(100)
	prefs := NewPreferenceUseCase(newFakePreferenceRepo(), log)
	sink := &fakeDigestSink{failFor: make(map[string]bool)}

	return &schedulerFixture{
		scheduler:     NewScheduler(notifications, prefs, sink, log, time.Minute),
		notifications: notifications,
		prefs:         prefs,
		sink:          sink,
	}
}

func (fx *schedulerFixture) storePending(userID, title string) entity.Notification {
	return fx.notifications.Create(entity.Notification{
		Type:          entity.TypeCollaboration,
		Category:      entity.CategoryCollaboration,
		Title:         title,
		RecipientID:   userID,
		PendingDigest: true,
	})
}

func (fx *schedulerFixture) setDigestFrequency(t *testing.T, userID string, freq entity.DigestFrequency) {
	t.Helper()
	_, err := fx.prefs.Update(userID, entity.PreferencesPatch{DigestFrequency: &freq})
	assert.NoError(t, err)
}

func TestSchedulerRunOnce_SweepsExpired(t *testing.T) {
	fx := newSchedulerFixture()
	now := time.Now()

	expired := now.Add(-time.Hour)
	fx.notifications.Create(entity.Notification{RecipientID: "user-1", Title: "old", ExpiresAt: &expired})
	fx.notifications.Create(entity.Notification{RecipientID: "user-1", Title: "fresh"})

	fx.scheduler.RunOnce(now)

	assert.Equal(t, 1, fx.notifications.Size("user-1"))
}

func TestSchedulerRunOnce_FirstSightAnchorsThenFlushes(t *testing.T) {
	fx := newSchedulerFixture()
	fx.setDigestFrequency(t, "user-1", entity.DigestHourly)
	fx.storePending("user-1", "first")
	fx.storePending("user-1", "second")

	now := time.Now()

	// First sight only anchors the window; nothing is flushed yet
	fx.scheduler.RunOnce(now)
	fx.scheduler.wg.Wait()
	assert.Empty(t, fx.sink.batchesFor("user-1"))
	assert.Len(t, fx.notifications.PendingDigest("user-1"), 2)

	fx.scheduler.RunOnce(now.Add(30 * time.Minute))
	assert.Empty(t, fx.sink.batchesFor("user-1"))

	fx.scheduler.RunOnce(now.Add(61 * time.Minute))
	fx.scheduler.wg.Wait()

	batches := fx.sink.batchesFor("user-1")
	assert.Len(t, batches, 1)
	assert.Len(t, batches[0].Notifications, 2)
	assert.Equal(t, "first", batches[0].Notifications[0].Title)
	assert.Empty(t, fx.notifications.PendingDigest("user-1"))

	// Notifications stay listable after the digest went out
	assert.Len(t, fx.notifications.List("user-1", store.ListOptions{}), 2)
}

func TestSchedulerRunOnce_FailedPublishStillMarksDelivered(t *testing.T) {
	fx := newSchedulerFixture()
	fx.setDigestFrequency(t, "user-1", entity.DigestHourly)
	fx.storePending("user-1", "lost")
	fx.sink.failFor["user-1"] = true

	now := time.Now()
	fx.scheduler.RunOnce(now)
	fx.scheduler.RunOnce(now.Add(2 * time.Hour))
	fx.scheduler.wg.Wait()

	// Deliver-once: the batch is gone even though the publish failed
	assert.Empty(t, fx.sink.batchesFor("user-1"))
	assert.Empty(t, fx.notifications.PendingDigest("user-1"))
}

func TestSchedulerRunOnce_OneFailingUserDoesNotBlockOthers(t *testing.T) {
	fx := newSchedulerFixture()
	fx.setDigestFrequency(t, "user-1", entity.DigestHourly)
	fx.setDigestFrequency(t, "user-2", entity.DigestHourly)
	fx.storePending("user-1", "a")
	fx.storePending("user-2", "b")
	fx.sink.failFor["user-1"] = true

	now := time.Now()
	fx.scheduler.RunOnce(now)
	fx.scheduler.RunOnce(now.Add(2 * time.Hour))
	fx.scheduler.wg.Wait()

	assert.Len(t, fx.sink.batchesFor("user-2"), 1)
	assert.Empty(t, fx.notifications.PendingDigest("user-2"))
}

func TestSchedulerRunOnce_InstantFrequencyNeverFlushes(t *testing.T) {
	fx := newSchedulerFixture()
	// A leftover pending flag from before the user switched back to instant
	fx.storePending("user-1", "stale")

	now := time.Now()
	fx.scheduler.RunOnce(now)
	fx.scheduler.RunOnce(now.Add(24 * time.Hour))
	fx.scheduler.wg.Wait()

	assert.Empty(t, fx.sink.batchesFor("user-1"))
}

func TestSchedulerStartStop(t *testing.T) {
	fx := newSchedulerFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx.scheduler.Start(ctx)
	fx.scheduler.Stop()
}
