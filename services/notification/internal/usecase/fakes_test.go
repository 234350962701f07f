package usecase

import (
	"context"
	"errors"
	"sync"

	"draftroom/services/notification/internal/entity"
)

// fakeResolver serves a fixed membership table.
type fakeResolver struct {
	collaborators map[string][]entity.Collaborator
	projects      map[string][]entity.ProjectRef
	err           error
}

func (f *fakeResolver) Collaborators(projectID string) ([]entity.Collaborator, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.collaborators[projectID], nil
}

func (f *fakeResolver) ProjectsForUser(userID string) ([]entity.ProjectRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projects[userID], nil
}

// fakePreferenceRepo is an in-memory persistent.PreferenceRepository.
type fakePreferenceRepo struct {
	mu      sync.Mutex
	records map[string]entity.NotificationPreferences
	getErr  error
	saveErr error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{records: make(map[string]entity.NotificationPreferences)}
}

func (f *fakePreferenceRepo) Get(userID string) (*entity.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	prefs, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	return &prefs, nil
}

func (f *fakePreferenceRepo) Save(prefs entity.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[prefs.UserID] = prefs
	return nil
}

type publishedMessage struct {
	Channel string
	Event   string
	Data    interface{}
}

// fakePublisher records everything published, optionally failing.
type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) PublishToUser(_ context.Context, userID, event string, data interface{}) error {
	return f.record("user-"+userID, event, data)
}

func (f *fakePublisher) PublishToProject(_ context.Context, projectID, event string, data interface{}) error {
	return f.record("project-"+projectID, event, data)
}

func (f *fakePublisher) record(channel, event string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{Channel: channel, Event: event, Data: data})
	return nil
}

func (f *fakePublisher) byEvent(event string) []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedMessage
	for _, m := range f.messages {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

// fakeDigestSink records digest batches, optionally failing per user.
type fakeDigestSink struct {
	mu      sync.Mutex
	batches []entity.DigestBatch
	failFor map[string]bool
}

func (f *fakeDigestSink) PublishDigest(payload interface{}) error {
	batch, ok := payload.(entity.DigestBatch)
	if !ok {
		return errors.New("unexpected payload type")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[batch.UserID] {
		return errors.New("digest channel unavailable")
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeDigestSink) batchesFor(userID string) []entity.DigestBatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.DigestBatch
	for _, b := range f.batches {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}
