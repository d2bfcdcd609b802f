package collector

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/require"

	"github.com/otututu/tbank_ref_bot/internal/application"
	"github.com/otututu/tbank_ref_bot/internal/db"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int
	apps   map[string]*db.Application
}

func newMemoryStore() *memoryStore {
	return &memoryStore{apps: make(map[string]*db.Application)}
}

func (s *memoryStore) Create(app *db.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.apps {
		if existing.UserID == app.UserID && existing.Status == application.StatusPending {
			return application.ErrDuplicateActive
		}
	}

	s.nextID++
	app.ID = fmt.Sprintf("app-%d", s.nextID)
	app.Status = application.StatusPending
	app.CreatedAt = time.Now()

	stored := *app
	s.apps[app.ID] = &stored

	return nil
}

func (s *memoryStore) GetPendingByUserID(userID int64) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, app := range s.apps {
		if app.UserID == userID && app.Status == application.StatusPending {
			found := *app
			return &found, nil
		}
	}

	return nil, application.ErrNotFound
}

func (s *memoryStore) UpdateProof(id string, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	if app.Status != application.StatusPending {
		return application.ErrInvalidTransition
	}

	app.ProofFileID = fileID

	return nil
}

func (s *memoryStore) UpdateContactInfo(id string, contactInfo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	if app.Status != application.StatusPending {
		return application.ErrInvalidTransition
	}

	app.ContactInfo = pointer.ToString(contactInfo)

	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.apps)
}

type recordingNotifier struct {
	ready chan db.Application
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ready: make(chan db.Application, 10)}
}

func (n *recordingNotifier) ReadyForReview(app db.Application) error {
	n.ready <- app
	return nil
}

func (n *recordingNotifier) waitReady(t *testing.T) db.Application {
	t.Helper()

	select {
	case app := <-n.ready:
		return app
	case <-time.After(time.Second):
		t.Fatal("ready-for-review notification not dispatched")
		return db.Application{}
	}
}

func (n *recordingNotifier) requireNone(t *testing.T) {
	t.Helper()

	select {
	case app := <-n.ready:
		t.Fatalf("unexpected ready-for-review notification for %s", app.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func userA() Profile {
	return Profile{UserID: 100, DisplayName: "Иван", Handle: "ivan"}
}

func TestProofThenContactInfo(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	app, err := c.SubmitProof(userA(), "P1")
	require.NoError(t, err)
	require.Equal(t, application.StatusPending, app.Status)
	require.Equal(t, "P1", app.ProofFileID)
	require.Nil(t, app.ContactInfo)
	notifier.requireNone(t)

	app, err = c.SubmitContactInfo(100, "4000 1234 5678 9012")
	require.NoError(t, err)
	require.True(t, app.Ready())

	ready := notifier.waitReady(t)
	require.Equal(t, app.ID, ready.ID)
	notifier.requireNone(t)
}

func TestContactInfoBeforeProof(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	_, err := c.SubmitContactInfo(200, "4000 1234 5678 9012")
	require.ErrorIs(t, err, application.ErrMissingProof)
	require.Zero(t, store.count())

	// После скриншота тот же текст проходит и дает то же итоговое состояние.
	_, err = c.SubmitProof(Profile{UserID: 200, DisplayName: "Петр"}, "P1")
	require.NoError(t, err)

	app, err := c.SubmitContactInfo(200, "4000 1234 5678 9012")
	require.NoError(t, err)
	require.Equal(t, "P1", app.ProofFileID)
	require.Equal(t, "4000 1234 5678 9012", *app.ContactInfo)
	notifier.waitReady(t)
}

func TestRepeatedProofOverwritesInPlace(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	first, err := c.SubmitProof(userA(), "P1")
	require.NoError(t, err)

	second, err := c.SubmitProof(userA(), "P2")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "P2", second.ProofFileID)
	require.Equal(t, 1, store.count())
}

func TestProofAfterReadyRejected(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	_, err := c.SubmitProof(userA(), "P1")
	require.NoError(t, err)
	_, err = c.SubmitContactInfo(100, "4000 1234 5678 9012")
	require.NoError(t, err)
	notifier.waitReady(t)

	_, err = c.SubmitProof(userA(), "P2")
	require.ErrorIs(t, err, application.ErrDuplicateActive)

	app, err := store.GetPendingByUserID(100)
	require.NoError(t, err)
	require.Equal(t, "P1", app.ProofFileID)
}

func TestContactInfoWrittenOnce(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	_, err := c.SubmitProof(userA(), "P1")
	require.NoError(t, err)
	_, err = c.SubmitContactInfo(100, "4000 1234 5678 9012")
	require.NoError(t, err)
	notifier.waitReady(t)

	_, err = c.SubmitContactInfo(100, "другая карта")
	require.ErrorIs(t, err, application.ErrDuplicateActive)
	notifier.requireNone(t)

	app, err := store.GetPendingByUserID(100)
	require.NoError(t, err)
	require.Equal(t, "4000 1234 5678 9012", *app.ContactInfo)
}

func TestConcurrentProofSubmissionsCreateSingleApplication(t *testing.T) {
	store := newMemoryStore()
	notifier := newRecordingNotifier()
	c := New(store, notifier)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.SubmitProof(userA(), fmt.Sprintf("P%d", n))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, store.count())
}
