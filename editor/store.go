// ABOUTME: In-memory session store with TTL cleanup and capacity limits.
// ABOUTME: Thread-safe storage for active playground sessions, keyed by uuid.
package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scratchpen/scratchpen/pad"
	"github.com/scratchpen/scratchpen/preview"
)

// EventFunc observes session lifecycle and render activity. Events are
// "session.created", "session.closed", and "render.done". Implementations
// must not block; they run on store and scheduler goroutines.
type EventFunc func(event, sessionID string)

// Store holds active sessions. At capacity the least recently accessed
// session is evicted; idle sessions expire after the TTL.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	delay       time.Duration
	saver       Saver
	notify      EventFunc
	onClose     func(sessionID string)
}

// StoreOption configures optional Store behavior.
type StoreOption func(*Store)

// WithRenderDelay overrides the debounce delay used by session schedulers.
func WithRenderDelay(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithSaver wires advisory snapshot persistence into every session.
func WithSaver(saver Saver) StoreOption {
	return func(s *Store) {
		s.saver = saver
	}
}

// WithEvents wires an activity observer into the store.
func WithEvents(fn EventFunc) StoreOption {
	return func(s *Store) {
		s.notify = fn
	}
}

// OnClose registers a hook invoked whenever the store closes a session (TTL
// cleanup or capacity eviction), so owners of per-session resources can
// release them. The hook must not call back into the store.
func (s *Store) OnClose(fn func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = fn
}

// NewStore creates a session store.
func NewStore(maxSessions int, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		delay:       preview.DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a session around the given FileSet and UI state, wires its
// scheduler to the given surface, and renders the initial preview
// synchronously so the document is available before the first edit.
func (s *Store) Create(fs *pad.FileSet, ui pad.UIState, surface preview.Surface, opts ...preview.SchedulerOption) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}

	now := time.Now()
	id := uuid.New().String()
	schedOpts := []preview.SchedulerOption{preview.WithDelay(s.delay)}
	if s.notify != nil {
		notify := s.notify
		schedOpts = append(schedOpts, preview.WithRenderHook(func(uint64) {
			notify("render.done", id)
		}))
	}
	schedOpts = append(schedOpts, opts...)

	sess := &Session{
		ID:         id,
		files:      fs.Clone(),
		ui:         ui.Normalize(),
		sched:      preview.NewScheduler(surface, schedOpts...),
		saver:      s.saver,
		CreatedAt:  now,
		LastAccess: now,
	}
	sess.sched.Render(sess.files)

	s.sessions[sess.ID] = sess
	if s.notify != nil {
		s.notify("session.created", sess.ID)
	}
	return sess
}

// Get retrieves a session by ID and refreshes its LastAccess time.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.LastAccess = time.Now()
	return sess, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle longer than the TTL.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			sess.Close()
			delete(s.sessions, id)
			if s.onClose != nil {
				s.onClose(id)
			}
			if s.notify != nil {
				s.notify("session.closed", id)
			}
		}
	}
}

// StartCleanup starts a background cleanup goroutine and returns a stop
// function.
func (s *Store) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

// evictOldestLocked drops the least recently accessed session. Callers hold
// the write lock.
func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldestTime time.Time
	for id, sess := range s.sessions {
		if oldestTime.IsZero() || sess.LastAccess.Before(oldestTime) {
			oldestID = id
			oldestTime = sess.LastAccess
		}
	}
	if oldestID != "" {
		s.sessions[oldestID].Close()
		delete(s.sessions, oldestID)
		if s.onClose != nil {
			s.onClose(oldestID)
		}
		if s.notify != nil {
			s.notify("session.closed", oldestID)
		}
	}
}
