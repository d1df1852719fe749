package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Session is one editing session: a show editor plus the lock that makes its
// caller the only writer.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	editor *show.Editor
}

// SessionStore keeps live editing sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex        // guards sessions, not the editors inside them
	sessions map[string]*Session // sessionID -> session
	saver    show.Saver
	log      *zap.SugaredLogger
}

// NewSessionStore creates a store whose editors save through saver. A nil
// saver leaves each editor with its logging saver.
func NewSessionStore(saver show.Saver, log *zap.SugaredLogger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		saver:    saver,
		log:      log,
	}
}

// CreateSession starts a session holding the initial show.
func (s *SessionStore) CreateSession() *Session {
	id := uuid.NewString()
	opts := []show.Option{show.WithLogger(s.log)}
	if s.saver != nil {
		opts = append(opts, show.WithSaver(s.saver))
	}
	sess := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		editor:    show.NewEditor(id, opts...),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Infof("Session created: ID=%s", id)
	return sess
}

// Do runs fn with exclusive access to the session's editor.
func (s *SessionStore) Do(sessionID string, fn func(*show.Editor) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.editor)
}

// DeleteSession drops a session. It reports whether the session existed.
func (s *SessionStore) DeleteSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	s.log.Infof("Session deleted: ID=%s", sessionID)
	return true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
