package history

import (
	"errors"
	"strings"
	"sync"
)

const (
	// DefaultMaxEntries keeps the last 20 exchanges.
	DefaultMaxEntries = 40

	// DefaultSessionID is used when a caller does not name a session.
	DefaultSessionID = "default"

	humanPrefix = "Human: "
	aiPrefix    = "AI: "
)

// ErrSessionClosed is returned by Turn once the session has been deleted.
var ErrSessionClosed = errors.New("session closed")

// Session is a bounded conversation transcript. Entries alternate
// between "Human: ..." and "AI: ..." lines.
type Session struct {
	id  string
	max int

	// turnMu serializes whole turns so concurrent requests on one session
	// cannot interleave their entries.
	turnMu sync.Mutex
	closed bool

	mu      sync.RWMutex
	entries []string
}

func newSession(id string, max int) *Session {
	return &Session{id: id, max: max}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Append adds entries and drops the oldest ones beyond the cap.
func (s *Session) Append(entries ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(entries...)
}

func (s *Session) appendLocked(entries ...string) {
	s.entries = append(s.entries, entries...)
	if over := len(s.entries) - s.max; over > 0 {
		kept := make([]string, s.max)
		copy(kept, s.entries[over:])
		s.entries = kept
	}
}

// Window renders the retained entries as newline separated text.
func (s *Session) Window() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.Join(s.entries, "\n")
}

// Entries returns a copy of the retained entries.
func (s *Session) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Turn runs one exchange. answer receives the history window as it was
// before the question; on success the question and answer are appended
// and the trimmed history is returned. On failure nothing is recorded.
func (s *Session) Turn(question string, answer func(window string) (string, error)) (string, []string, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if s.closed {
		return "", nil, ErrSessionClosed
	}

	reply, err := answer(s.Window())
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.appendLocked(humanPrefix+question, aiPrefix+reply)
	s.mu.Unlock()

	return reply, s.Entries(), nil
}

// Store holds sessions by ID. Sessions live until deleted.
type Store struct {
	max int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a store whose sessions keep at most maxEntries lines.
// A non-positive value selects DefaultMaxEntries.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		max:      maxEntries,
		sessions: make(map[string]*Session),
	}
}

// MaxEntries returns the per-session cap
func (s *Store) MaxEntries() int {
	return s.max
}

// Session returns the session for id, creating it if needed.
func (s *Store) Session(id string) *Session {
	id = NormalizeID(id)

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, s.max)
	s.sessions[id] = sess
	return sess
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[NormalizeID(id)]
	return sess, ok
}

// Turn runs one exchange on the session id, creating it if needed. A
// session deleted before the turn starts is replaced by a fresh one.
func (s *Store) Turn(id, question string, answer func(window string) (string, error)) (string, []string, error) {
	for {
		reply, hist, err := s.Session(id).Turn(question, answer)
		if errors.Is(err, ErrSessionClosed) {
			continue
		}
		return reply, hist, err
	}
}

// Delete removes a session and reports whether it existed. A turn in
// progress on the session completes before it is removed.
func (s *Store) Delete(id string) bool {
	id = NormalizeID(id)
	sess, ok := s.Lookup(id)
	if !ok {
		return false
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()
	sess.closed = true

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] != sess {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// NormalizeID maps the empty ID to DefaultSessionID.
func NormalizeID(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}
