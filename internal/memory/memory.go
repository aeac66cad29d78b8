// Package memory keeps per-session conversation history and the last
// transcript in process memory. Nothing survives a restart.
//
// Sessions idle for longer than the store's TTL are dropped by Sweep, and
// the store never holds more than its session cap: creating a session past
// the cap evicts the least recently used idle one.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/agentkit/internal/capability"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Buffer is an append-only conversation history.
type Buffer struct {
	mu    sync.Mutex
	turns []Turn
}

// Append adds turns atomically.
func (b *Buffer) Append(turns ...Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turns...)
}

// Turns returns a copy of the history.
func (b *Buffer) Turns() []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Turn(nil), b.turns...)
}

// Len returns the number of turns.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// Defaults used by NewStore.
const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 10000
)

type session struct {
	buf        *Buffer
	transcript *capability.Result
	lastTool   string
	lastSeen   time.Time

	turn sync.Mutex // held by Lock
	busy int        // Lock holders; busy sessions are never evicted
}

// Store maps session IDs to their buffer and last transcript.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTTL sets how long a session may stay unused before Sweep drops it.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:    make(map[string]*session),
		idleTTL:     DefaultIdleTTL,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like one issued by NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// getLocked returns the session for id, creating it on first use. s.mu must be held.
func (s *Store) getLocked(id string) *session {
	now := s.now()
	sess, ok := s.sessions[id]
	if !ok {
		if len(s.sessions) >= s.maxSessions {
			s.evictOldestLocked()
		}
		sess = &session{buf: &Buffer{}}
		s.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess
}

// lookupLocked returns an existing session and marks it used. s.mu must be held.
func (s *Store) lookupLocked(id string) (*session, bool) {
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   *session
	)
	for id, sess := range s.sessions {
		if sess.busy > 0 {
			continue
		}
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldestID)
	}
}

// Buffer returns the conversation buffer for id, creating it on first use.
func (s *Store) Buffer(id string) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id).buf
}

// History returns a copy of id's conversation without creating the session.
func (s *Store) History(id string) []Turn {
	s.mu.Lock()
	sess, ok := s.lookupLocked(id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.buf.Turns()
}

// Append adds turns to id's conversation, creating the session if needed.
func (s *Store) Append(id string, turns ...Turn) {
	s.Buffer(id).Append(turns...)
}

// Lock serializes conversation updates within one session: the holder sees a
// history no other holder will change until unlock is called. A locked
// session is never evicted.
func (s *Store) Lock(id string) (unlock func()) {
	s.mu.Lock()
	sess := s.getLocked(id)
	sess.busy++
	s.mu.Unlock()

	sess.turn.Lock()
	return func() {
		sess.turn.Unlock()
		s.mu.Lock()
		sess.busy--
		sess.lastSeen = s.now()
		s.mu.Unlock()
	}
}

// SetTranscript records the last transcription result of a session.
func (s *Store) SetTranscript(id string, res capability.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(id).transcript = &res
}

// Transcript returns the last transcription result of a session.
func (s *Store) Transcript(id string) (capability.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok || sess.transcript == nil {
		return capability.Result{}, false
	}
	return *sess.transcript, true
}

// SetLastTool records the capability most recently used in a session.
func (s *Store) SetLastTool(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(id).lastTool = name
}

// LastTool returns the capability most recently used in a session, or "".
func (s *Store) LastTool(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.lookupLocked(id); ok {
		return sess.lastTool
	}
	return ""
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions unused for longer than the idle TTL and returns how
// many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	n := 0
	for id, sess := range s.sessions {
		if sess.busy == 0 && sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired idle sessions", "removed", n, "remaining", s.Len())
			}
		}
	}
}
