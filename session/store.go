package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutripeek/nutripeek-go/types"
)

const (
	// DefaultTTL is how long an unclaimed session stays alive.
	DefaultTTL = 300 * time.Second

	// DefaultMaxPayloadSize caps a single uploaded image at 10 MiB.
	DefaultMaxPayloadSize = 10 << 20

	shortcodeLength = 8
)

// Store is the single source of truth for upload sessions. Everything lives
// in memory; a record disappears on explicit delete, on a reaper sweep, or
// with the process. One mutex guards the whole map and every operation
// holds it for its full duration, so a read-modify-write never interleaves
// with a sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*types.Session
	maxSize  int
	now      func() time.Time
}

// NewStore creates an empty store. maxSize <= 0 selects the default payload
// cap; now == nil selects the wall clock (tests inject a fake one).
func NewStore(maxSize int, now func() time.Time) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxPayloadSize
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*types.Session),
		maxSize:  maxSize,
		now:      now,
	}
}

// transitions lists the legal forward edges of the session state machine.
// The expired edge is handled separately since it may preempt any
// non-terminal state.
var transitions = map[types.SessionStatus][]types.SessionStatus{
	types.StatusAwaitingUpload: {types.StatusUploaded, types.StatusFailed},
	types.StatusUploaded:       {types.StatusProcessing},
	types.StatusProcessing:     {types.StatusProcessed, types.StatusFailed},
}

func canTransition(from, to types.SessionStatus) bool {
	if to == types.StatusExpired {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func newShortcode() string {
	return uuid.NewString()[:shortcodeLength]
}

// Create inserts a fresh session in awaiting_upload and returns its
// shortcode plus the absolute deadline. Collisions with a live code are
// resolved by regenerating.
func (s *Store) Create(ttl time.Duration) (string, time.Time) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for {
		code = newShortcode()
		if _, taken := s.sessions[code]; !taken {
			break
		}
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	s.sessions[code] = &types.Session{
		Shortcode: code,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		Status:    types.StatusAwaitingUpload,
	}
	return code, expiresAt
}

// expireLocked applies the lazy expiry check. Caller must hold s.mu.
func (s *Store) expireLocked(sess *types.Session) bool {
	if sess.Status == types.StatusExpired {
		return true
	}
	if s.now().After(sess.ExpiresAt) {
		sess.Status = types.StatusExpired
		return true
	}
	return false
}

// Save stores the uploaded payload and moves the session to uploaded.
// The first valid upload wins: any later attempt observes Conflict.
// An oversize payload marks the session failed and reports TooLarge.
func (s *Store) Save(code string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return ErrNotFound
	}
	if s.expireLocked(sess) {
		return ErrExpired
	}
	if sess.Status != types.StatusAwaitingUpload {
		return fmt.Errorf("%w: file already uploaded", ErrConflict)
	}
	if len(data) > s.maxSize {
		sess.Status = types.StatusFailed
		sess.LastError = fmt.Sprintf("file size %d exceeds maximum allowed size %d", len(data), s.maxSize)
		return ErrTooLarge
	}

	sess.Payload = append([]byte(nil), data...)
	sess.Status = types.StatusUploaded
	return nil
}

// Read returns a copy of the stored payload. Absent, expired and
// payload-less sessions all report not found.
func (s *Store) Read(code string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expireLocked(sess) {
		return nil, ErrNotFound
	}
	if len(sess.Payload) == 0 {
		return nil, ErrNotFound
	}
	return append([]byte(nil), sess.Payload...), nil
}

// SetState advances the session along the state machine. Illegal edges are
// rejected with Conflict so a careless caller cannot corrupt a record.
func (s *Store) SetState(code string, status types.SessionStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return ErrNotFound
	}
	if !canTransition(sess.Status, status) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrConflict, sess.Status, status)
	}
	sess.Status = status
	if errMsg != "" {
		sess.LastError = errMsg
	}
	return nil
}

// GetState returns the current status and last recorded error. The lazy
// expiry check runs first so pollers and the reaper always agree.
func (s *Store) GetState(code string) (types.SessionStatus, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return "", "", ErrNotFound
	}
	s.expireLocked(sess)
	return sess.Status, sess.LastError, nil
}

// Delete removes the record and releases its payload. Idempotent: deleting
// an absent code returns false.
func (s *Store) Delete(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return false
	}
	sess.Payload = nil
	delete(s.sessions, code)
	return true
}

// Exists reports whether a record with this shortcode is currently held.
func (s *Store) Exists(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[code]
	return ok
}

// Sweep removes every record whose deadline has passed and returns how many
// were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for code, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			sess.Payload = nil
			delete(s.sessions, code)
			removed++
		}
	}
	return removed
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
