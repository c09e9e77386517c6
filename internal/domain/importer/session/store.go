// Package session holds uploaded sheets and their mappings between the
// upload and import steps. State lives in memory only: an interrupted
// import is resumed by re-uploading, so nothing here needs to survive a
// restart, but abandoned uploads must be swept to bound memory.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/mapping"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/service"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

var (
	// ErrNotFound is returned when a session id is unknown or expired.
	ErrNotFound = errors.New("import session not found")

	// ErrAlreadyStarted is returned when a second import start races an
	// earlier one on the same session. An interrupted or finished import
	// is retried by re-uploading, never by restarting the session.
	ErrAlreadyStarted = errors.New("an import was already started for this session")
)

// Session is one upload moving through the pipeline. The mapping and run
// are shared between the HTTP handlers and the sweeper, so they are only
// reachable through the accessors below.
type Session struct {
	ID       uuid.UUID
	FileName string
	Sheet    *sheet.Sheet

	// Suggested and Unmatched come from the mapping builder and are shown
	// to the user during the mapping step.
	Suggested map[string]field.CanonicalField
	Unmatched map[string][]field.Suggestion

	CreatedAt time.Time

	mu        sync.Mutex
	mapping   *mapping.ColumnMapping
	run       *service.Run
	touchedAt time.Time
}

// Touch records activity so the sweeper keeps the session alive.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touchedAt = time.Now()
	s.mu.Unlock()
}

// Mapping returns the current column mapping.
func (s *Session) Mapping() *mapping.ColumnMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping
}

// ReplaceMapping swaps in a new mapping, failing with mapping.ErrFrozen
// once an import has started.
func (s *Session) ReplaceMapping(next *mapping.ColumnMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mapping.Frozen() {
		return mapping.ErrFrozen
	}
	s.mapping = next
	return nil
}

// Run returns the import run, or nil before the import starts.
func (s *Session) Run() *service.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// TryStart binds the import run and freezes the mapping in one critical
// section, so exactly one of several racing start requests wins. Sessions
// are one-shot: once a run is attached, every later start is rejected.
func (s *Session) TryStart(run *service.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		return ErrAlreadyStarted
	}
	s.mapping.Freeze()
	s.run = run
	return nil
}

// expired reports whether the session has been idle past the cutoff and
// has no import in flight.
func (s *Session) expired(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchedAt.After(cutoff) {
		return false
	}
	if s.run != nil {
		if state, _, _, _ := s.run.Snapshot(); state == service.StateRunning {
			return false
		}
	}
	return true
}

// Store is the in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	logger   *slog.Logger
}

// NewStore creates a registry whose sessions expire after ttl of
// inactivity.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a fresh session for a decoded sheet.
func (st *Store) Create(fileName string, s *sheet.Sheet, build *mapping.BuildResult) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.New(),
		FileName:  fileName,
		Sheet:     s,
		mapping:   build.Mapping,
		Suggested: build.Suggested,
		Unmatched: build.Unmatched,
		CreatedAt: now,
		touchedAt: now,
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the session and refreshes its activity timestamp.
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.Touch()
	return sess, nil
}

// Delete discards a session, returning the pipeline to idle for that
// upload. Used both by explicit reset and by the sweeper.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// SweepExpired removes sessions idle beyond the TTL, except ones whose
// import is still running. Returns how many were removed.
func (st *Store) SweepExpired() int {
	cutoff := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if !sess.expired(cutoff) {
			continue
		}
		delete(st.sessions, id)
		removed++
	}

	if removed > 0 {
		st.logger.Info("swept expired import sessions", slog.Int("removed", removed))
	}
	return removed
}
