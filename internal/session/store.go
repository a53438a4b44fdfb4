// Package session keeps per-user transcription state for the lifetime of the
// process. There is no persistence and no history: each new transcription
// replaces the previous one (last-write-wins), only the processed-message
// counter accumulates.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/voicehub/voice-gateway/internal/diarize"
	"github.com/voicehub/voice-gateway/internal/transcribe"
)

// Session is the last-known transcription state for one user.
type Session struct {
	UserID       string
	CurrentText  string
	RawText      string
	Duration     float64
	Segments     []diarize.Segment
	LastActivity time.Time
	Processed    int64
}

// HasText reports whether the user has an active transcription to act on.
func (s *Session) HasText() bool {
	return s != nil && s.CurrentText != ""
}

type entry struct {
	mu           sync.Mutex
	currentText  string
	rawText      string
	duration     float64
	segments     []diarize.Segment
	lastActivity time.Time
	processed    atomic.Int64
}

// Store is a process-wide concurrent map from user ID to session state.
// Concurrent RecordTranscription calls for one user may interleave; text
// fields are last-write-wins, the counter is atomic so no update is lost.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) entryFor(userID string) *entry {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[userID]; !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	return e
}

// RecordTranscription inserts or updates the user's session with the given
// result, overwriting the text fields and incrementing the processed counter.
func (s *Store) RecordTranscription(userID string, res *transcribe.Result, when time.Time) {
	e := s.entryFor(userID)
	e.mu.Lock()
	e.currentText = res.LabeledText
	e.rawText = res.Text
	e.duration = res.Duration
	e.segments = res.Segments
	e.lastActivity = when
	e.mu.Unlock()
	e.processed.Add(1)
}

// Get returns a snapshot of the user's session, or false when the user has
// never sent a voice message.
func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return &Session{
		UserID:       userID,
		CurrentText:  e.currentText,
		RawText:      e.rawText,
		Duration:     e.duration,
		Segments:     e.segments,
		LastActivity: e.lastActivity,
		Processed:    e.processed.Load(),
	}, true
}

// Len returns the number of users with session state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// TotalProcessed sums the processed-message counters across all users.
func (s *Store) TotalProcessed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, e := range s.entries {
		total += e.processed.Load()
	}
	return total
}
