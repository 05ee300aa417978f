// Package store holds the list screen's canonical copy of the bug collection.
// The collection is only ever replaced wholesale by a server read, never
// patched in place, and a read that was issued before a newer one already
// landed is rejected so the view cannot regress to stale data.
package store

import (
	"errors"
	"sync"

	"github.com/robby/bugtracker/internal/domain"
)

var (
	// ErrBugNotFound indicates the requested bug is not in the collection.
	ErrBugNotFound = errors.New("bug not found")
)

// Store is the in-memory bug collection. It is safe for concurrent use since
// Bubble Tea commands run on their own goroutines.
type Store struct {
	mu sync.RWMutex

	bugs  []domain.Bug
	index map[int]int // bug ID -> position in bugs

	issued  uint64 // last read sequence handed out by Begin
	applied uint64 // sequence of the read currently held
	loaded  bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		index: make(map[int]int),
	}
}

// Begin reserves a sequence number for a read that is about to be issued.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Latest reports whether seq is the most recently issued read, i.e. no
// newer read is still outstanding.
func (s *Store) Latest(seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return seq == s.issued
}

// Replace swaps in the result of read seq. It returns false, leaving the
// store untouched, when a read issued later has already been applied.
func (s *Store) Replace(seq uint64, bugs []domain.Bug) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		return false
	}

	s.bugs = make([]domain.Bug, len(bugs))
	copy(s.bugs, bugs)
	s.index = make(map[int]int, len(bugs))
	for i, b := range s.bugs {
		s.index[b.ID] = i
	}
	s.applied = seq
	s.loaded = true
	return true
}

// Loaded reports whether any read has been applied.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// All returns a copy of the collection in server order.
func (s *Store) All() []domain.Bug {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bug, len(s.bugs))
	copy(out, s.bugs)
	return out
}

// At returns the bug at position i, or false when out of range.
func (s *Store) At(i int) (domain.Bug, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.bugs) {
		return domain.Bug{}, false
	}
	return s.bugs[i], true
}

// Get looks a bug up by ID.
func (s *Store) Get(id int) (domain.Bug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Bug{}, ErrBugNotFound
	}
	return s.bugs[i], nil
}

// IndexOf returns the position of a bug, or -1.
func (s *Store) IndexOf(id int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of bugs held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bugs)
}

// Counts tallies bugs per status.
func (s *Store) Counts() map[domain.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Status]int, 3)
	for _, b := range s.bugs {
		counts[b.Status]++
	}
	return counts
}
