package store

import (
	"testing"

	"github.com/robby/bugtracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestBugs() []domain.Bug {
	return []domain.Bug{
		{ID: 1, Title: "Bug 1", Status: domain.StatusOpen, Priority: domain.PriorityHigh},
		{ID: 2, Title: "Bug 2", Status: domain.StatusInProgress, Priority: domain.PriorityMedium},
		{ID: 5, Title: "Bug 5", Status: domain.StatusOpen, Priority: domain.PriorityLow},
	}
}

func TestNew(t *testing.T) {
	s := New()
	assert.NotNil(t, s)
	assert.False(t, s.Loaded())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())
}

func TestReplace(t *testing.T) {
	s := New()
	seq := s.Begin()

	require.True(t, s.Replace(seq, createTestBugs()))
	assert.True(t, s.Loaded())
	assert.Equal(t, 3, s.Len())

	bug, err := s.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "Bug 5", bug.Title)
	assert.Equal(t, 2, s.IndexOf(5))
}

func TestReplace_RejectsStaleRead(t *testing.T) {
	s := New()
	older := s.Begin()
	newer := s.Begin()

	require.True(t, s.Replace(newer, createTestBugs()[:1]))

	// The older read lands late and must not overwrite the newer one.
	assert.False(t, s.Replace(older, createTestBugs()))
	assert.Equal(t, 1, s.Len())
}

func TestReplace_InOrderReadsApply(t *testing.T) {
	s := New()
	first := s.Begin()
	second := s.Begin()

	require.True(t, s.Replace(first, createTestBugs()))
	require.True(t, s.Replace(second, createTestBugs()[:2]))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, -1, s.IndexOf(5))
}

func TestReplace_CopiesInput(t *testing.T) {
	s := New()
	bugs := createTestBugs()
	s.Replace(s.Begin(), bugs)

	bugs[0].Title = "mutated"
	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Bug 1", got.Title)

	all := s.All()
	all[1].Title = "mutated"
	got, _ = s.Get(2)
	assert.Equal(t, "Bug 2", got.Title)
}

func TestGet_NotFound(t *testing.T) {
	s := New()
	s.Replace(s.Begin(), createTestBugs())

	_, err := s.Get(99)
	assert.ErrorIs(t, err, ErrBugNotFound)
}

func TestAt(t *testing.T) {
	s := New()
	s.Replace(s.Begin(), createTestBugs())

	bug, ok := s.At(1)
	require.True(t, ok)
	assert.Equal(t, 2, bug.ID)

	_, ok = s.At(3)
	assert.False(t, ok)
	_, ok = s.At(-1)
	assert.False(t, ok)
}

func TestCounts(t *testing.T) {
	s := New()
	s.Replace(s.Begin(), createTestBugs())

	counts := s.Counts()
	assert.Equal(t, 2, counts[domain.StatusOpen])
	assert.Equal(t, 1, counts[domain.StatusInProgress])
	assert.Equal(t, 0, counts[domain.StatusResolved])
}

func TestLatest(t *testing.T) {
	s := New()
	first := s.Begin()
	assert.True(t, s.Latest(first))

	second := s.Begin()
	assert.False(t, s.Latest(first))
	assert.True(t, s.Latest(second))

	// Applying the older read does not make it the latest.
	require.True(t, s.Replace(first, createTestBugs()))
	assert.False(t, s.Latest(first))
}
