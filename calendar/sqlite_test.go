package calendar

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "calendar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(id string, country string, impact string, at time.Time) Event {
	return Event{
		ID:          id,
		Source:      "sched",
		Agency:      "Fed",
		Country:     country,
		Title:       "FOMC Rate Decision",
		DateTimeUTC: at,
		LocalTZ:     "America/New_York",
		Impact:      impact,
		URL:         "https://example.org/fomc",
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	at := time.Date(2026, 9, 17, 18, 0, 0, 0, time.UTC)

	ev := testEvent("ev-1", "US", ImpactHigh, at)
	ev.Extras = map[string]any{"projections": true}
	require.NoError(t, s.Upsert(ev))

	got, err := s.GetEvent("ev-1")
	require.NoError(t, err)
	assert.Equal(t, "FOMC Rate Decision", got.Title)
	assert.Equal(t, at, got.DateTimeUTC)
	assert.Equal(t, "America/New_York", got.LocalTZ)
	assert.Equal(t, map[string]any{"projections": true}, got.Extras)
}

func TestStore_UpsertReplaces(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	at := time.Date(2026, 9, 17, 18, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(testEvent("ev-1", "US", ImpactMedium, at)))

	updated := testEvent("ev-1", "US", ImpactHigh, at.Add(30*time.Minute))
	require.NoError(t, s.Upsert(updated))

	got, err := s.GetEvent("ev-1")
	require.NoError(t, err)
	assert.Equal(t, ImpactHigh, got.Impact)
	assert.Equal(t, at.Add(30*time.Minute), got.DateTimeUTC)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_GetEvent_NotFound(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	_, err := s.GetEvent("nope")
	assert.Error(t, err)
}

func TestStore_ListBetween(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	events := []Event{
		testEvent("a", "US", ImpactHigh, base),
		testEvent("b", "EU", ImpactMedium, base.Add(24*time.Hour)),
		testEvent("c", "US", ImpactLow, base.Add(48*time.Hour)),
		testEvent("d", "GB", ImpactHigh, base.Add(30*24*time.Hour)), // outside window
	}
	n, err := s.UpsertAll(events)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	t.Run("window only", func(t *testing.T) {
		got, err := s.ListBetween(base, base.Add(72*time.Hour), Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		// Soonest first.
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
		assert.Equal(t, "c", got[2].ID)
	})

	t.Run("country filter", func(t *testing.T) {
		got, err := s.ListBetween(base, base.Add(72*time.Hour), Filter{Countries: []string{"US"}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	})

	t.Run("impact filter", func(t *testing.T) {
		got, err := s.ListBetween(base, base.Add(72*time.Hour), Filter{MinImpact: ImpactMedium})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	})

	t.Run("combined", func(t *testing.T) {
		got, err := s.ListBetween(base, base.Add(72*time.Hour), Filter{
			Countries: []string{"US", "EU"},
			MinImpact: ImpactHigh,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	t.Run("window boundaries half-open", func(t *testing.T) {
		got, err := s.ListBetween(base, base.Add(24*time.Hour), Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})
}
