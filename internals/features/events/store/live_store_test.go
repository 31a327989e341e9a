package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLiveStore(t *testing.T) *LiveAttendanceStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLiveAttendanceStore(rdb)
}

// TestTogglePresencePairing verifies the check-in/check-out cycle: first
// toggle arrives, second departs, and the time hashes reflect it.
func TestTogglePresencePairing(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()
	studentID := uuid.New()

	status, err := s.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status)

	p, err := s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CheckedInCount)
	assert.Contains(t, p.CheckinTimes, studentID.String())
	assert.NotContains(t, p.CheckoutTimes, studentID.String())

	status, err = s.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, status)

	p, err = s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CheckedInCount)
	assert.Contains(t, p.CheckinTimes, studentID.String(), "first-seen survives checkout")
	assert.Contains(t, p.CheckoutTimes, studentID.String())
}

// TestTogglePresenceKeepsOriginalArrival: a student who leaves and comes
// back keeps their first arrival stamp.
func TestTogglePresenceKeepsOriginalArrival(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()
	studentID := uuid.New()

	_, err := s.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)

	p1, err := s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	firstArrival := p1.CheckinTimes[studentID.String()]

	_, err = s.TogglePresence(ctx, eventID, studentID) // out
	require.NoError(t, err)
	_, err = s.TogglePresence(ctx, eventID, studentID) // back in
	require.NoError(t, err)

	p2, err := s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, firstArrival, p2.CheckinTimes[studentID.String()])
	assert.Equal(t, 1, p2.CheckedInCount)
}

// TestTogglePresenceConcurrentPairs: concurrent toggles for the same pair
// serialize inside the script, so an even total lands on checked-out.
func TestTogglePresenceConcurrentPairs(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()
	studentID := uuid.New()

	const rounds = 10 // even
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TogglePresence(ctx, eventID, studentID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CheckedInCount)
	assert.Contains(t, p.CheckinTimes, studentID.String())
	assert.Contains(t, p.CheckoutTimes, studentID.String())
}

func TestGetPresenceEmptyEvent(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)

	p, err := s.GetPresence(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, p.CheckedInCount)
	assert.Empty(t, p.CheckinTimes)
	assert.Empty(t, p.CheckoutTimes)
}

// TestClearDeletesAllKeys: the three keys go away as a unit.
func TestClearDeletesAllKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()
	a, b := uuid.New(), uuid.New()

	_, err := s.TogglePresence(ctx, eventID, a)
	require.NoError(t, err)
	_, err = s.TogglePresence(ctx, eventID, b)
	require.NoError(t, err)
	_, err = s.TogglePresence(ctx, eventID, b) // b leaves
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, eventID))

	p, err := s.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CheckedInCount)
	assert.Empty(t, p.CheckinTimes)
	assert.Empty(t, p.CheckoutTimes)
}

func TestRandomWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()

	winner, err := s.RandomWinner(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, winner, "no winner from an empty set")

	studentID := uuid.New()
	_, err = s.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)

	winner, err = s.RandomWinner(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, studentID.String(), winner)
}

func TestFinalizeLock(t *testing.T) {
	ctx := context.Background()
	s := newTestLiveStore(t)
	eventID := uuid.New()

	ok, err := s.AcquireFinalizeLock(ctx, eventID, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcquireFinalizeLock(ctx, eventID, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must be rejected")

	// A different event is not blocked.
	ok, err = s.AcquireFinalizeLock(ctx, uuid.New(), 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.ReleaseFinalizeLock(ctx, eventID))
	ok, err = s.AcquireFinalizeLock(ctx, eventID, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "lock reusable after release")
}

func TestLiveStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s := NewLiveAttendanceStore(nil)

	_, err := s.TogglePresence(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrLiveStoreUnavailable)
	_, err = s.GetPresence(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrLiveStoreUnavailable)
	assert.ErrorIs(t, s.Clear(ctx, uuid.New()), ErrLiveStoreUnavailable)
}
