package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	eventmodel "youthgroup_backend/internals/features/events/model"
	"youthgroup_backend/internals/features/events/store"
	typemodel "youthgroup_backend/internals/features/event_types/model"
)

func newTestStores(t *testing.T) (*store.CanonicalEventStore, *store.LiveAttendanceStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "service.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventmodel.EventModel{},
		&eventmodel.EventAttendanceModel{},
		&eventmodel.EventFinalizationModel{},
		&typemodel.EventTypeModel{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return store.NewCanonicalEventStore(db), store.NewLiveAttendanceStore(rdb)
}

func mustCreateEvent(t *testing.T, canonical *store.CanonicalEventStore) uuid.UUID {
	t.Helper()
	id, err := canonical.CreateEvent(context.Background(), &eventmodel.EventModel{
		EventDescription: "youth night",
	})
	require.NoError(t, err)
	return id
}

// TestFinalizeHappyPath walks the full promotion: two students live in Redis
// (one still present, one already out), finalize lands both in Postgres and
// drains the live keys.
func TestFinalizeHappyPath(t *testing.T) {
	ctx := context.Background()
	canonical, live := newTestStores(t)
	f := NewFinalizationService(canonical, live)
	eventID := mustCreateEvent(t, canonical)

	present, departed := uuid.New(), uuid.New()
	_, err := live.TogglePresence(ctx, eventID, present)
	require.NoError(t, err)
	_, err = live.TogglePresence(ctx, eventID, departed)
	require.NoError(t, err)
	_, err = live.TogglePresence(ctx, eventID, departed) // leaves
	require.NoError(t, err)

	res, err := f.Finalize(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.StudentsSeen)
	assert.Equal(t, 2, res.RecordsInserted)
	assert.Equal(t, 1, res.StillCheckedIn)
	assert.True(t, res.LiveDataCleared)

	count, err := canonical.FinalizedCount(ctx, eventID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// The departed student has a checkout stamp, the present one does not.
	var rows []eventmodel.EventAttendanceModel
	require.NoError(t, canonical.DB.
		Where("event_attendance_event_id = ?", eventID).
		Find(&rows).Error)
	require.Len(t, rows, 2)
	byStudent := map[uuid.UUID]eventmodel.EventAttendanceModel{}
	for _, r := range rows {
		byStudent[r.EventAttendanceStudentId] = r
	}
	assert.Nil(t, byStudent[present].EventAttendanceCheckoutTime)
	assert.NotNil(t, byStudent[departed].EventAttendanceCheckoutTime)

	p, err := live.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CheckedInCount)
	assert.Empty(t, p.CheckinTimes)
}

// TestFinalizeRepeatIsNoop: a second finalize after success finds no live
// data and succeeds without touching Postgres.
func TestFinalizeRepeatIsNoop(t *testing.T) {
	ctx := context.Background()
	canonical, live := newTestStores(t)
	f := NewFinalizationService(canonical, live)
	eventID := mustCreateEvent(t, canonical)

	_, err := live.TogglePresence(ctx, eventID, uuid.New())
	require.NoError(t, err)

	_, err = f.Finalize(ctx, eventID)
	require.NoError(t, err)

	res, err := f.Finalize(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.StudentsSeen)
	assert.Equal(t, 0, res.RecordsInserted)

	count, err := canonical.FinalizedCount(ctx, eventID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFinalizeEventNotFound(t *testing.T) {
	canonical, live := newTestStores(t)
	f := NewFinalizationService(canonical, live)

	_, err := f.Finalize(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestFinalizeRejectsConcurrentCall: while the lock is held the second
// caller gets ErrFinalizeInProgress and nothing is promoted.
func TestFinalizeRejectsConcurrentCall(t *testing.T) {
	ctx := context.Background()
	canonical, live := newTestStores(t)
	f := NewFinalizationService(canonical, live)
	eventID := mustCreateEvent(t, canonical)

	_, err := live.TogglePresence(ctx, eventID, uuid.New())
	require.NoError(t, err)

	ok, err := live.AcquireFinalizeLock(ctx, eventID, 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.Finalize(ctx, eventID)
	assert.ErrorIs(t, err, ErrFinalizeInProgress)

	count, err := canonical.FinalizedCount(ctx, eventID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// After the holder releases, finalize goes through.
	require.NoError(t, live.ReleaseFinalizeLock(ctx, eventID))
	res, err := f.Finalize(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RecordsInserted)
}

// failingCanonical lets the batch write blow up while the event lookup
// still succeeds.
type failingCanonical struct {
	appendErr error
}

func (f *failingCanonical) GetEvent(ctx context.Context, eventID uuid.UUID) (*eventmodel.EventModel, error) {
	return &eventmodel.EventModel{EventId: eventID, EventDescription: "x"}, nil
}

func (f *failingCanonical) AppendFinalizedRecords(ctx context.Context, eventID uuid.UUID, records []store.FinalizedRecord) (int, error) {
	return 0, f.appendErr
}

// TestFinalizeKeepsLiveDataWhenCanonicalWriteFails: the Postgres write
// fails, so Redis must be left exactly as it was and the lock released for
// the retry.
func TestFinalizeKeepsLiveDataWhenCanonicalWriteFails(t *testing.T) {
	ctx := context.Background()
	_, live := newTestStores(t)
	boom := errors.New("postgres down")
	f := NewFinalizationService(&failingCanonical{appendErr: boom}, live)

	eventID := uuid.New()
	studentID := uuid.New()
	_, err := live.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)

	_, err = f.Finalize(ctx, eventID)
	require.ErrorIs(t, err, boom)

	p, err := live.GetPresence(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CheckedInCount)
	assert.Contains(t, p.CheckinTimes, studentID.String())

	// Lock was released: a retry is not shut out.
	ok, err := live.AcquireFinalizeLock(ctx, eventID, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestFinalizeRetryAfterPartialFailure: first attempt dies mid-flight after
// the batch landed (simulated by a clear failure), the retry re-reads live
// data and the unique index absorbs the duplicates.
func TestFinalizeRetryAfterPartialFailure(t *testing.T) {
	ctx := context.Background()
	canonical, live := newTestStores(t)
	eventID := mustCreateEvent(t, canonical)

	studentID := uuid.New()
	_, err := live.TogglePresence(ctx, eventID, studentID)
	require.NoError(t, err)

	// First attempt: batch lands but the live keys survive (crash between
	// the write and the clear).
	p, err := live.GetPresence(ctx, eventID)
	require.NoError(t, err)
	inserted, err := canonical.AppendFinalizedRecords(ctx, eventID, []store.FinalizedRecord{
		{StudentId: studentID, CheckinTime: mustParseLive(t, p.CheckinTimes[studentID.String()])},
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	// Retry runs the whole protocol.
	f := NewFinalizationService(canonical, live)
	res, err := f.Finalize(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StudentsSeen)
	assert.Equal(t, 0, res.RecordsInserted, "already-landed row is skipped")
	assert.True(t, res.LiveDataCleared)

	count, err := canonical.FinalizedCount(ctx, eventID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func mustParseLive(t *testing.T, raw string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, raw)
	require.NoError(t, err)
	return ts
}

func TestBuildFinalizedRecordsUnion(t *testing.T) {
	eventID := uuid.New()
	inOnly := uuid.New()
	both := uuid.New()
	outOnly := uuid.New()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	earlier := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)

	records := buildFinalizedRecords(eventID, &store.LivePresence{
		CheckinTimes: map[string]string{
			inOnly.String(): now,
			both.String():   earlier,
			"not-a-uuid":    now, // skipped with a warning
		},
		CheckoutTimes: map[string]string{
			both.String():    now,
			outOnly.String(): now, // drifted hash: checkout doubles as checkin
		},
	})

	require.Len(t, records, 3)
	byStudent := map[uuid.UUID]store.FinalizedRecord{}
	for _, r := range records {
		byStudent[r.StudentId] = r
	}

	assert.Nil(t, byStudent[inOnly].CheckoutTime)
	require.NotNil(t, byStudent[both].CheckoutTime)
	require.NotNil(t, byStudent[outOnly].CheckoutTime)
	assert.Equal(t, byStudent[outOnly].CheckinTime, *byStudent[outOnly].CheckoutTime)
}
