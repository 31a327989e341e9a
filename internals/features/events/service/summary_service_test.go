package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youthgroup_backend/internals/features/events/store"
	typemodel "youthgroup_backend/internals/features/event_types/model"
)

type fakeCanonicalSummary struct {
	row      *store.EventSummaryRow
	rowErr   error
	count    int64
	countErr error
}

func (f *fakeCanonicalSummary) GetEventSummary(ctx context.Context, eventID uuid.UUID) (*store.EventSummaryRow, error) {
	if f.rowErr != nil {
		return nil, f.rowErr
	}
	return f.row, nil
}

func (f *fakeCanonicalSummary) FinalizedCount(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return f.count, f.countErr
}

type fakeFlexSummary struct {
	data        map[string]any
	dataErr     error
	schema      *typemodel.EventTypeSchemaDoc
	schemaErr   error
	schemaCalls int
}

func (f *fakeFlexSummary) GetCustomData(ctx context.Context, eventID uuid.UUID) (map[string]any, error) {
	if f.dataErr != nil {
		return nil, f.dataErr
	}
	return f.data, nil
}

func (f *fakeFlexSummary) GetSchema(ctx context.Context, typeID uuid.UUID) (*typemodel.EventTypeSchemaDoc, error) {
	f.schemaCalls++
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schema, nil
}

type fakeLiveSummary struct {
	presence *store.LivePresence
	err      error
}

func (f *fakeLiveSummary) GetPresence(ctx context.Context, eventID uuid.UUID) (*store.LivePresence, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.presence, nil
}

func summaryRowWithType(typeID uuid.UUID) *store.EventSummaryRow {
	name := "retreat"
	return &store.EventSummaryRow{
		EventId:          uuid.New(),
		EventDescription: "fall retreat",
		EventTypeId:      &typeID,
		EventTypeName:    &name,
	}
}

func TestFullSummaryAllStoresUp(t *testing.T) {
	typeID := uuid.New()
	canonical := &fakeCanonicalSummary{row: summaryRowWithType(typeID), count: 42}
	flex := &fakeFlexSummary{
		data:   map[string]any{"theme": "space"},
		schema: &typemodel.EventTypeSchemaDoc{TypeId: typeID.String(), Name: "retreat"},
	}
	live := &fakeLiveSummary{presence: &store.LivePresence{
		CheckedIn:      []string{"s1"},
		CheckedInCount: 1,
	}}

	s := NewSummaryService(canonical, flex, live)
	out, err := s.FullSummary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "fall retreat", out.Postgres.Description)
	assert.EqualValues(t, 42, out.Postgres.FinalizedAttendanceCount)
	require.NotNil(t, out.Postgres.TypeName)
	assert.Equal(t, "retreat", *out.Postgres.TypeName)

	assert.True(t, out.Mongo.Available)
	assert.Equal(t, map[string]any{"theme": "space"}, out.Mongo.CustomData)
	require.NotNil(t, out.Mongo.EventTypeSchema)
	assert.Equal(t, typeID.String(), out.Mongo.EventTypeSchema.TypeId)
	assert.Equal(t, 1, flex.schemaCalls)

	assert.True(t, out.Redis.Available)
	require.NotNil(t, out.Redis.Live)
	assert.Equal(t, 1, out.Redis.Live.CheckedInCount)
}

// TestFullSummaryDegradesWhenSecondariesDown: Mongo and Redis both failing
// still yields a 200-shaped summary with unavailable sections.
func TestFullSummaryDegradesWhenSecondariesDown(t *testing.T) {
	canonical := &fakeCanonicalSummary{row: summaryRowWithType(uuid.New()), count: 7}
	flex := &fakeFlexSummary{dataErr: errors.New("mongo: connection refused")}
	live := &fakeLiveSummary{err: store.ErrLiveStoreUnavailable}

	s := NewSummaryService(canonical, flex, live)
	out, err := s.FullSummary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.EqualValues(t, 7, out.Postgres.FinalizedAttendanceCount)

	assert.False(t, out.Mongo.Available)
	assert.Contains(t, out.Mongo.Error, "connection refused")
	assert.Nil(t, out.Mongo.CustomData)
	assert.Zero(t, flex.schemaCalls, "schema not queried once the section is down")

	assert.False(t, out.Redis.Available)
	assert.NotEmpty(t, out.Redis.Error)
	assert.Nil(t, out.Redis.Live)
}

// TestFullSummaryCanonicalFailurePropagates: the canonical store is the one
// dependency whose failure fails the read.
func TestFullSummaryCanonicalFailurePropagates(t *testing.T) {
	canonical := &fakeCanonicalSummary{rowErr: store.ErrNotFound}
	s := NewSummaryService(canonical, &fakeFlexSummary{}, &fakeLiveSummary{presence: &store.LivePresence{}})

	_, err := s.FullSummary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestFullSummaryNoCustomData: a missing document is a normal state, not a
// degraded section.
func TestFullSummaryNoCustomData(t *testing.T) {
	canonical := &fakeCanonicalSummary{row: summaryRowWithType(uuid.New())}
	flex := &fakeFlexSummary{dataErr: store.ErrNotFound, schemaErr: store.ErrNotFound}
	live := &fakeLiveSummary{presence: &store.LivePresence{}}

	s := NewSummaryService(canonical, flex, live)
	out, err := s.FullSummary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.True(t, out.Mongo.Available)
	assert.Nil(t, out.Mongo.CustomData)
	assert.Nil(t, out.Mongo.EventTypeSchema, "pending schema is simply omitted")
}

// TestFullSummarySkipsSchemaForUntypedEvent: no type id from the canonical
// read means the schema query never runs.
func TestFullSummarySkipsSchemaForUntypedEvent(t *testing.T) {
	canonical := &fakeCanonicalSummary{row: &store.EventSummaryRow{
		EventId:          uuid.New(),
		EventDescription: "plain event",
	}}
	flex := &fakeFlexSummary{data: map[string]any{"k": "v"}}
	live := &fakeLiveSummary{presence: &store.LivePresence{}}

	s := NewSummaryService(canonical, flex, live)
	out, err := s.FullSummary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.True(t, out.Mongo.Available)
	assert.Zero(t, flex.schemaCalls)
	assert.Nil(t, out.Mongo.EventTypeSchema)
}
