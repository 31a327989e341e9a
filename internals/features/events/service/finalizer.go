// file: internals/features/events/service/finalizer.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"youthgroup_backend/internals/features/events/model"
	"youthgroup_backend/internals/features/events/store"
)

// ErrFinalizeInProgress is returned when another finalize already holds the
// event's lock; controllers translate it to 409.
var ErrFinalizeInProgress = errors.New("finalization already in progress for this event")

// finalizeLockTTL bounds how long a crashed finalizer can block the event.
const finalizeLockTTL = 30 * time.Second

// CanonicalFinalizeStore is the slice of the Postgres adapter the finalizer
// needs.
type CanonicalFinalizeStore interface {
	GetEvent(ctx context.Context, eventID uuid.UUID) (*model.EventModel, error)
	AppendFinalizedRecords(ctx context.Context, eventID uuid.UUID, records []store.FinalizedRecord) (int, error)
}

// LiveFinalizeStore is the slice of the Redis adapter the finalizer needs.
type LiveFinalizeStore interface {
	GetPresence(ctx context.Context, eventID uuid.UUID) (*store.LivePresence, error)
	Clear(ctx context.Context, eventID uuid.UUID) error
	AcquireFinalizeLock(ctx context.Context, eventID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseFinalizeLock(ctx context.Context, eventID uuid.UUID) error
}

type FinalizeResult struct {
	EventId         uuid.UUID `json:"event_id"`
	StudentsSeen    int       `json:"students_seen"`
	RecordsInserted int       `json:"records_inserted"`
	StillCheckedIn  int       `json:"still_checked_in"`
	LiveDataCleared bool      `json:"live_data_cleared"`
}

// FinalizationService promotes an event's live Redis attendance into durable
// Postgres rows, then deletes the live record. One-way: there is no path
// back from finalized to live.
type FinalizationService struct {
	Canonical CanonicalFinalizeStore
	Live      LiveFinalizeStore
}

func NewFinalizationService(canonical CanonicalFinalizeStore, live LiveFinalizeStore) *FinalizationService {
	return &FinalizationService{Canonical: canonical, Live: live}
}

// Finalize runs the promotion protocol:
//  1. the event must exist canonically;
//  2. take the per-event lock — an overlapping call is rejected, not queued;
//  3. read the live record; every student in either time hash is finalized,
//     whether or not they are still in the checked-in set;
//  4. write the whole batch to Postgres;
//  5. only after (4) succeeds, delete the Redis keys.
//
// Any failure before (5) leaves the live data untouched, so finalize is safe
// to retry; the unique (event, student) index absorbs rows that already
// landed on a previous partial attempt.
func (s *FinalizationService) Finalize(ctx context.Context, eventID uuid.UUID) (*FinalizeResult, error) {
	if _, err := s.Canonical.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	ok, err := s.Live.AcquireFinalizeLock(ctx, eventID, finalizeLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire finalize lock: %w", err)
	}
	if !ok {
		return nil, ErrFinalizeInProgress
	}

	unlock := func() {
		if err := s.Live.ReleaseFinalizeLock(context.WithoutCancel(ctx), eventID); err != nil {
			log.Printf("[WARN] release finalize lock for event %s: %v", eventID, err)
		}
	}

	presence, err := s.Live.GetPresence(ctx, eventID)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("read live attendance: %w", err)
	}

	records := buildFinalizedRecords(eventID, presence)
	result := &FinalizeResult{
		EventId:        eventID,
		StudentsSeen:   len(records),
		StillCheckedIn: presence.CheckedInCount,
	}

	// Nothing to promote: either nobody ever checked in, or a previous
	// finalize already drained the keys. Either way this is a no-op success.
	if len(records) == 0 {
		unlock()
		return result, nil
	}

	inserted, err := s.Canonical.AppendFinalizedRecords(ctx, eventID, records)
	if err != nil {
		// Live data is intentionally left in place so the caller can retry.
		unlock()
		return nil, fmt.Errorf("persist attendance batch: %w", err)
	}
	result.RecordsInserted = inserted

	if err := s.Live.Clear(ctx, eventID); err != nil {
		// The batch is durable but Redis still has the live record. A retry
		// re-reads it and the unique index skips every row, so report the
		// failure and let the caller run finalize again.
		unlock()
		return nil, fmt.Errorf("attendance persisted but live data not cleared, retry finalize: %w", err)
	}
	result.LiveDataCleared = true

	unlock()
	return result, nil
}

// buildFinalizedRecords turns the raw live snapshot into attendance rows.
// The student universe is the union of both time hashes: everyone who ever
// checked in, present at finalization time or not.
func buildFinalizedRecords(eventID uuid.UUID, presence *store.LivePresence) []store.FinalizedRecord {
	seen := map[string]bool{}
	for id := range presence.CheckinTimes {
		seen[id] = true
	}
	for id := range presence.CheckoutTimes {
		seen[id] = true
	}

	records := make([]store.FinalizedRecord, 0, len(seen))
	for id := range seen {
		studentID, err := uuid.Parse(id)
		if err != nil {
			log.Printf("[WARN] event %s: skipping malformed student id %q in live data", eventID, id)
			continue
		}

		checkin, ok := parseLiveTime(presence.CheckinTimes[id])
		checkout, hasCheckout := parseLiveTime(presence.CheckoutTimes[id])
		if !ok {
			if !hasCheckout {
				log.Printf("[WARN] event %s: student %s has no usable timestamps, skipping", eventID, id)
				continue
			}
			// Checkout without a check-in stamp: the hashes drifted. Use the
			// checkout time for both rather than dropping the student.
			checkin = checkout
		}

		rec := store.FinalizedRecord{
			StudentId:   studentID,
			CheckinTime: checkin,
		}
		if hasCheckout {
			out := checkout
			rec.CheckoutTime = &out
		}
		records = append(records, rec)
	}
	return records
}

func parseLiveTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
