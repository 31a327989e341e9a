// file: internals/features/events/service/summary_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"youthgroup_backend/internals/features/events/store"
	typemodel "youthgroup_backend/internals/features/event_types/model"
)

// CanonicalSummaryStore is the Postgres slice the summary read needs. Its
// failure is the only one a summary propagates.
type CanonicalSummaryStore interface {
	GetEventSummary(ctx context.Context, eventID uuid.UUID) (*store.EventSummaryRow, error)
	FinalizedCount(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// FlexSummaryStore is the MongoDB slice: custom data plus the type schema.
type FlexSummaryStore interface {
	GetCustomData(ctx context.Context, eventID uuid.UUID) (map[string]any, error)
	GetSchema(ctx context.Context, typeID uuid.UUID) (*typemodel.EventTypeSchemaDoc, error)
}

// LiveSummaryStore is the Redis slice: the live snapshot.
type LiveSummaryStore interface {
	GetPresence(ctx context.Context, eventID uuid.UUID) (*store.LivePresence, error)
}

type PostgresSection struct {
	Description              string     `json:"description"`
	Address                  *string    `json:"address,omitempty"`
	TypeId                   *uuid.UUID `json:"type_id,omitempty"`
	TypeName                 *string    `json:"type_name,omitempty"`
	FinalizedAttendanceCount int64      `json:"finalized_attendance_count"`
}

type MongoSection struct {
	Available       bool                          `json:"available"`
	Error           string                        `json:"error,omitempty"`
	EventTypeSchema *typemodel.EventTypeSchemaDoc `json:"event_type_schema,omitempty"`
	CustomData      map[string]any                `json:"custom_data,omitempty"`
}

type RedisSection struct {
	Available bool                `json:"available"`
	Error     string              `json:"error,omitempty"`
	Live      *store.LivePresence `json:"live,omitempty"`
}

// FullSummary merges one event's data across all three stores. The Postgres
// section is always populated when the call succeeds; the Mongo and Redis
// sections degrade to Available=false instead of failing the read.
type FullSummary struct {
	EventId  uuid.UUID       `json:"event_id"`
	Postgres PostgresSection `json:"postgres"`
	Mongo    MongoSection    `json:"mongodb"`
	Redis    RedisSection    `json:"redis"`
}

// SummaryService is the fan-out read coordinator. The three stores are
// queried concurrently so latency is bounded by the slowest store, not the
// sum; the secondary queries additionally run under their own timeout.
type SummaryService struct {
	Canonical CanonicalSummaryStore
	Flex      FlexSummaryStore
	Live      LiveSummaryStore

	// Budget for each Mongo/Redis sub-query. A timeout counts as that store
	// being unavailable, never as a failed read.
	SecondaryTimeout time.Duration
}

func NewSummaryService(canonical CanonicalSummaryStore, flex FlexSummaryStore, live LiveSummaryStore) *SummaryService {
	return &SummaryService{
		Canonical:        canonical,
		Flex:             flex,
		Live:             live,
		SecondaryTimeout: 1500 * time.Millisecond,
	}
}

func (s *SummaryService) FullSummary(ctx context.Context, eventID uuid.UUID) (*FullSummary, error) {
	summary := &FullSummary{EventId: eventID}

	g, gctx := errgroup.WithContext(ctx)

	// The schema lookup needs the event's type id from the canonical read;
	// the channel hands it over without serializing the whole fan-out.
	typeIDCh := make(chan *uuid.UUID, 1)

	// (a) Postgres — mandatory. Its error fails the whole read.
	g.Go(func() error {
		defer close(typeIDCh)

		row, err := s.Canonical.GetEventSummary(gctx, eventID)
		if err != nil {
			return err
		}
		count, err := s.Canonical.FinalizedCount(gctx, eventID)
		if err != nil {
			return err
		}

		summary.Postgres = PostgresSection{
			Description:              row.EventDescription,
			Address:                  row.EventAddress,
			TypeId:                   row.EventTypeId,
			TypeName:                 row.EventTypeName,
			FinalizedAttendanceCount: count,
		}
		typeIDCh <- row.EventTypeId
		return nil
	})

	// (b) MongoDB — best effort.
	g.Go(func() error {
		mctx, cancel := context.WithTimeout(gctx, s.SecondaryTimeout)
		defer cancel()

		section := MongoSection{Available: true}

		data, err := s.Flex.GetCustomData(mctx, eventID)
		switch {
		case err == nil:
			section.CustomData = data
		case err == store.ErrNotFound:
			// No custom data is a normal state, not an outage.
		default:
			section.Available = false
			section.Error = err.Error()
		}

		if section.Available {
			if typeID, ok := <-typeIDCh; ok && typeID != nil {
				// Fresh budget: the wait for the canonical read must not eat
				// into the schema query's timeout.
				sctx, scancel := context.WithTimeout(gctx, s.SecondaryTimeout)
				defer scancel()
				schema, err := s.Flex.GetSchema(sctx, *typeID)
				switch {
				case err == nil:
					section.EventTypeSchema = schema
				case err == store.ErrNotFound:
					// Type exists canonically but its schema write never
					// landed (schema_pending); the summary just omits it.
				default:
					section.Available = false
					section.Error = err.Error()
				}
			}
		}

		summary.Mongo = section
		return nil
	})

	// (c) Redis — best effort.
	g.Go(func() error {
		rctx, cancel := context.WithTimeout(gctx, s.SecondaryTimeout)
		defer cancel()

		section := RedisSection{Available: true}
		live, err := s.Live.GetPresence(rctx, eventID)
		if err != nil {
			section.Available = false
			section.Error = err.Error()
		} else {
			section.Live = live
		}

		summary.Redis = section
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
