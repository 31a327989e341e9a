// file: internals/features/events/store/flexdoc_store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	typemodel "youthgroup_backend/internals/features/event_types/model"
)

// ErrFlexStoreUnavailable means MongoDB was not configured at boot. Callers
// must treat it (and any other error out of this store) as non-fatal.
var ErrFlexStoreUnavailable = errors.New("flexible attribute store unavailable")

// Collection names, carried over from the legacy deployment so existing data
// keeps working.
const (
	collEventTypes      = "eventTypes"
	collEventCustomData = "eventCustomData"
	collLeaderboard     = "monthly_event_leaderboard"
)

// LeaderboardEntry is one row of the monthly event leaderboard collection.
type LeaderboardEntry struct {
	Rank      int     `bson:"rank"      json:"rank"`
	EventId   string  `bson:"eventId"   json:"event_id"`
	EventName string  `bson:"eventName" json:"event_name"`
	Score     float64 `bson:"score"     json:"score"`
}

// FlexDocStore is the MongoDB adapter holding exactly two writable logical
// collections keyed by canonical ids: event type schemas (by typeId) and
// per-event custom data (by eventId). Writes are replace-with-upsert, so a
// second write for the same key overwrites instead of erroring.
type FlexDocStore struct {
	DB *mongo.Database
}

func NewFlexDocStore(db *mongo.Database) *FlexDocStore {
	return &FlexDocStore{DB: db}
}

func (s *FlexDocStore) available() error {
	if s.DB == nil {
		return ErrFlexStoreUnavailable
	}
	return nil
}

// EnsureIndexes creates the unique indexes on typeId and eventId. Safe to
// call on every boot.
func (s *FlexDocStore) EnsureIndexes(ctx context.Context) error {
	if err := s.available(); err != nil {
		return err
	}
	unique := options.Index().SetUnique(true)

	_, err := s.DB.Collection(collEventTypes).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "typeId", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = s.DB.Collection(collEventCustomData).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: unique,
	})
	return err
}

/* ===================== EVENT TYPE SCHEMAS ===================== */

func (s *FlexDocStore) PutSchema(ctx context.Context, typeID uuid.UUID, name string, description *string, fields []typemodel.SchemaField) error {
	if err := s.available(); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var existing typemodel.EventTypeSchemaDoc
	createdAt := now
	err := s.DB.Collection(collEventTypes).
		FindOne(ctx, bson.M{"typeId": typeID.String()}).
		Decode(&existing)
	if err == nil {
		createdAt = existing.CreatedAt
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	if fields == nil {
		fields = []typemodel.SchemaField{}
	}
	doc := typemodel.EventTypeSchemaDoc{
		TypeId:      typeID.String(),
		Name:        name,
		Description: description,
		Fields:      fields,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}

	_, err = s.DB.Collection(collEventTypes).ReplaceOne(ctx,
		bson.M{"typeId": typeID.String()}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *FlexDocStore) GetSchema(ctx context.Context, typeID uuid.UUID) (*typemodel.EventTypeSchemaDoc, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	var doc typemodel.EventTypeSchemaDoc
	err := s.DB.Collection(collEventTypes).
		FindOne(ctx, bson.M{"typeId": typeID.String()}).
		Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListSchemas returns every stored schema doc, MongoDB-side only. The
// canonical list of event types lives in Postgres; this is the showcase of
// the flexible half.
func (s *FlexDocStore) ListSchemas(ctx context.Context) ([]typemodel.EventTypeSchemaDoc, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	cursor, err := s.DB.Collection(collEventTypes).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []typemodel.EventTypeSchemaDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *FlexDocStore) DeleteSchema(ctx context.Context, typeID uuid.UUID) error {
	if err := s.available(); err != nil {
		return err
	}
	_, err := s.DB.Collection(collEventTypes).DeleteOne(ctx, bson.M{"typeId": typeID.String()})
	return err
}

/* ===================== PER-EVENT CUSTOM DATA ===================== */

func (s *FlexDocStore) PutCustomData(ctx context.Context, eventID uuid.UUID, data map[string]any) error {
	if err := s.available(); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	createdAt := now
	var existing bson.M
	err := s.DB.Collection(collEventCustomData).
		FindOne(ctx, bson.M{"eventId": eventID.String()}).
		Decode(&existing)
	if err == nil {
		if v, ok := existing["createdAt"].(string); ok {
			createdAt = v
		}
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	doc := bson.M{
		"eventId":    eventID.String(),
		"customData": data,
		"createdAt":  createdAt,
		"updatedAt":  now,
	}
	_, err = s.DB.Collection(collEventCustomData).ReplaceOne(ctx,
		bson.M{"eventId": eventID.String()}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *FlexDocStore) GetCustomData(ctx context.Context, eventID uuid.UUID) (map[string]any, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	var doc struct {
		CustomData map[string]any `bson:"customData"`
	}
	err := s.DB.Collection(collEventCustomData).
		FindOne(ctx, bson.M{"eventId": eventID.String()}).
		Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.CustomData, nil
}

func (s *FlexDocStore) DeleteCustomData(ctx context.Context, eventID uuid.UUID) error {
	if err := s.available(); err != nil {
		return err
	}
	_, err := s.DB.Collection(collEventCustomData).DeleteOne(ctx, bson.M{"eventId": eventID.String()})
	return err
}

/* ===================== MONTHLY LEADERBOARD ===================== */

// MonthlyLeaderboard reads the month's top events, sorted by score.
func (s *FlexDocStore) MonthlyLeaderboard(ctx context.Context, month string, limit int) ([]LeaderboardEntry, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	cursor, err := s.DB.Collection(collLeaderboard).Find(ctx,
		bson.M{"month": month},
		options.Find().
			SetSort(bson.D{{Key: "score", Value: -1}}).
			SetLimit(int64(limit)).
			SetProjection(bson.M{"_id": 0, "rank": 1, "eventId": 1, "eventName": 1, "score": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []LeaderboardEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
