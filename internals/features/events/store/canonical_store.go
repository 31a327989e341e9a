// file: internals/features/events/store/canonical_store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"youthgroup_backend/internals/features/events/model"
)

// ErrNotFound is the store-level not-found sentinel; controllers translate
// it to 404.
var ErrNotFound = errors.New("record not found")

// FinalizedRecord is one (event, student) attendance fact promoted out of
// the live store.
type FinalizedRecord struct {
	StudentId    uuid.UUID
	CheckinTime  time.Time
	CheckoutTime *time.Time
}

// TopEvent is the aggregate row for the top-attended listing.
type TopEvent struct {
	EventId          uuid.UUID `gorm:"column:event_id"          json:"event_id"`
	EventDescription string    `gorm:"column:event_description" json:"event_description"`
	AttendanceCount  int64     `gorm:"column:attendance_count"  json:"attendance_count"`
}

// CanonicalEventStore is the Postgres adapter for events and finalized
// attendance. It is the one store whose failures are fatal to callers.
type CanonicalEventStore struct {
	DB *gorm.DB
}

func NewCanonicalEventStore(db *gorm.DB) *CanonicalEventStore {
	return &CanonicalEventStore{DB: db}
}

/* ===================== EVENTS ===================== */

func (s *CanonicalEventStore) CreateEvent(ctx context.Context, m *model.EventModel) (uuid.UUID, error) {
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return uuid.Nil, err
	}
	return m.EventId, nil
}

func (s *CanonicalEventStore) GetEvent(ctx context.Context, eventID uuid.UUID) (*model.EventModel, error) {
	var m model.EventModel
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *CanonicalEventStore) ListEvents(ctx context.Context, offset, limit int) ([]model.EventModel, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&model.EventModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []model.EventModel
	err := s.DB.WithContext(ctx).
		Order("event_created_at ASC").
		Offset(offset).Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *CanonicalEventStore) UpdateEvent(ctx context.Context, eventID uuid.UUID, updates map[string]any) (*model.EventModel, error) {
	res := s.DB.WithContext(ctx).
		Model(&model.EventModel{}).
		Where("event_id = ?", eventID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetEvent(ctx, eventID)
}

func (s *CanonicalEventStore) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ?", eventID).Delete(&model.EventModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// Registrations go with the event (the FK is by convention, so the
		// cleanup is explicit).
		return tx.Exec("DELETE FROM registrations WHERE registration_event_id = ?", eventID).Error
	})
}

func (s *CanonicalEventStore) TopAttendedEvents(ctx context.Context, limit int) ([]TopEvent, error) {
	if limit <= 0 {
		limit = 3
	}
	var rows []TopEvent
	err := s.DB.WithContext(ctx).
		Table("events").
		Select("events.event_id, events.event_description, COUNT(event_attendance.event_attendance_id) AS attendance_count").
		Joins("JOIN event_attendance ON event_attendance.event_attendance_event_id = events.event_id").
		Where("events.event_deleted_at IS NULL").
		Group("events.event_id, events.event_description").
		Order("attendance_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// EventSummaryRow is the canonical slice of the full-summary read: base
// event joined with its type's name.
type EventSummaryRow struct {
	EventId          uuid.UUID  `gorm:"column:event_id"          json:"event_id"`
	EventDescription string     `gorm:"column:event_description" json:"event_description"`
	EventAddress     *string    `gorm:"column:event_address"     json:"event_address,omitempty"`
	EventTypeId      *uuid.UUID `gorm:"column:event_type_id"     json:"event_type_id,omitempty"`
	EventTypeName    *string    `gorm:"column:event_type_name"   json:"event_type_name,omitempty"`
}

func (s *CanonicalEventStore) GetEventSummary(ctx context.Context, eventID uuid.UUID) (*EventSummaryRow, error) {
	var row EventSummaryRow
	res := s.DB.WithContext(ctx).
		Table("events").
		Select("events.event_id, events.event_description, events.event_address, events.event_type_id, event_types.event_type_name").
		Joins("LEFT JOIN event_types ON event_types.event_type_id = events.event_type_id").
		Where("events.event_id = ? AND events.event_deleted_at IS NULL", eventID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

/* ===================== FINALIZED ATTENDANCE ===================== */

func (s *CanonicalEventStore) FinalizedCount(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&model.EventAttendanceModel{}).
		Where("event_attendance_event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

// AppendFinalizedRecords writes the whole batch plus the audit row in one
// transaction. The unique (event, student) index with DO NOTHING makes a
// retried finalize skip students that already landed.
func (s *CanonicalEventStore) AppendFinalizedRecords(ctx context.Context, eventID uuid.UUID, records []FinalizedRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]model.EventAttendanceModel, 0, len(records))
	snapshot := datatypes.JSONMap{}
	for _, r := range records {
		rows = append(rows, model.EventAttendanceModel{
			EventAttendanceEventId:      eventID,
			EventAttendanceStudentId:    r.StudentId,
			EventAttendanceCheckinTime:  r.CheckinTime,
			EventAttendanceCheckoutTime: r.CheckoutTime,
		})
		entry := map[string]any{"checkin": r.CheckinTime.Format(time.RFC3339)}
		if r.CheckoutTime != nil {
			entry["checkout"] = r.CheckoutTime.Format(time.RFC3339)
		}
		snapshot[r.StudentId.String()] = entry
	}

	inserted := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "event_attendance_event_id"},
				{Name: "event_attendance_student_id"},
			},
			DoNothing: true,
		}).Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		inserted = int(res.RowsAffected)

		return tx.Create(&model.EventFinalizationModel{
			EventFinalizationEventId:     eventID,
			EventFinalizationRecordCount: inserted,
			EventFinalizationSnapshot:    snapshot,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
