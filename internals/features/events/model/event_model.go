package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventModel struct {
	EventId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:event_id" json:"event_id"`

	// Optional link to event_types. Joined by convention only — the field
	// schema half of the type lives in MongoDB, keyed by the same id.
	EventTypeId *uuid.UUID `gorm:"type:uuid;column:event_type_id;index" json:"event_type_id,omitempty"`

	EventDescription string  `gorm:"not null;column:event_description" json:"event_description"`
	EventAddress     *string `gorm:"column:event_address"              json:"event_address,omitempty"`

	EventCreatedAt time.Time      `gorm:"column:event_created_at;autoCreateTime" json:"event_created_at"`
	EventUpdatedAt *time.Time     `gorm:"column:event_updated_at;autoUpdateTime" json:"event_updated_at,omitempty"`
	EventDeletedAt gorm.DeletedAt `gorm:"column:event_deleted_at;index"          json:"event_deleted_at,omitempty"`
}

func (EventModel) TableName() string { return "events" }

// BeforeCreate assigns the id when the database default is not in play
// (the sqlite test driver has no gen_random_uuid()).
func (m *EventModel) BeforeCreate(tx *gorm.DB) error {
	if m.EventId == uuid.Nil {
		m.EventId = uuid.New()
	}
	return nil
}
