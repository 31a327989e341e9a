package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventFinalizationModel is an audit row written in the same transaction as
// the attendance batch, recording what was promoted out of Redis and when.
type EventFinalizationModel struct {
	EventFinalizationId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:event_finalization_id" json:"event_finalization_id"`

	EventFinalizationEventId     uuid.UUID         `gorm:"type:uuid;not null;column:event_finalization_event_id;index" json:"event_finalization_event_id"`
	EventFinalizationRecordCount int               `gorm:"not null;column:event_finalization_record_count"             json:"event_finalization_record_count"`
	EventFinalizationSnapshot    datatypes.JSONMap `gorm:"column:event_finalization_snapshot"                          json:"event_finalization_snapshot,omitempty"`

	EventFinalizationCreatedAt time.Time `gorm:"column:event_finalization_created_at;autoCreateTime" json:"event_finalization_created_at"`
}

func (EventFinalizationModel) TableName() string { return "event_finalizations" }

func (m *EventFinalizationModel) BeforeCreate(tx *gorm.DB) error {
	if m.EventFinalizationId == uuid.Nil {
		m.EventFinalizationId = uuid.New()
	}
	return nil
}
