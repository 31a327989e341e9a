package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventTypeModel struct {
	EventTypeId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:event_type_id" json:"event_type_id"`

	EventTypeName        string  `gorm:"not null;column:event_type_name" json:"event_type_name"`
	EventTypeDescription *string `gorm:"column:event_type_description"   json:"event_type_description,omitempty"`

	// Set when the MongoDB schema write failed after the canonical insert.
	// A later successful schema update clears it.
	EventTypeSchemaPending bool `gorm:"not null;default:false;column:event_type_schema_pending" json:"event_type_schema_pending"`

	EventTypeCreatedAt time.Time      `gorm:"column:event_type_created_at;autoCreateTime" json:"event_type_created_at"`
	EventTypeUpdatedAt *time.Time     `gorm:"column:event_type_updated_at;autoUpdateTime" json:"event_type_updated_at,omitempty"`
	EventTypeDeletedAt gorm.DeletedAt `gorm:"column:event_type_deleted_at;index"          json:"event_type_deleted_at,omitempty"`
}

func (EventTypeModel) TableName() string { return "event_types" }

func (m *EventTypeModel) BeforeCreate(tx *gorm.DB) error {
	if m.EventTypeId == uuid.Nil {
		m.EventTypeId = uuid.New()
	}
	return nil
}
