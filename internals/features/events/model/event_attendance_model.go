package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventAttendanceModel is the durable attendance row written by finalization.
// One row per (event, student); the unique index makes finalize retries
// idempotent per student.
type EventAttendanceModel struct {
	EventAttendanceId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:event_attendance_id" json:"event_attendance_id"`

	EventAttendanceEventId   uuid.UUID `gorm:"type:uuid;not null;column:event_attendance_event_id;uniqueIndex:uq_event_attendance_event_student"   json:"event_attendance_event_id"`
	EventAttendanceStudentId uuid.UUID `gorm:"type:uuid;not null;column:event_attendance_student_id;uniqueIndex:uq_event_attendance_event_student" json:"event_attendance_student_id"`

	EventAttendanceCheckinTime time.Time `gorm:"not null;column:event_attendance_checkin_time" json:"event_attendance_checkin_time"`
	// Nil means the student was still present when the event was finalized.
	EventAttendanceCheckoutTime *time.Time `gorm:"column:event_attendance_checkout_time" json:"event_attendance_checkout_time,omitempty"`

	EventAttendanceCreatedAt time.Time `gorm:"column:event_attendance_created_at;autoCreateTime" json:"event_attendance_created_at"`
}

func (EventAttendanceModel) TableName() string { return "event_attendance" }

func (m *EventAttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.EventAttendanceId == uuid.Nil {
		m.EventAttendanceId = uuid.New()
	}
	return nil
}
