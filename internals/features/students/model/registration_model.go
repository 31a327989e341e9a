package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationModel struct {
	RegistrationId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:registration_id" json:"registration_id"`

	RegistrationEventId   uuid.UUID `gorm:"type:uuid;not null;column:registration_event_id;uniqueIndex:uq_registration_event_student"   json:"registration_event_id"`
	RegistrationStudentId uuid.UUID `gorm:"type:uuid;not null;column:registration_student_id;uniqueIndex:uq_registration_event_student" json:"registration_student_id"`

	RegistrationSignUpDate time.Time `gorm:"type:date;not null;column:registration_sign_up_date" json:"registration_sign_up_date"`

	RegistrationCreatedAt time.Time `gorm:"column:registration_created_at;autoCreateTime" json:"registration_created_at"`
}

func (RegistrationModel) TableName() string { return "registrations" }

func (m *RegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if m.RegistrationId == uuid.Nil {
		m.RegistrationId = uuid.New()
	}
	return nil
}
