package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentModel struct {
	StudentId uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_id" json:"student_id"`

	StudentFirstName string  `gorm:"not null;column:student_first_name" json:"student_first_name"`
	StudentLastName  string  `gorm:"not null;column:student_last_name"  json:"student_last_name"`
	StudentGrade     *int    `gorm:"column:student_grade"               json:"student_grade,omitempty"`
	StudentPhone     *string `gorm:"column:student_phone"               json:"student_phone,omitempty"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt *time.Time     `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at,omitempty"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index"          json:"student_deleted_at,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentId == uuid.Nil {
		m.StudentId = uuid.New()
	}
	return nil
}
