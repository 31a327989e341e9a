package dto

import (
	"github.com/google/uuid"

	"youthgroup_backend/internals/features/students/model"
)

type CreateStudentRequest struct {
	StudentFirstName string  `json:"student_first_name" validate:"required,min=1,max=100"`
	StudentLastName  string  `json:"student_last_name"  validate:"required,min=1,max=100"`
	StudentGrade     *int    `json:"student_grade"      validate:"omitempty,min=1,max=12"`
	StudentPhone     *string `json:"student_phone"      validate:"omitempty,max=30"`
}

func (r *CreateStudentRequest) ToModel() *model.StudentModel {
	return &model.StudentModel{
		StudentFirstName: r.StudentFirstName,
		StudentLastName:  r.StudentLastName,
		StudentGrade:     r.StudentGrade,
		StudentPhone:     r.StudentPhone,
	}
}

type UpdateStudentRequest struct {
	StudentFirstName *string `json:"student_first_name" validate:"omitempty,min=1,max=100"`
	StudentLastName  *string `json:"student_last_name"  validate:"omitempty,min=1,max=100"`
	StudentGrade     *int    `json:"student_grade"      validate:"omitempty,min=1,max=12"`
	StudentPhone     *string `json:"student_phone"      validate:"omitempty,max=30"`
}

func (r *UpdateStudentRequest) ToUpdates() map[string]any {
	updates := map[string]any{}
	if r.StudentFirstName != nil {
		updates["student_first_name"] = *r.StudentFirstName
	}
	if r.StudentLastName != nil {
		updates["student_last_name"] = *r.StudentLastName
	}
	if r.StudentGrade != nil {
		updates["student_grade"] = *r.StudentGrade
	}
	if r.StudentPhone != nil {
		updates["student_phone"] = *r.StudentPhone
	}
	return updates
}

type CreateRegistrationRequest struct {
	EventId   uuid.UUID `json:"event_id"   validate:"required"`
	StudentId uuid.UUID `json:"student_id" validate:"required"`
}
