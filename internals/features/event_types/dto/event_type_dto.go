package dto

import (
	"youthgroup_backend/internals/features/event_types/model"
)

type CreateEventTypeRequest struct {
	Name         string              `json:"name"        validate:"required,min=2,max=100"`
	Description  *string             `json:"description" validate:"omitempty,max=500"`
	CustomFields []model.SchemaField `json:"custom_fields" validate:"omitempty,dive"`
}

type UpdateEventTypeRequest struct {
	Name         *string             `json:"name"        validate:"omitempty,min=2,max=100"`
	Description  *string             `json:"description" validate:"omitempty,max=500"`
	CustomFields []model.SchemaField `json:"custom_fields" validate:"omitempty,dive"`
}
