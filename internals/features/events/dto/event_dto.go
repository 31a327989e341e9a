package dto

import (
	"github.com/google/uuid"

	"youthgroup_backend/internals/features/events/model"
)

type CreateEventRequest struct {
	EventDescription string         `json:"event_description" validate:"required,min=3,max=255"`
	EventAddress     *string        `json:"event_address"     validate:"omitempty,max=255"`
	EventTypeId      *uuid.UUID     `json:"event_type_id"`
	CustomData       map[string]any `json:"custom_data"`
}

func (r *CreateEventRequest) ToModel() *model.EventModel {
	return &model.EventModel{
		EventDescription: r.EventDescription,
		EventAddress:     r.EventAddress,
		EventTypeId:      r.EventTypeId,
	}
}

type UpdateEventRequest struct {
	EventDescription *string    `json:"event_description" validate:"omitempty,min=3,max=255"`
	EventAddress     *string    `json:"event_address"     validate:"omitempty,max=255"`
	EventTypeId      *uuid.UUID `json:"event_type_id"`
}

func (r *UpdateEventRequest) ToUpdates() map[string]any {
	updates := map[string]any{}
	if r.EventDescription != nil {
		updates["event_description"] = *r.EventDescription
	}
	if r.EventAddress != nil {
		updates["event_address"] = *r.EventAddress
	}
	if r.EventTypeId != nil {
		updates["event_type_id"] = *r.EventTypeId
	}
	return updates
}

type CheckinRequest struct {
	StudentId uuid.UUID `json:"student_id" validate:"required"`
}

type CustomDataRequest struct {
	CustomData map[string]any `json:"custom_data" validate:"required"`
}
