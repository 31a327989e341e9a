// file: internals/features/event_types/controller/event_type_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"youthgroup_backend/internals/features/event_types/dto"
	"youthgroup_backend/internals/features/event_types/service"
	"youthgroup_backend/internals/features/events/store"
	helper "youthgroup_backend/internals/helpers"
)

type EventTypeController struct {
	Registry *service.EventTypeRegistry
	Flex     *store.FlexDocStore

	validate *validator.Validate
}

func NewEventTypeController(registry *service.EventTypeRegistry, flex *store.FlexDocStore) *EventTypeController {
	return &EventTypeController{
		Registry: registry,
		Flex:     flex,
		validate: validator.New(),
	}
}

func parseTypeID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid event type id")
	}
	return id, nil
}

/* ===================== CREATE ===================== */
// POST /api/event-types
// Two physical writes behind one logical create: the Postgres row first
// (identity), then the field schema in MongoDB. A Mongo failure still
// returns 201 — the row is flagged schema_pending and the response says so.
func (ctrl *EventTypeController) CreateEventType(c *fiber.Ctx) error {
	var req dto.CreateEventTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := ctrl.Registry.Define(c.UserContext(), req.Name, req.Description, req.CustomFields)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create event type")
	}

	return helper.JsonCreated(c, "Event type created", fiber.Map{
		"event_type_id": result.EventTypeId,
		"name":          req.Name,
		"description":   req.Description,
		"custom_fields": req.CustomFields,
		"schema_stored": result.SchemaStored,
	})
}

/* ===================== READ ===================== */
// GET /api/event-types
func (ctrl *EventTypeController) GetEventTypes(c *fiber.Ctx) error {
	rows, err := ctrl.Registry.List(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list event types")
	}
	return helper.JsonOK(c, "Event types fetched", rows)
}

// GET /api/event-types/all-schemas
func (ctrl *EventTypeController) GetAllSchemas(c *fiber.Ctx) error {
	docs, err := ctrl.Flex.ListSchemas(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Schema store unavailable")
	}
	return helper.JsonOK(c, "Event type schemas fetched", docs)
}

// GET /api/event-types/:id
func (ctrl *EventTypeController) GetEventType(c *fiber.Ctx) error {
	typeID, err := parseTypeID(c)
	if err != nil {
		return err
	}

	view, err := ctrl.Registry.Get(c.UserContext(), typeID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event type not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch event type")
	}
	return helper.JsonOK(c, "Event type fetched", view)
}

/* ===================== UPDATE ===================== */
// PUT /api/event-types/:id
func (ctrl *EventTypeController) UpdateEventType(c *fiber.Ctx) error {
	typeID, err := parseTypeID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateEventTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := ctrl.Registry.Update(c.UserContext(), typeID, req.Name, req.Description, req.CustomFields)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event type not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update event type")
	}

	return helper.JsonUpdated(c, "Event type updated", fiber.Map{
		"event_type_id": typeID,
		"schema_stored": result.SchemaStored,
	})
}
