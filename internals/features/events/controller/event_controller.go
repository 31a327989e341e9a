// file: internals/features/events/controller/event_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"youthgroup_backend/internals/configs"
	"youthgroup_backend/internals/features/events/dto"
	"youthgroup_backend/internals/features/events/service"
	"youthgroup_backend/internals/features/events/store"
	typesvc "youthgroup_backend/internals/features/event_types/service"
	helper "youthgroup_backend/internals/helpers"
)

type EventController struct {
	Canonical *store.CanonicalEventStore
	Flex      *store.FlexDocStore
	Live      *store.LiveAttendanceStore
	Summary   *service.SummaryService
	Registry  *typesvc.EventTypeRegistry

	ValidationPolicy string
	validate         *validator.Validate
}

func NewEventController(
	canonical *store.CanonicalEventStore,
	flex *store.FlexDocStore,
	live *store.LiveAttendanceStore,
	summary *service.SummaryService,
	registry *typesvc.EventTypeRegistry,
	validationPolicy string,
) *EventController {
	return &EventController{
		Canonical:        canonical,
		Flex:             flex,
		Live:             live,
		Summary:          summary,
		Registry:         registry,
		ValidationPolicy: validationPolicy,
		validate:         validator.New(),
	}
}

func parseEventID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid event id")
	}
	return id, nil
}

/* ===================== CREATE ===================== */
// POST /api/events
func (ctrl *EventController) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := ctrl.checkCustomDataPolicy(c, req.EventTypeId, req.CustomData); err != nil {
		return err
	}

	// 1) Canonical write first — identity comes from here, and its failure
	//    fails the whole command.
	m := req.ToModel()
	eventID, err := ctrl.Canonical.CreateEvent(c.UserContext(), m)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create event")
	}

	// 2) Best-effort custom data write, keyed by the new id. A failure here
	//    never rolls back the event; it is reported in the response instead.
	customDataStored := false
	if req.CustomData != nil {
		if err := ctrl.Flex.PutCustomData(c.UserContext(), eventID, req.CustomData); err != nil {
			log.Printf("[WARN] event %s created without custom data, flex store write failed: %v", eventID, err)
		} else {
			customDataStored = true
		}
	}

	return helper.JsonCreated(c, "Event created", fiber.Map{
		"event":              m,
		"custom_data_stored": customDataStored,
	})
}

/* ===================== READ ===================== */
// GET /api/events
func (ctrl *EventController) GetEvents(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	events, total, err := ctrl.Canonical.ListEvents(c.UserContext(), paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list events")
	}
	return helper.JsonList(c, "Events fetched", events,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/events/top-attended
func (ctrl *EventController) GetTopAttendedEvents(c *fiber.Ctx) error {
	rows, err := ctrl.Canonical.TopAttendedEvents(c.UserContext(), c.QueryInt("limit", 3))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to compute top attended events")
	}
	return helper.JsonOK(c, "Top attended events", rows)
}

// GET /api/events/:id
func (ctrl *EventController) GetEvent(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	event, err := ctrl.Canonical.GetEvent(c.UserContext(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch event")
	}
	return helper.JsonOK(c, "Event fetched", event)
}

// GET /api/events/:id/full-summary
// The composite read: Postgres is mandatory, Mongo and Redis degrade to
// explicit unavailable sections instead of failing the request.
func (ctrl *EventController) GetFullSummary(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	summary, err := ctrl.Summary.FullSummary(c.UserContext(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to read event summary")
	}
	return helper.JsonOK(c, "Event full summary", summary)
}

/* ===================== UPDATE ===================== */
// PUT /api/events/:id
func (ctrl *EventController) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	updates := req.ToUpdates()
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	event, err := ctrl.Canonical.UpdateEvent(c.UserContext(), eventID, updates)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update event")
	}
	return helper.JsonUpdated(c, "Event updated", event)
}

/* ===================== DELETE ===================== */
// DELETE /api/events/:id
func (ctrl *EventController) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	err = ctrl.Canonical.DeleteEvent(c.UserContext(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete event")
	}

	// Best-effort cleanup of the secondary stores; the canonical delete is
	// already committed, so failures here only leave orphans to sweep later.
	if err := ctrl.Flex.DeleteCustomData(c.UserContext(), eventID); err != nil {
		log.Printf("[WARN] event %s deleted, custom data cleanup failed: %v", eventID, err)
	}
	if err := ctrl.Live.Clear(c.UserContext(), eventID); err != nil {
		log.Printf("[WARN] event %s deleted, live attendance cleanup failed: %v", eventID, err)
	}

	return helper.JsonDeleted(c, "Event deleted", fiber.Map{"event_id": eventID})
}

/* ===================== CUSTOM FIELDS ===================== */
// GET /api/events/:id/custom-fields
func (ctrl *EventController) GetCustomFields(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	data, err := ctrl.Flex.GetCustomData(c.UserContext(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonOK(c, "No custom data found", fiber.Map{
			"event_id":    eventID,
			"custom_data": nil,
		})
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Custom field store unavailable")
	}
	return helper.JsonOK(c, "Custom fields fetched", fiber.Map{
		"event_id":    eventID,
		"custom_data": data,
	})
}

// PUT /api/events/:id/custom-fields
// Full replace, no merge: the stored document becomes exactly the payload.
func (ctrl *EventController) PutCustomFields(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	var req dto.CustomDataRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	event, err := ctrl.Canonical.GetEvent(c.UserContext(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch event")
	}

	if err := ctrl.checkCustomDataPolicy(c, event.EventTypeId, req.CustomData); err != nil {
		return err
	}

	if err := ctrl.Flex.PutCustomData(c.UserContext(), eventID, req.CustomData); err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Custom field store unavailable")
	}
	return helper.JsonUpdated(c, "Custom fields replaced", fiber.Map{
		"event_id":    eventID,
		"custom_data": req.CustomData,
	})
}

/* ===================== MONTHLY LEADERBOARD ===================== */
// GET /api/leaderboard/monthly?month=YYYY-MM&limit=3
func (ctrl *EventController) GetMonthlyLeaderboard(c *fiber.Ctx) error {
	month := c.Query("month")
	if month == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Month parameter (YYYY-MM) is required")
	}

	entries, err := ctrl.Flex.MonthlyLeaderboard(c.UserContext(), month, c.QueryInt("limit", 3))
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Leaderboard store unavailable")
	}
	return helper.JsonOK(c, "Monthly leaderboard", fiber.Map{
		"month":       month,
		"metric":      "attendance",
		"leaderboard": entries,
	})
}

// checkCustomDataPolicy enforces strict custom-data validation when the
// policy asks for it. With the default "off" policy any payload passes, as
// in the legacy system.
func (ctrl *EventController) checkCustomDataPolicy(c *fiber.Ctx, typeID *uuid.UUID, data map[string]any) error {
	if ctrl.ValidationPolicy != configs.ValidationStrict || data == nil {
		return nil
	}
	if typeID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest,
			"Custom data requires an event type under the strict validation policy")
	}

	view, err := ctrl.Registry.Get(c.UserContext(), *typeID)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Unknown event type")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load event type")
	}
	if !view.SchemaAvailable {
		// Strict validation cannot run without the schema; fail closed.
		return helper.JsonError(c, fiber.StatusServiceUnavailable,
			"Event type schema unavailable, cannot validate custom data")
	}
	if err := typesvc.ValidateCustomData(view.Fields, data); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
