// file: internals/features/events/controller/attendance_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"youthgroup_backend/internals/features/events/dto"
	"youthgroup_backend/internals/features/events/service"
	"youthgroup_backend/internals/features/events/store"
	studentmodel "youthgroup_backend/internals/features/students/model"
	helper "youthgroup_backend/internals/helpers"
)

// AttendanceController owns the live check-in desk: toggle, live snapshot,
// random winner, and the finalize command that promotes everything to
// Postgres.
type AttendanceController struct {
	DB        *gorm.DB
	Canonical *store.CanonicalEventStore
	Live      *store.LiveAttendanceStore
	Finalizer *service.FinalizationService

	validate *validator.Validate
}

func NewAttendanceController(
	db *gorm.DB,
	canonical *store.CanonicalEventStore,
	live *store.LiveAttendanceStore,
	finalizer *service.FinalizationService,
) *AttendanceController {
	return &AttendanceController{
		DB:        db,
		Canonical: canonical,
		Live:      live,
		Finalizer: finalizer,
		validate:  validator.New(),
	}
}

/* ===================== CHECK-IN TOGGLE ===================== */
// POST /api/events/:id/checkin
// One endpoint for both arrive and depart: already checked in means check
// out, otherwise check in. Only Redis is touched — Postgres sees nothing
// until finalize.
func (ctrl *AttendanceController) Checkin(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	var req dto.CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := ctrl.Canonical.GetEvent(c.UserContext(), eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch event")
	}

	status, err := ctrl.Live.TogglePresence(c.UserContext(), eventID, req.StudentId)
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Live attendance store unavailable")
	}

	return helper.JsonOK(c, "Check-in processed", fiber.Map{
		"status":     status,
		"student_id": req.StudentId,
		"event_id":   eventID,
	})
}

/* ===================== LIVE SNAPSHOT ===================== */
// GET /api/events/:id/attendance
func (ctrl *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	presence, err := ctrl.Live.GetPresence(c.UserContext(), eventID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Live attendance store unavailable")
	}
	return helper.JsonOK(c, "Live attendance", fiber.Map{
		"event_id":   eventID,
		"attendance": presence,
	})
}

/* ===================== FINALIZE ===================== */
// POST /api/events/:id/finalize-attendance
// Moves the live Redis record into permanent Postgres rows and deletes the
// Redis keys. Safe to retry; a concurrent call gets a 409.
func (ctrl *AttendanceController) FinalizeAttendance(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	result, err := ctrl.Finalizer.Finalize(c.UserContext(), eventID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Event not found")
	case errors.Is(err, service.ErrFinalizeInProgress):
		return helper.JsonError(c, fiber.StatusConflict, "Finalization already in progress for this event")
	case errors.Is(err, store.ErrLiveStoreUnavailable):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Live attendance store unavailable")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError,
			"Finalization failed, live data preserved — retry: "+err.Error())
	}

	return helper.JsonOK(c, "Attendance finalized", result)
}

/* ===================== RANDOM WINNER ===================== */
// GET /api/events/:id/random-winner
func (ctrl *AttendanceController) GetRandomWinner(c *fiber.Ctx) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	presence, err := ctrl.Live.GetPresence(c.UserContext(), eventID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Live attendance store unavailable")
	}
	if presence.CheckedInCount == 0 {
		return helper.JsonOK(c, "No students are currently checked in for this event", fiber.Map{
			"event_id":         eventID,
			"checked_in_count": 0,
		})
	}

	winnerRaw, err := ctrl.Live.RandomWinner(c.UserContext(), eventID)
	if err != nil || winnerRaw == "" {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Failed to pick a winner")
	}
	winnerID, err := uuid.Parse(winnerRaw)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Malformed student id in live data")
	}

	// Name lookup is canonical-side sugar; the winner stands even if the
	// student row is missing.
	var student studentmodel.StudentModel
	var firstName, lastName *string
	if err := ctrl.DB.WithContext(c.UserContext()).
		Where("student_id = ?", winnerID).
		Take(&student).Error; err == nil {
		firstName = &student.StudentFirstName
		lastName = &student.StudentLastName
	}

	return helper.JsonOK(c, "Random winner selected from currently checked-in students", fiber.Map{
		"event_id":         eventID,
		"checked_in_count": presence.CheckedInCount,
		"student_id":       winnerID,
		"first_name":       firstName,
		"last_name":        lastName,
	})
}
