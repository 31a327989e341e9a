// file: internals/features/students/controller/registration_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"youthgroup_backend/internals/features/students/dto"
	"youthgroup_backend/internals/features/students/model"
	helper "youthgroup_backend/internals/helpers"
)

type RegistrationController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewRegistrationController(db *gorm.DB) *RegistrationController {
	return &RegistrationController{DB: db, validate: validator.New()}
}

/* ===================== CREATE ===================== */
// POST /api/registrations
// Registering twice is not an error: the existing row comes back with a
// message instead.
func (ctrl *RegistrationController) CreateRegistration(c *fiber.Ctx) error {
	var req dto.CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var existing model.RegistrationModel
	err := ctrl.DB.WithContext(c.UserContext()).
		Where("registration_event_id = ? AND registration_student_id = ?", req.EventId, req.StudentId).
		Take(&existing).Error
	if err == nil {
		return helper.JsonOK(c, "Student already registered", existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check registration")
	}

	m := model.RegistrationModel{
		RegistrationEventId:    req.EventId,
		RegistrationStudentId:  req.StudentId,
		RegistrationSignUpDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create registration")
	}
	return helper.JsonCreated(c, "Registration created", m)
}

/* ===================== LIST PER EVENT ===================== */

// RegistrationRow joins the registration with the student's name for the
// per-event listing.
type RegistrationRow struct {
	RegistrationId   uuid.UUID `gorm:"column:registration_id"    json:"registration_id"`
	StudentId        uuid.UUID `gorm:"column:student_id"         json:"student_id"`
	StudentFirstName string    `gorm:"column:student_first_name" json:"student_first_name"`
	StudentLastName  string    `gorm:"column:student_last_name"  json:"student_last_name"`
	StudentGrade     *int      `gorm:"column:student_grade"      json:"student_grade,omitempty"`
}

// GET /api/events/:id/registrations
func (ctrl *RegistrationController) GetEventRegistrations(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}

	var rows []RegistrationRow
	err = ctrl.DB.WithContext(c.UserContext()).
		Table("registrations").
		Select("registrations.registration_id, students.student_id, students.student_first_name, students.student_last_name, students.student_grade").
		Joins("JOIN students ON students.student_id = registrations.registration_student_id").
		Where("registrations.registration_event_id = ?", eventID).
		Order("students.student_last_name ASC").
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list registrations")
	}
	return helper.JsonOK(c, "Event registrations", rows)
}
