// file: internals/features/students/controller/student_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"youthgroup_backend/internals/features/students/dto"
	"youthgroup_backend/internals/features/students/model"
	helper "youthgroup_backend/internals/helpers"
)

type StudentController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db, validate: validator.New()}
}

func parseStudentID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid student id")
	}
	return id, nil
}

/* ===================== CREATE ===================== */
// POST /api/students
func (ctrl *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel()
	if err := ctrl.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create student")
	}
	return helper.JsonCreated(c, "Student created", m)
}

/* ===================== READ ===================== */
// GET /api/students
func (ctrl *StudentController) GetStudents(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.StudentModel{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count students")
	}

	var students []model.StudentModel
	err := ctrl.DB.WithContext(c.UserContext()).
		Order("student_last_name ASC, student_first_name ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&students).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list students")
	}

	return helper.JsonList(c, "Students fetched", students,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/students/:id
func (ctrl *StudentController) GetStudent(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	var m model.StudentModel
	err = ctrl.DB.WithContext(c.UserContext()).
		Where("student_id = ?", studentID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch student")
	}
	return helper.JsonOK(c, "Student fetched", m)
}

/* ===================== UPDATE ===================== */
// PUT /api/students/:id
func (ctrl *StudentController) UpdateStudent(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStudentRequest
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

	res := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.StudentModel{}).
		Where("student_id = ?", studentID).
		Updates(updates)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update student")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
	}

	var m model.StudentModel
	if err := ctrl.DB.WithContext(c.UserContext()).
		Where("student_id = ?", studentID).
		Take(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch student")
	}
	return helper.JsonUpdated(c, "Student updated", m)
}

/* ===================== DELETE ===================== */
// DELETE /api/students/:id
func (ctrl *StudentController) DeleteStudent(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	res := ctrl.DB.WithContext(c.UserContext()).
		Where("student_id = ?", studentID).
		Delete(&model.StudentModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete student")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
	}
	return helper.JsonDeleted(c, "Student deleted", fiber.Map{"student_id": studentID})
}
