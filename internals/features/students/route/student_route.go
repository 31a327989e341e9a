// file: internals/features/students/route/student_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"youthgroup_backend/internals/features/students/controller"
)

func StudentRoutes(api fiber.Router, students *controller.StudentController, registrations *controller.RegistrationController) {
	r := api.Group("/students")
	r.Get("/", students.GetStudents)
	r.Post("/", students.CreateStudent)
	r.Get("/:id", students.GetStudent)
	r.Put("/:id", students.UpdateStudent)
	r.Delete("/:id", students.DeleteStudent)

	api.Post("/registrations", registrations.CreateRegistration)
	api.Get("/events/:id/registrations", registrations.GetEventRegistrations)
}
