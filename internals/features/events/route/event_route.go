// file: internals/features/events/route/event_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"youthgroup_backend/internals/features/events/controller"
	"youthgroup_backend/internals/middlewares"
)

func EventRoutes(api fiber.Router, events *controller.EventController, attendance *controller.AttendanceController) {
	r := api.Group("/events")

	// Static paths before the :id wildcard.
	r.Get("/top-attended", events.GetTopAttendedEvents)

	r.Get("/", events.GetEvents)
	r.Post("/", events.CreateEvent)
	r.Get("/:id", events.GetEvent)
	r.Put("/:id", events.UpdateEvent)
	r.Delete("/:id", events.DeleteEvent)

	r.Get("/:id/full-summary", events.GetFullSummary)
	r.Get("/:id/custom-fields", events.GetCustomFields)
	r.Put("/:id/custom-fields", events.PutCustomFields)

	r.Post("/:id/checkin", middlewares.CheckinRateLimiter(), attendance.Checkin)
	r.Get("/:id/attendance", attendance.GetAttendance)
	r.Post("/:id/finalize-attendance", attendance.FinalizeAttendance)
	r.Get("/:id/random-winner", attendance.GetRandomWinner)

	api.Get("/leaderboard/monthly", events.GetMonthlyLeaderboard)
}
