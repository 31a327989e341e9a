// file: internals/features/event_types/route/event_type_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"youthgroup_backend/internals/features/event_types/controller"
)

func EventTypeRoutes(api fiber.Router, types *controller.EventTypeController) {
	r := api.Group("/event-types")

	r.Get("/all-schemas", types.GetAllSchemas)

	r.Get("/", types.GetEventTypes)
	r.Post("/", types.CreateEventType)
	r.Get("/:id", types.GetEventType)
	r.Put("/:id", types.UpdateEventType)
}
