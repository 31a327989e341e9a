// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"youthgroup_backend/internals/configs"
	eventcontroller "youthgroup_backend/internals/features/events/controller"
	eventroute "youthgroup_backend/internals/features/events/route"
	eventservice "youthgroup_backend/internals/features/events/service"
	eventstore "youthgroup_backend/internals/features/events/store"
	typecontroller "youthgroup_backend/internals/features/event_types/controller"
	typeroute "youthgroup_backend/internals/features/event_types/route"
	typeservice "youthgroup_backend/internals/features/event_types/service"
	studentcontroller "youthgroup_backend/internals/features/students/controller"
	studentroute "youthgroup_backend/internals/features/students/route"
)

var startTime time.Time

// Deps carries the store handles built in main(). Everything downstream
// receives them explicitly; nothing reaches for a package global.
type Deps struct {
	Cfg   *configs.AppConfig
	DB    *gorm.DB
	Mongo *mongo.Database
	Redis *redis.Client
}

func SetupRoutes(app *fiber.App, deps *Deps) {
	startTime = time.Now()

	// ===================== STORE ADAPTERS =====================
	canonical := eventstore.NewCanonicalEventStore(deps.DB)
	flex := eventstore.NewFlexDocStore(deps.Mongo)
	live := eventstore.NewLiveAttendanceStore(deps.Redis)

	// ===================== SERVICES =====================
	registry := typeservice.NewEventTypeRegistry(deps.DB, flex)
	finalizer := eventservice.NewFinalizationService(canonical, live)
	summary := eventservice.NewSummaryService(canonical, flex, live)

	// ===================== CONTROLLERS =====================
	events := eventcontroller.NewEventController(
		canonical, flex, live, summary, registry, deps.Cfg.CustomDataValidation)
	attendance := eventcontroller.NewAttendanceController(deps.DB, canonical, live, finalizer)
	types := typecontroller.NewEventTypeController(registry, flex)
	students := studentcontroller.NewStudentController(deps.DB)
	registrations := studentcontroller.NewRegistrationController(deps.DB)

	// ===================== ROUTES =====================
	BaseRoutes(app, deps)

	api := app.Group("/api")

	log.Println("[INFO] Setting up EventRoutes...")
	eventroute.EventRoutes(api, events, attendance)

	log.Println("[INFO] Setting up EventTypeRoutes...")
	typeroute.EventTypeRoutes(api, types)

	log.Println("[INFO] Setting up StudentRoutes...")
	studentroute.StudentRoutes(api, students, registrations)
}
