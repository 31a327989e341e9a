package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"youthgroup_backend/internals/configs"
	database "youthgroup_backend/internals/databases"
	eventmodel "youthgroup_backend/internals/features/events/model"
	eventstore "youthgroup_backend/internals/features/events/store"
	typemodel "youthgroup_backend/internals/features/event_types/model"
	studentmodel "youthgroup_backend/internals/features/students/model"
	middlewares "youthgroup_backend/internals/middlewares"
	routes "youthgroup_backend/internals/route"
)

func main() {
	cfg := configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	// ⚙️ base middleware + performance
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing + per-request timeout guard
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 Canonical store: required, fail fast.
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	database.TunePool(db)
	database.WarmUp(db)

	if err := db.AutoMigrate(
		&eventmodel.EventModel{},
		&eventmodel.EventAttendanceModel{},
		&eventmodel.EventFinalizationModel{},
		&typemodel.EventTypeModel{},
		&studentmodel.StudentModel{},
		&studentmodel.RegistrationModel{},
	); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}

	// 🔌 Secondary stores: a bad URL fails fast, an absent one degrades.
	mongoDB, err := database.ConnectMongo(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer database.CloseMongo(mongoDB)

	if mongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := eventstore.NewFlexDocStore(mongoDB).EnsureIndexes(ctx); err != nil {
			log.Printf("[WARN] mongo index setup: %v", err)
		}
		cancel()
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, &routes.Deps{Cfg: cfg, DB: db, Mongo: mongoDB, Redis: rdb})

	// 🔒 server connection timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + close pools
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
