package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"backend-drivemate/internal/auth"
	"backend-drivemate/internal/config"
	"backend-drivemate/internal/db"
	"backend-drivemate/internal/family"
	"backend-drivemate/internal/logging"
	"backend-drivemate/internal/profile"
	"backend-drivemate/internal/store"
	"backend-drivemate/internal/stream"
	"backend-drivemate/internal/tracking"
	"backend-drivemate/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Deps are the connections the server builds on. Any of them may be nil when the
// backend is not configured.
type Deps struct {
	Postgres db.Querier
	Redis    *redis.Client
	SQLite   *sql.DB
	Logger   *slog.Logger
}

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Logger   *slog.Logger
	Trips    store.TripStore
	Stream   *stream.Hub
	Tracking *tracking.Service
}

func NewServer(ctx context.Context, cfg config.Config, deps Deps) (*Server, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	trips, err := store.New(ctx, cfg, deps.Postgres, deps.Redis, deps.SQLite)
	if err != nil {
		return nil, fmt.Errorf("trip store: %w", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(log)})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(logging.WithLogger(c.UserContext(), log))
		return c.Next()
	})

	hub := stream.NewHub(deps.Redis, log)
	s := &Server{
		App:    app,
		Cfg:    cfg,
		Logger: log,
		Trips:  trips,
		Stream: hub,
		Tracking: tracking.NewService(trips, hub, tracking.Options{
			TickInterval: cfg.TickInterval,
			Logger:       log,
		}),
	}

	registerRoutes(s, profile.NewService(deps.Postgres))
	return s, nil
}

func registerRoutes(s *Server, profiles *profile.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "active_trips": s.Tracking.Running()})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracking, jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/trips"), trip.NewService(s.Trips, profiles))
	family.RegisterRoutes(s.App.Group("/families"), family.NewService(profiles, s.Tracking), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

// Close abandons running trips and stops live fan-out.
func (s *Server) Close() error {
	s.Tracking.Close()
	return s.Stream.Close()
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logging.LogError(log, "request failed", err,
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Int("status", code))
		}
		return fiber.DefaultErrorHandler(c, err)
	}
}
