package tracking

import (
	"errors"

	"backend-drivemate/internal/auth"
	"backend-drivemate/internal/triplog"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	owner := auth.RequireDriver("driverID")

	r.Post("/sessions/:driverID", authMiddleware, owner, func(c *fiber.Ctx) error {
		view, err := svc.Start(c.UserContext(), c.Params("driverID"))
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	})

	r.Post("/sessions/:driverID/fixes", authMiddleware, owner, func(c *fiber.Ctx) error {
		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		fix, err := req.toFix(svc.now())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.AddFix(c.UserContext(), c.Params("driverID"), fix)
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(result)
	})

	r.Post("/sessions/:driverID/ticks", authMiddleware, owner, func(c *fiber.Ctx) error {
		var req tickRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		now := req.Timestamp
		if now.IsZero() {
			now = svc.now()
		}
		view, err := svc.Tick(c.Params("driverID"), now)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(view)
	})

	r.Post("/sessions/:driverID/stop", authMiddleware, owner, func(c *fiber.Ctx) error {
		result, err := svc.Stop(c.UserContext(), c.Params("driverID"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(result)
	})

	r.Delete("/sessions/:driverID", authMiddleware, owner, func(c *fiber.Ctx) error {
		if err := svc.Abandon(c.Params("driverID")); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/sessions/:driverID", func(c *fiber.Ctx) error {
		view, err := svc.Live(c.Params("driverID"))
		if errors.Is(err, triplog.ErrNotRunning) {
			return fiber.NewError(fiber.StatusNotFound, "no running trip for driver")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(view)
	})
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, triplog.ErrAlreadyRunning), errors.Is(err, triplog.ErrNotRunning):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
