package trip

import (
	"errors"
	"strconv"

	"backend-drivemate/internal/store"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/:driverID/dashboard", func(c *fiber.Ctx) error {
		limit, err := limitParam(c)
		if err != nil {
			return err
		}
		dashboard, err := svc.Dashboard(c.UserContext(), c.Params("driverID"), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(dashboard)
	})

	r.Get("/:driverID", func(c *fiber.Ctx) error {
		limit, err := limitParam(c)
		if err != nil {
			return err
		}
		trips, err := svc.History(c.UserContext(), c.Params("driverID"), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trips)
	})

	r.Get("/:driverID/:tripID", func(c *fiber.Ctx) error {
		trip, err := svc.Get(c.UserContext(), c.Params("driverID"), c.Params("tripID"))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(trip)
	})

	r.Get("/:driverID/:tripID/insights", func(c *fiber.Ctx) error {
		insights, err := svc.Insights(c.UserContext(), c.Params("driverID"), c.Params("tripID"))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(insights)
	})
}

func limitParam(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return DefaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}
	return limit, nil
}

func lookupError(err error) error {
	if errors.Is(err, store.ErrTripNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
