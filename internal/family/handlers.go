package family

import (
	"errors"

	"backend-drivemate/internal/auth"
	"backend-drivemate/internal/profile"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/:familyID/dashboard", authMiddleware, auth.RequireDriver("familyID"), func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext(), c.Params("familyID"))
		if errors.Is(err, profile.ErrFamilyNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "family not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(d)
	})
}
