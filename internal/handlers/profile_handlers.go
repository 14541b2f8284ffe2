package handlers

import (
	"github.com/Blessan-Corley/fixly-server/internal/middleware"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /users/me.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.profile.Get(c.Context(), middleware.SessionClaims(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": user})
}

// UpdateProfile handles PUT /users/me. Only the allowed fields are
// touched; the rest of the body is ignored.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	user, err := h.profile.Update(c.Context(), middleware.SessionClaims(c), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "profile updated",
		"user":    user,
	})
}
