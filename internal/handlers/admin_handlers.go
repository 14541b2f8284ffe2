package handlers

import (
	"github.com/Blessan-Corley/fixly-server/internal/middleware"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// AdminAction handles POST /admin/users/action. The route is behind
// RequireAuth + RequireAdmin.
func (h *Handler) AdminAction(c *fiber.Ctx) error {
	var req models.AdminActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	result, err := h.admin.Do(c.Context(), middleware.SessionClaims(c), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"result": result})
}
