package handlers

import (
	"errors"

	"github.com/Blessan-Corley/fixly-server/internal/identity"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/services"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ok writes the standard success envelope.
func ok(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func fail(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// respondError converts a service error into the response envelope.
// Internal detail never crosses the boundary except under the
// development flag.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var ferrs validation.FieldErrors
	if errors.As(err, &ferrs) {
		return fail(c, fiber.StatusBadRequest, "validation failed", fiber.Map{"errors": ferrs})
	}
	var dup *repository.DuplicateFieldError
	if errors.As(err, &dup) {
		return fail(c, fiber.StatusConflict, dup.Field+" already exists", nil)
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrGoogleSessionMismatch),
		errors.Is(err, services.ErrSessionInvalid):
		return fail(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrProfileIncomplete):
		return fail(c, fiber.StatusUnauthorized, err.Error(), fiber.Map{"profile_required": true})
	case errors.Is(err, services.ErrAccountBanned),
		errors.Is(err, services.ErrAdminImmutable):
		return fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoPhoneAccount):
		return fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrFakeAccount),
		errors.Is(err, services.ErrInvalidOrExpiredToken),
		errors.Is(err, services.ErrPhoneMismatch):
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrEmailDispatch),
		errors.Is(err, identity.ErrLookupFailed):
		return fail(c, fiber.StatusServiceUnavailable, "a dependency is unavailable, please try again", nil)
	}

	h.logger.Error("request failed", zap.Error(err))
	extra := fiber.Map{}
	if h.devMode {
		extra["detail"] = err.Error()
	}
	return fail(c, fiber.StatusInternalServerError, "something went wrong", extra)
}
