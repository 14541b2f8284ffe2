package handlers

import (
	"errors"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/middleware"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	sessionCookie    = "fixly_session"
	oauthStateCookie = "fixly_oauth_state"
)

func setSessionCookie(c *fiber.Ctx, token string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

// Signup handles POST /auth/signup for all three auth methods.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	user, err := h.auth.Signup(c.Context(), &req, middleware.SessionClaims(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusCreated, fiber.Map{
		"message": "account created",
		"user":    user,
	})
}

// Login handles POST /auth/login for email-method accounts.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	user, token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	setSessionCookie(c, token, !h.devMode)
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "login successful",
		"user":    user,
		"token":   token,
	})
}

// GoogleRedirect handles GET /auth/google: issues a state nonce and
// sends the browser to the consent page.
func (h *Handler) GoogleRedirect(c *fiber.Ctx) error {
	if !h.google.IsConfigured() {
		return fail(c, fiber.StatusServiceUnavailable, "google sign-in is not configured", nil)
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		Secure:   !h.devMode,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(h.google.AuthURL(state), fiber.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback: verifies the state
// nonce, exchanges the code, and signs the profile in (creating a
// placeholder account for first-time users).
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return fail(c, fiber.StatusBadRequest, "invalid oauth state", nil)
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return fail(c, fiber.StatusBadRequest, "missing authorization code", nil)
	}

	profile, err := h.google.Exchange(c.Context(), code)
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "google sign-in failed", nil)
	}

	user, token, err := h.auth.GoogleSignIn(c.Context(), profile)
	if err != nil {
		return h.respondError(c, err)
	}
	setSessionCookie(c, token, !h.devMode)
	return ok(c, fiber.StatusOK, fiber.Map{
		"message":          "google sign-in successful",
		"user":             user,
		"token":            token,
		"profile_required": !user.IsRegistered,
	})
}

// CheckUsername handles POST /auth/username/check. Invalid usernames
// get an explanation; taken ones get suggestions inline.
func (h *Handler) CheckUsername(c *fiber.Ctx) error {
	var req models.UsernameCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	available, msg, err := h.auth.CheckUsername(c.Context(), req.Username)
	if err != nil {
		var ferrs validation.FieldErrors
		if !errors.As(err, &ferrs) {
			return h.respondError(c, err)
		}
		// Malformed usernames are reported as unavailable with the rule
		// that failed, not as a request error.
		return ok(c, fiber.StatusOK, fiber.Map{"available": false, "message": msg})
	}

	body := fiber.Map{"available": available, "message": msg}
	if !available {
		suggestions, sErr := h.auth.SuggestUsernames(c.Context(), req.Username)
		if sErr == nil && len(suggestions) > 0 {
			body["suggestions"] = suggestions
		}
	}
	return ok(c, fiber.StatusOK, body)
}

// SuggestUsernames handles GET /auth/username/suggestions?username=...
func (h *Handler) SuggestUsernames(c *fiber.Ctx) error {
	base := c.Query("username")
	if base == "" {
		return fail(c, fiber.StatusBadRequest, "username query parameter is required", nil)
	}
	suggestions, err := h.auth.SuggestUsernames(c.Context(), base)
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"suggestions": suggestions})
}

// CheckPhone handles GET /auth/phone/check?phone=...
func (h *Handler) CheckPhone(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return fail(c, fiber.StatusBadRequest, "phone query parameter is required", nil)
	}
	available, err := h.auth.CheckPhone(c.Context(), phone)
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"available": available})
}

// ForgotPassword handles POST /auth/forgot-password. The message is the
// whole payload; it never confirms whether the account exists.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	msg, err := h.password.Request(c.Context(), req.Email)
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": msg})
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	if err := h.password.Complete(c.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "password has been reset, please log in"})
}

// VerifyOTP handles POST /auth/verify-otp for both signup and signin
// modes.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req models.OTPVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if m := utils.ValidateStruct(&req); m != nil {
		return h.respondError(c, validation.FieldErrors(m))
	}

	result, err := h.otp.Verify(c.Context(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	if result.Token != "" {
		setSessionCookie(c, result.Token, !h.devMode)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"result": result})
}

// Session handles POST /auth/session: reconciles the current session
// against the live record.
func (h *Handler) Session(c *fiber.Ctx) error {
	user, err := h.session.Resolve(c.Context(), middleware.SessionClaims(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": user})
}

// Logout handles POST /auth/logout: clears the session cookie. Tokens
// themselves stay valid until expiry.
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(sessionCookie)
	return ok(c, fiber.StatusOK, fiber.Map{"message": "logged out"})
}
