package routes

import (
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/config"
	"github.com/Blessan-Corley/fixly-server/internal/handlers"
	"github.com/Blessan-Corley/fixly-server/internal/middleware"
	"github.com/Blessan-Corley/fixly-server/internal/ratelimit"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps carries everything the route table needs to assemble its
// middleware chains.
type Deps struct {
	Handler *handlers.Handler
	Tokens  *utils.TokenManager
	Limiter *ratelimit.Limiter
	Limits  config.RateLimitCfg
	Mongo   *mongo.Client
	Redis   *redis.Client
}

// Setup mounts the full route table. Every mutating public endpoint
// sits behind a per-action fixed-window rate limit.
func Setup(app *fiber.App, d *Deps) {
	limit := func(action string, count int, window time.Duration) fiber.Handler {
		return middleware.RateLimit(d.Limiter, action, count, window)
	}

	app.Get("/healthz", handlers.Healthz(d.Mongo, d.Redis))

	api := app.Group("/api/v1")
	auth := api.Group("/auth")

	auth.Post("/signup",
		limit("signup", d.Limits.SignupPerHour, time.Hour),
		middleware.OptionalAuth(d.Tokens),
		d.Handler.Signup)
	auth.Post("/login",
		limit("login", d.Limits.LoginPerMinute, time.Minute),
		d.Handler.Login)

	auth.Get("/google", d.Handler.GoogleRedirect)
	auth.Get("/google/callback", d.Handler.GoogleCallback)

	auth.Post("/username/check",
		limit("username_check", d.Limits.UsernameCheckPerMinute, time.Minute),
		d.Handler.CheckUsername)
	auth.Get("/username/suggestions",
		limit("username_check", d.Limits.UsernameCheckPerMinute, time.Minute),
		d.Handler.SuggestUsernames)
	auth.Get("/phone/check",
		limit("phone_check", d.Limits.UsernameCheckPerMinute, time.Minute),
		d.Handler.CheckPhone)

	auth.Post("/forgot-password",
		limit("forgot_password", d.Limits.ForgotPerQuarterHour, 15*time.Minute),
		d.Handler.ForgotPassword)
	auth.Post("/reset-password",
		limit("reset_password", d.Limits.ResetPerHour, time.Hour),
		d.Handler.ResetPassword)

	auth.Post("/verify-otp",
		limit("verify_otp", d.Limits.OTPPerMinute, time.Minute),
		d.Handler.VerifyOTP)

	auth.Post("/session",
		middleware.OptionalAuth(d.Tokens),
		d.Handler.Session)
	auth.Post("/logout", d.Handler.Logout)

	users := api.Group("/users", middleware.RequireAuth(d.Tokens))
	users.Get("/me",
		limit("profile_get", d.Limits.ProfileGetPerMinute, time.Minute),
		d.Handler.GetProfile)
	users.Put("/me",
		limit("profile_update", d.Limits.ProfileUpdatePerMinute, time.Minute),
		d.Handler.UpdateProfile)

	admin := api.Group("/admin", middleware.RequireAuth(d.Tokens), middleware.RequireAdmin())
	admin.Post("/users/action",
		limit("admin_action", d.Limits.AdminActionsPerMinute, time.Minute),
		d.Handler.AdminAction)
}
