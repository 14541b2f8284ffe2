package handlers

import (
	"github.com/Blessan-Corley/fixly-server/internal/googleauth"
	"github.com/Blessan-Corley/fixly-server/internal/services"
	"go.uber.org/zap"
)

// Handler bundles the service layer behind the HTTP surface.
type Handler struct {
	auth     *services.AuthService
	password *services.PasswordResetService
	otp      *services.OTPService
	session  *services.SessionService
	profile  *services.ProfileService
	admin    *services.AdminService
	google   *googleauth.Client
	logger   *zap.Logger
	devMode  bool
}

func New(
	auth *services.AuthService,
	password *services.PasswordResetService,
	otp *services.OTPService,
	session *services.SessionService,
	profile *services.ProfileService,
	admin *services.AdminService,
	google *googleauth.Client,
	logger *zap.Logger,
	devMode bool,
) *Handler {
	return &Handler{
		auth:     auth,
		password: password,
		otp:      otp,
		session:  session,
		profile:  profile,
		admin:    admin,
		google:   google,
		logger:   logger,
		devMode:  devMode,
	}
}
