package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/mailer"
	"github.com/Blessan-Corley/fixly-server/internal/metrics"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns signup reconciliation, login and the availability
// lookups around them.
type AuthService struct {
	users      repository.UserRepository
	mail       mailer.Mailer
	tokens     *utils.TokenManager
	logger     *zap.Logger
	production bool
	hashCost   int
}

func NewAuthService(users repository.UserRepository, mail mailer.Mailer, tokens *utils.TokenManager, logger *zap.Logger, production bool, hashCost int) *AuthService {
	return &AuthService{
		users:      users,
		mail:       mail,
		tokens:     tokens,
		logger:     logger,
		production: production,
		hashCost:   hashCost,
	}
}

func newWelcomeNotification(role string) models.Notification {
	msg := "Welcome to Fixly! Complete your profile and post your first job."
	if role == models.RoleFixer {
		msg = "Welcome to Fixly! Browse nearby jobs and start earning."
	}
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      "welcome",
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
}

// Signup runs the account reconciliation state machine. sess is the
// caller's session claims when one exists; it is only required for the
// google method.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest, sess *utils.SessionClaims) (*models.PublicUser, error) {
	norm, ferrs := validation.Signup(req, s.production)
	if ferrs != nil {
		metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "validation").Inc()
		return nil, ferrs
	}

	if validation.LooksFake(norm.Name, norm.Email, norm.Username) {
		metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "rejected").Inc()
		s.logger.Warn("signup flagged by fake-account heuristic", zap.String("email", norm.Email))
		return nil, ErrFakeAccount
	}

	switch req.AuthMethod {
	case models.AuthMethodGoogle:
		// Prevents signup on behalf of another identity: the session
		// must belong to the exact email being registered.
		if sess == nil || sess.Email != norm.Email {
			metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "unauthorized").Inc()
			return nil, ErrGoogleSessionMismatch
		}
	case models.AuthMethodPhone:
		if req.ExternalID == "" {
			return nil, validation.FieldErrors{"external_id": "phone signup requires a verified identity id"}
		}
	}

	// Friendly duplicate pre-check. The store's uniqueness constraint
	// remains the authority; a race here still fails on create below
	// with the same 409 semantics.
	existing, err := s.users.FindConflict(ctx, norm.Email, norm.Username, norm.Phone, req.ExternalID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		if req.AuthMethod == models.AuthMethodGoogle && existing.IsTemp() && req.ExternalID != "" && existing.ExternalID == req.ExternalID {
			return s.upgradeTempAccount(ctx, existing, norm, req)
		}
		metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "duplicate").Inc()
		return nil, duplicateFieldOf(existing, norm)
	}

	user := &models.User{
		Name:       norm.Name,
		Username:   norm.Username,
		Email:      norm.Email,
		Phone:      norm.Phone,
		ExternalID: req.ExternalID,
		AuthMethod: req.AuthMethod,
		Providers:  []string{req.AuthMethod},
		Role:       norm.Role,
		Location:   req.Location,
		Notifications: []models.Notification{
			newWelcomeNotification(norm.Role),
		},
	}
	if norm.Role == models.RoleFixer {
		user.Skills = req.Skills
	}
	if req.AuthMethod == models.AuthMethodEmail {
		hash, err := bcrypt.GenerateFromPassword([]byte(norm.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if req.AuthMethod == models.AuthMethodGoogle {
		// Google already verified the email.
		user.EmailVerified = true
		user.IsVerified = true
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *repository.DuplicateFieldError
		if errors.As(err, &dup) {
			metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "duplicate").Inc()
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "success").Inc()
	s.sendWelcomeEmail(user)
	return user.Public(), nil
}

// upgradeTempAccount is the only signup path that mutates an existing
// record: a Google placeholder completing its profile. The update is a
// single atomic store write, so no record can remain half-migrated.
func (s *AuthService) upgradeTempAccount(ctx context.Context, existing *models.User, norm *validation.Normalized, req *models.SignupRequest) (*models.PublicUser, error) {
	now := time.Now().UTC()
	update := models.NewUpdate().
		SetField("name", norm.Name).
		SetField("username", norm.Username).
		SetField("phone", norm.Phone).
		SetField("role", norm.Role).
		SetField("location", req.Location).
		SetField("last_activity_at", now).
		PushField("notifications", newWelcomeNotification(norm.Role))
	if norm.Role == models.RoleFixer {
		update.SetField("skills", req.Skills)
	} else {
		update.UnsetField("skills")
	}

	if err := s.users.UpdateByID(ctx, existing.ID.Hex(), update); err != nil {
		var dup *repository.DuplicateFieldError
		if errors.As(err, &dup) {
			metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "duplicate").Inc()
			return nil, dup
		}
		return nil, fmt.Errorf("failed to upgrade account: %w", err)
	}

	metrics.SignupAttempts.WithLabelValues(req.AuthMethod, "upgrade").Inc()
	s.sendWelcomeEmail(existing)

	upgraded, err := s.users.FindByID(ctx, existing.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to reload upgraded account: %w", err)
	}
	return upgraded.Public(), nil
}

// duplicateFieldOf names the colliding field in the fixed precedence
// order email, username, phone, even when several collide at once.
func duplicateFieldOf(existing *models.User, norm *validation.Normalized) error {
	switch {
	case existing.Email == norm.Email:
		return &repository.DuplicateFieldError{Field: "email"}
	case existing.Username == norm.Username:
		return &repository.DuplicateFieldError{Field: "username"}
	case existing.Phone == norm.Phone:
		return &repository.DuplicateFieldError{Field: "phone"}
	default:
		return &repository.DuplicateFieldError{Field: "account"}
	}
}

// sendWelcomeEmail is a best-effort side effect after the store commit.
func (s *AuthService) sendWelcomeEmail(user *models.User) {
	if user.Email == "" {
		return
	}
	email, name := user.Email, user.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mail.SendWelcome(ctx, email, name); err != nil {
			s.logger.Warn("welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}()
}

// Login authenticates an email-method account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.PublicUser, string, error) {
	user, err := s.users.FindByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login lookup failed: %w", err)
	}
	if user.Banned {
		return nil, "", ErrAccountBanned
	}
	if user.AuthMethod != models.AuthMethodEmail || user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.GenerateSessionToken(user.ID.Hex(), user.Email, user.Username, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateByID(ctx, user.ID.Hex(), models.NewUpdate().
		SetField("last_login_at", now).
		SetField("last_activity_at", now)); err != nil {
		s.logger.Warn("failed to update last login time", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	return user.Public(), token, nil
}

// CheckUsername reports whether a username is well-formed and free.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, string, error) {
	norm := validation.NormalizeUsername(username)
	if msg := validation.CheckUsername(norm); msg != "" {
		return false, msg, validation.FieldErrors{"username": msg}
	}
	_, err := s.users.FindByUsername(ctx, norm)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, "username is available", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("username lookup failed: %w", err)
	}
	return false, "username is taken", nil
}

// SuggestUsernames returns up to five free, well-formed candidates.
func (s *AuthService) SuggestUsernames(ctx context.Context, base string) ([]string, error) {
	out := make([]string, 0, 5)
	for _, c := range validation.SuggestUsernames(base) {
		_, err := s.users.FindByUsername(ctx, c)
		if errors.Is(err, repository.ErrUserNotFound) {
			out = append(out, c)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("username lookup failed: %w", err)
		}
	}
	return out, nil
}

// CheckPhone reports whether a phone number is free.
func (s *AuthService) CheckPhone(ctx context.Context, phone string) (bool, error) {
	norm, ok := validation.NormalizePhone(phone)
	if !ok {
		return false, validation.FieldErrors{"phone": "invalid mobile number"}
	}
	_, err := s.users.FindByPhone(ctx, norm)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("phone lookup failed: %w", err)
	}
	return false, nil
}
