package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/identity"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"go.uber.org/zap"
)

const (
	OTPActionSignup = "signup"
	OTPActionSignin = "signin"
)

// OTPResult is what a successful verification returns. For signup mode
// it carries the verified phone and provider id for the later signup
// call; for signin mode it additionally carries the user and a session
// token.
type OTPResult struct {
	Verified   bool               `json:"verified"`
	Phone      string             `json:"phone"`
	ExternalID string             `json:"external_id,omitempty"`
	User       *models.PublicUser `json:"user,omitempty"`
	Token      string             `json:"token,omitempty"`
}

// OTPService cross-checks provider-verified phone identities. OTP
// delivery and code verification happen at the provider; this flow only
// reconciles the result with the identity store.
type OTPService struct {
	users    repository.UserRepository
	provider identity.Provider
	tokens   *utils.TokenManager
	logger   *zap.Logger
}

func NewOTPService(users repository.UserRepository, provider identity.Provider, tokens *utils.TokenManager, logger *zap.Logger) *OTPService {
	return &OTPService{users: users, provider: provider, tokens: tokens, logger: logger}
}

// Verify handles both OTP modes. The provider lookup must return a
// phone number exactly equal to the normalized candidate; anything else
// is a token/number substitution attempt.
func (s *OTPService) Verify(ctx context.Context, req *models.OTPVerifyRequest) (*OTPResult, error) {
	phone, ok := validation.NormalizePhone(req.PhoneNumber)
	if !ok {
		return nil, validation.FieldErrors{"phone_number": "invalid mobile number"}
	}

	ident, err := s.provider.Lookup(ctx, req.IDToken)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	identPhone, ok := validation.NormalizePhone(ident.PhoneNumber)
	if !ok || identPhone != phone {
		return nil, ErrPhoneMismatch
	}

	switch req.Action {
	case OTPActionSignup:
		return s.verifyForSignup(ctx, phone, ident.UID)
	case OTPActionSignin:
		return s.verifyForSignin(ctx, phone)
	default:
		return nil, validation.FieldErrors{"action": "action must be signup or signin"}
	}
}

// verifyForSignup confirms the phone is free. It never creates a
// record; the signup step does that with the returned identity.
func (s *OTPService) verifyForSignup(ctx context.Context, phone, uid string) (*OTPResult, error) {
	_, err := s.users.FindByPhone(ctx, phone)
	if err == nil {
		return nil, &repository.DuplicateFieldError{Field: "phone"}
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("phone lookup failed: %w", err)
	}
	return &OTPResult{Verified: true, Phone: phone, ExternalID: uid}, nil
}

func (s *OTPService) verifyForSignin(ctx context.Context, phone string) (*OTPResult, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNoPhoneAccount
		}
		return nil, fmt.Errorf("phone lookup failed: %w", err)
	}
	if user.AuthMethod != models.AuthMethodPhone {
		return nil, ErrNoPhoneAccount
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}

	token, _, err := s.tokens.GenerateSessionToken(user.ID.Hex(), user.Email, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateByID(ctx, user.ID.Hex(), models.NewUpdate().
		SetField("phone_verified", true).
		SetField("last_login_at", now).
		SetField("last_activity_at", now)); err != nil {
		s.logger.Warn("failed to update signin activity", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	} else {
		// The snapshot predates the update; the response must reflect
		// the committed flag.
		user.PhoneVerified = true
	}

	return &OTPResult{Verified: true, Phone: phone, User: user.Public(), Token: token}, nil
}
