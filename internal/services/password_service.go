package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/mailer"
	"github.com/Blessan-Corley/fixly-server/internal/metrics"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// genericResetMessage is returned for every request outcome that must
// not confirm account existence.
const genericResetMessage = "if an account exists for this email, a reset link has been sent"

// PasswordResetService drives the token lifecycle:
// idle -> requested -> tokenIssued -> consumed | expired | attemptsExhausted.
type PasswordResetService struct {
	users       repository.UserRepository
	mail        mailer.Mailer
	logger      *zap.Logger
	production  bool
	hashCost    int
	tokenTTL    time.Duration
	maxAttempts int
}

func NewPasswordResetService(users repository.UserRepository, mail mailer.Mailer, logger *zap.Logger, production bool, hashCost, ttlMinutes, maxAttempts int) *PasswordResetService {
	return &PasswordResetService{
		users:       users,
		mail:        mail,
		logger:      logger,
		production:  production,
		hashCost:    hashCost,
		tokenTTL:    time.Duration(ttlMinutes) * time.Minute,
		maxAttempts: maxAttempts,
	}
}

// Request issues a reset token for an email-method account. The raw
// token travels only through the email channel; the store keeps its
// bcrypt hash, an absolute expiry and a zeroed attempt counter.
//
// Anti-enumeration: unknown emails and external-auth accounts get the
// same generic success. The Google-linked case is a deliberate, narrow
// exception: it returns an actionable message instead. Banned accounts
// are blocked outright.
func (s *PasswordResetService) Request(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.PasswordResets.WithLabelValues("request", "unknown").Inc()
			return genericResetMessage, nil
		}
		return "", fmt.Errorf("reset request lookup failed: %w", err)
	}

	if user.Banned {
		metrics.PasswordResets.WithLabelValues("request", "banned").Inc()
		return "", ErrAccountBanned
	}
	if user.AuthMethod == models.AuthMethodGoogle {
		metrics.PasswordResets.WithLabelValues("request", "google").Inc()
		return ErrGoogleLinkedAccount.Error(), nil
	}
	if user.AuthMethod != models.AuthMethodEmail {
		metrics.PasswordResets.WithLabelValues("request", "external").Inc()
		return genericResetMessage, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash reset token: %w", err)
	}

	expiry := time.Now().UTC().Add(s.tokenTTL)
	if err := s.users.UpdateByID(ctx, user.ID.Hex(), models.NewUpdate().
		SetField("password_reset_token_hash", string(hash)).
		SetField("password_reset_expiry", expiry).
		SetField("password_reset_attempts", 0)); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// The email carries the only copy of the raw token, so a failed
	// send makes the issued token worthless: roll the fields back and
	// tell the caller to retry.
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Error("reset email send failed, rolling back token", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		if rbErr := s.users.UpdateByID(ctx, user.ID.Hex(), models.NewUpdate().
			UnsetField("password_reset_token_hash", "password_reset_expiry", "password_reset_attempts")); rbErr != nil {
			s.logger.Error("reset token rollback failed", zap.String("user_id", user.ID.Hex()), zap.Error(rbErr))
		}
		metrics.PasswordResets.WithLabelValues("request", "send_failed").Inc()
		return "", ErrEmailDispatch
	}

	metrics.PasswordResets.WithLabelValues("request", "issued").Inc()
	return genericResetMessage, nil
}

// Complete verifies a raw token against the live candidates and, on a
// match, replaces the password and clears the reset fields in one
// atomic update. Raw tokens are not indexable, so candidates are
// scanned and hash-verified; the first match wins. Every compare
// against a candidate counts toward that record's attempt cap, which
// permanently invalidates the token once reached.
func (s *PasswordResetService) Complete(ctx context.Context, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return validation.FieldErrors{"confirm_password": "passwords do not match"}
	}
	if msg := validation.CheckPassword(newPassword, s.production); msg != "" {
		return validation.FieldErrors{"new_password": msg}
	}

	now := time.Now().UTC()
	candidates, err := s.users.FindResetCandidates(ctx, now, s.maxAttempts)
	if err != nil {
		return fmt.Errorf("reset candidate scan failed: %w", err)
	}

	for _, cand := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(cand.PasswordResetTokenHash), []byte(token)) == nil {
			if cand.Banned {
				return ErrAccountBanned
			}
			return s.consumeToken(ctx, cand, newPassword)
		}
		// Server-side increment: concurrent failed attempts must not
		// lose counts against the cap.
		if err := s.users.UpdateByID(ctx, cand.ID.Hex(), models.NewUpdate().
			IncField("password_reset_attempts", 1)); err != nil {
			s.logger.Warn("failed to bump reset attempts", zap.String("user_id", cand.ID.Hex()), zap.Error(err))
		}
	}

	metrics.PasswordResets.WithLabelValues("complete", "invalid").Inc()
	return ErrInvalidOrExpiredToken
}

func (s *PasswordResetService) consumeToken(ctx context.Context, user *models.User, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdateByID(ctx, user.ID.Hex(), models.NewUpdate().
		SetField("password_hash", string(hash)).
		SetField("last_activity_at", time.Now().UTC()).
		UnsetField("password_reset_token_hash", "password_reset_expiry", "password_reset_attempts")); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}

	metrics.PasswordResets.WithLabelValues("complete", "success").Inc()

	// The password change is already committed; a failed confirmation
	// email must not fail the reset.
	email, name := user.Email, user.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mail.SendPasswordChanged(ctx, email, name); err != nil {
			s.logger.Warn("password-changed email failed", zap.String("email", email), zap.Error(err))
		}
	}()

	return nil
}
