package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/googleauth"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GoogleSignIn logs in an existing account or creates the temporary
// placeholder record for a first-time Google user. Placeholders carry a
// temp_ username until the signup endpoint completes the profile.
func (s *AuthService) GoogleSignIn(ctx context.Context, profile *googleauth.Profile) (*models.PublicUser, string, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("google sign-in lookup failed: %w", err)
	}

	if user == nil {
		user = &models.User{
			Name:          profile.Name,
			Username:      models.TempUsernamePrefix + strings.ReplaceAll(uuid.NewString()[:12], "-", ""),
			Email:         email,
			ExternalID:    profile.Sub,
			AuthMethod:    models.AuthMethodGoogle,
			Providers:     []string{models.AuthMethodGoogle},
			EmailVerified: true,
			IsVerified:    true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			var dup *repository.DuplicateFieldError
			if errors.As(err, &dup) {
				// Lost a race with a concurrent first sign-in; use the
				// committed record.
				user, err = s.users.FindByEmail(ctx, email)
				if err != nil {
					return nil, "", fmt.Errorf("google sign-in lookup failed: %w", err)
				}
			} else {
				return nil, "", fmt.Errorf("failed to create placeholder account: %w", err)
			}
		}
		s.logger.Info("google placeholder account created", zap.String("user_id", user.ID.Hex()))
	}

	if user.Banned {
		return nil, "", ErrAccountBanned
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
