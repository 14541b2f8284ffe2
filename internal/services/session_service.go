package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
)

// Session subject ids are document ids: 24 hex characters.
var subjectIDRe = regexp.MustCompile(`^[0-9a-f]{24}$`)

// SessionService maps session claims back to a live identity record.
type SessionService struct {
	users repository.UserRepository
}

func NewSessionService(users repository.UserRepository) *SessionService {
	return &SessionService{users: users}
}

// Resolve re-fetches the live record behind a session. Temp-marker
// sessions fail with ErrProfileIncomplete, which callers surface as a
// redirect to profile completion rather than a fatal auth failure.
func (s *SessionService) Resolve(ctx context.Context, claims *utils.SessionClaims) (*models.PublicUser, error) {
	if claims == nil || claims.Subject == "" {
		return nil, ErrSessionInvalid
	}
	if !subjectIDRe.MatchString(claims.Subject) {
		return nil, ErrSessionInvalid
	}
	if strings.HasPrefix(claims.Username, models.TempUsernamePrefix) {
		return nil, ErrProfileIncomplete
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return user.Public(), nil
}
