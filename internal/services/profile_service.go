package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"go.uber.org/zap"
)

// ProfileService reads and edits the caller's own profile. Edits go
// through an allowed-field filter; everything else on the document is
// unreachable from this surface.
type ProfileService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewProfileService(users repository.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger}
}

func (s *ProfileService) load(ctx context.Context, claims *utils.SessionClaims) (*models.User, error) {
	if claims == nil || !subjectIDRe.MatchString(claims.Subject) {
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
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	return user, nil
}

func (s *ProfileService) Get(ctx context.Context, claims *utils.SessionClaims) (*models.PublicUser, error) {
	user, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// Update applies the allowed fields as one atomic store write. An empty
// string for bio or avatar clears the field. Field-level semantics are
// last-writer-wins.
func (s *ProfileService) Update(ctx context.Context, claims *utils.SessionClaims, req *models.ProfileUpdateRequest) (*models.PublicUser, error) {
	user, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}

	update := models.NewUpdate().SetField("last_activity_at", time.Now().UTC())

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return nil, validation.FieldErrors{"name": "name must be at least 2 characters"}
		}
		update.SetField("name", name)
	}
	if req.Bio != nil {
		if *req.Bio == "" {
			update.UnsetField("bio")
		} else {
			update.SetField("bio", strings.TrimSpace(*req.Bio))
		}
	}
	if req.Avatar != nil {
		if *req.Avatar == "" {
			update.UnsetField("avatar_url")
		} else {
			update.SetField("avatar_url", *req.Avatar)
		}
	}
	if req.Location != nil {
		if req.Location.City == "" {
			return nil, validation.FieldErrors{"location": "location with city is required"}
		}
		update.SetField("location", req.Location)
	}
	if req.Skills != nil {
		if user.Role != models.RoleFixer {
			return nil, validation.FieldErrors{"skills": "skills apply to fixer accounts only"}
		}
		if len(*req.Skills) == 0 {
			return nil, validation.FieldErrors{"skills": "at least one skill is required for fixers"}
		}
		update.SetField("skills", *req.Skills)
	}

	if err := s.users.UpdateByID(ctx, user.ID.Hex(), update); err != nil {
		return nil, fmt.Errorf("profile update failed: %w", err)
	}

	updated, err := s.users.FindByID(ctx, user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("profile reload failed: %w", err)
	}
	return updated.Public(), nil
}
