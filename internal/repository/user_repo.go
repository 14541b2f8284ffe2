package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// DuplicateFieldError reports which unique field collided on create.
// The store's unique indexes are the authority; pre-checks only make
// the message friendlier.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return e.Field + " already exists"
}

// UserRepository is the identity store as consumed by the auth core.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// FindConflict returns any record matching one of the unique
	// identity fields, or nil. Used for duplicate pre-checks.
	FindConflict(ctx context.Context, email, username, phone, externalID string) (*models.User, error)
	// UpdateByID applies the tagged update descriptor atomically.
	UpdateByID(ctx context.Context, id string, update *models.Update) error
	// FindResetCandidates returns records with a live, non-exhausted
	// password reset token.
	FindResetCandidates(ctx context.Context, now time.Time, maxAttempts int) ([]*models.User, error)
}

// JobStats is the aggregate view computed for the admin detail page.
type JobStats struct {
	Posted    int64   `json:"posted"`
	Completed int64   `json:"completed"`
	Earnings  float64 `json:"earnings"`
}

// JobRepository is the read-only collaborator over the job collection;
// the auth core never writes to it.
type JobRepository interface {
	CountPostedBy(ctx context.Context, hirerID string) (int64, error)
	CountCompletedBy(ctx context.Context, fixerID string) (int64, error)
	SumEarnings(ctx context.Context, fixerID string) (float64, error)
}
