package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/audit"
	"github.com/Blessan-Corley/fixly-server/internal/metrics"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"go.uber.org/zap"
)

// adminAction is the closed enumeration of moderation transitions.
type adminAction int

const (
	actionBan adminAction = iota
	actionUnban
	actionVerify
	actionUnverify
	actionView
)

var adminActions = map[string]adminAction{
	"ban":      actionBan,
	"unban":    actionUnban,
	"verify":   actionVerify,
	"unverify": actionUnverify,
	"view":     actionView,
}

// AdminResult is the response payload of an admin action.
type AdminResult struct {
	Action string               `json:"action"`
	User   *models.PublicUser   `json:"user"`
	Stats  *repository.JobStats `json:"stats,omitempty"`
}

// AdminService applies moderation transitions to user records.
type AdminService struct {
	users  repository.UserRepository
	jobs   repository.JobRepository
	audit  *audit.Producer
	logger *zap.Logger
}

func NewAdminService(users repository.UserRepository, jobs repository.JobRepository, auditor *audit.Producer, logger *zap.Logger) *AdminService {
	return &AdminService{users: users, jobs: jobs, audit: auditor, logger: logger}
}

// Do dispatches one admin action against a target user. Targets with
// the admin role are rejected here, not merely by convention.
func (s *AdminService) Do(ctx context.Context, actor *utils.SessionClaims, req *models.AdminActionRequest) (*AdminResult, error) {
	action, ok := adminActions[req.Action]
	if !ok {
		return nil, validation.FieldErrors{"action": "unknown action"}
	}

	target, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("admin target lookup failed: %w", err)
	}
	if target.Role == models.RoleAdmin {
		return nil, ErrAdminImmutable
	}

	now := time.Now().UTC()
	switch action {
	case actionBan:
		// Idempotent: re-banning keeps the original ban metadata.
		if !target.Banned {
			reason := req.Reason
			if reason == "" {
				reason = "policy violation"
			}
			err = s.users.UpdateByID(ctx, target.ID.Hex(), models.NewUpdate().
				SetField("banned", true).
				SetField("banned_reason", reason).
				SetField("banned_at", now).
				SetField("banned_by", actor.Subject))
		}
	case actionUnban:
		if target.Banned {
			err = s.users.UpdateByID(ctx, target.ID.Hex(), models.NewUpdate().
				SetField("banned", false).
				UnsetField("banned_reason", "banned_at", "banned_by"))
		}
	case actionVerify:
		err = s.users.UpdateByID(ctx, target.ID.Hex(), models.NewUpdate().
			SetField("is_verified", true).
			SetField("verified_at", now).
			SetField("verified_by", actor.Subject))
	case actionUnverify:
		err = s.users.UpdateByID(ctx, target.ID.Hex(), models.NewUpdate().
			SetField("is_verified", false).
			UnsetField("verified_at", "verified_by"))
	case actionView:
		stats, statsErr := s.collectStats(ctx, target)
		if statsErr != nil {
			return nil, statsErr
		}
		return &AdminResult{Action: req.Action, User: target.Public(), Stats: stats}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("admin action %q failed: %w", req.Action, err)
	}

	metrics.AdminActions.WithLabelValues(req.Action).Inc()
	go s.audit.Publish(context.WithoutCancel(ctx), actor.Subject, req.Action, target.ID.Hex(), req.Reason)

	updated, err := s.users.FindByID(ctx, target.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("admin target reload failed: %w", err)
	}
	return &AdminResult{Action: req.Action, User: updated.Public()}, nil
}

// collectStats aggregates the target's job activity from the external
// job collection; the auth core only reads it.
func (s *AdminService) collectStats(ctx context.Context, target *models.User) (*repository.JobStats, error) {
	stats := &repository.JobStats{}
	id := target.ID.Hex()

	switch target.Role {
	case models.RoleHirer:
		posted, err := s.jobs.CountPostedBy(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("job stats failed: %w", err)
		}
		stats.Posted = posted
	case models.RoleFixer:
		completed, err := s.jobs.CountCompletedBy(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("job stats failed: %w", err)
		}
		earnings, err := s.jobs.SumEarnings(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("job stats failed: %w", err)
		}
		stats.Completed = completed
		stats.Earnings = earnings
	}
	return stats, nil
}
