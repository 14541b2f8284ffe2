package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/identity"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeUserRepo is an in-memory UserRepository that mirrors the store's
// uniqueness and update semantics closely enough for service tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) seed(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID.Hex()] = u
	return u
}

func (r *fakeUserRepo) get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// Finders hand out copies, like decoding from the real store: callers
// never mutate a stored document through a read.
func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) conflictField(u *models.User, exclude string) string {
	for _, other := range r.users {
		if other.ID.Hex() == exclude {
			continue
		}
		switch {
		case u.Email != "" && other.Email == u.Email:
			return "email"
		case u.Username != "" && other.Username == u.Username:
			return "username"
		case u.Phone != "" && other.Phone == u.Phone:
			return "phone"
		case u.ExternalID != "" && other.ExternalID == u.ExternalID:
			return "external_id"
		}
	}
	return ""
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f := r.conflictField(u, ""); f != "" {
		return &repository.DuplicateFieldError{Field: f}
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID.Hex()] = u
	return nil
}

func (r *fakeUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u := r.get(id); u != nil {
		return cloneUser(u), nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email != "" && u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username != "" && u.Username == username })
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Phone != "" && u.Phone == phone })
}

func (r *fakeUserRepo) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.ExternalID != "" && u.ExternalID == externalID })
}

func (r *fakeUserRepo) FindConflict(_ context.Context, email, username, phone, externalID string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool {
		return (email != "" && u.Email == email) ||
			(username != "" && u.Username == username) ||
			(phone != "" && u.Phone == phone) ||
			(externalID != "" && u.ExternalID == externalID)
	})
}

func (r *fakeUserRepo) UpdateByID(_ context.Context, id string, update *models.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	// Uniqueness still holds across updates, same as the real indexes.
	next := *u
	if v, ok := update.Set["email"].(string); ok {
		next.Email = v
	}
	if v, ok := update.Set["username"].(string); ok {
		next.Username = v
	}
	if v, ok := update.Set["phone"].(string); ok {
		next.Phone = v
	}
	if f := r.conflictField(&next, id); f != "" {
		return &repository.DuplicateFieldError{Field: f}
	}

	for field, value := range update.Set {
		applyField(u, field, value)
	}
	for _, field := range update.Unset {
		clearField(u, field)
	}
	for field, value := range update.Push {
		if field == "notifications" {
			if n, ok := value.(models.Notification); ok {
				u.Notifications = append(u.Notifications, n)
			}
		}
	}
	for field, delta := range update.Inc {
		if field == "password_reset_attempts" {
			u.PasswordResetAttempts += delta
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) FindResetCandidates(_ context.Context, now time.Time, maxAttempts int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.PasswordResetTokenHash == "" || u.PasswordResetExpiry == nil {
			continue
		}
		if u.PasswordResetExpiry.After(now) && u.PasswordResetAttempts < maxAttempts {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func applyField(u *models.User, field string, value any) {
	switch field {
	case "name":
		u.Name, _ = value.(string)
	case "username":
		u.Username, _ = value.(string)
	case "email":
		u.Email, _ = value.(string)
	case "phone":
		u.Phone, _ = value.(string)
	case "role":
		u.Role, _ = value.(string)
	case "bio":
		u.Bio, _ = value.(string)
	case "avatar_url":
		u.Avatar, _ = value.(string)
	case "location":
		u.Location, _ = value.(*models.Location)
	case "skills":
		u.Skills, _ = value.([]string)
	case "password_hash":
		u.PasswordHash, _ = value.(string)
	case "banned":
		u.Banned, _ = value.(bool)
	case "banned_reason":
		u.BannedReason, _ = value.(string)
	case "banned_at":
		if t, ok := value.(time.Time); ok {
			u.BannedAt = &t
		}
	case "banned_by":
		u.BannedBy, _ = value.(string)
	case "is_verified":
		u.IsVerified, _ = value.(bool)
	case "email_verified":
		u.EmailVerified, _ = value.(bool)
	case "phone_verified":
		u.PhoneVerified, _ = value.(bool)
	case "verified_at":
		if t, ok := value.(time.Time); ok {
			u.VerifiedAt = &t
		}
	case "verified_by":
		u.VerifiedBy, _ = value.(string)
	case "password_reset_token_hash":
		u.PasswordResetTokenHash, _ = value.(string)
	case "password_reset_expiry":
		if t, ok := value.(time.Time); ok {
			u.PasswordResetExpiry = &t
		}
	case "password_reset_attempts":
		u.PasswordResetAttempts, _ = value.(int)
	case "last_login_at":
		if t, ok := value.(time.Time); ok {
			u.LastLoginAt = &t
		}
	case "last_activity_at":
		if t, ok := value.(time.Time); ok {
			u.LastActivityAt = &t
		}
	}
}

func clearField(u *models.User, field string) {
	switch field {
	case "bio":
		u.Bio = ""
	case "avatar_url":
		u.Avatar = ""
	case "skills":
		u.Skills = nil
	case "banned_reason":
		u.BannedReason = ""
	case "banned_at":
		u.BannedAt = nil
	case "banned_by":
		u.BannedBy = ""
	case "verified_at":
		u.VerifiedAt = nil
	case "verified_by":
		u.VerifiedBy = ""
	case "password_reset_token_hash":
		u.PasswordResetTokenHash = ""
	case "password_reset_expiry":
		u.PasswordResetExpiry = nil
	case "password_reset_attempts":
		u.PasswordResetAttempts = 0
	}
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	mu            sync.Mutex
	welcomes      []string
	resetTokens   []string
	changedEmails []string
	failReset     bool
	failWelcome   bool
}

var errMailDown = errors.New("mail provider down")

func (m *fakeMailer) SendWelcome(_ context.Context, toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWelcome {
		return errMailDown
	}
	m.welcomes = append(m.welcomes, toEmail)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReset {
		return errMailDown
	}
	m.resetTokens = append(m.resetTokens, token)
	return nil
}

func (m *fakeMailer) SendPasswordChanged(_ context.Context, toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changedEmails = append(m.changedEmails, toEmail)
	return nil
}

func (m *fakeMailer) lastResetToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resetTokens) == 0 {
		return ""
	}
	return m.resetTokens[len(m.resetTokens)-1]
}

// fakeIdentity returns a fixed provider identity.
type fakeIdentity struct {
	ident *identity.PhoneIdentity
	err   error
}

func (f *fakeIdentity) Lookup(context.Context, string) (*identity.PhoneIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ident, nil
}

// fakeJobRepo returns fixed aggregates.
type fakeJobRepo struct {
	posted    int64
	completed int64
	earnings  float64
}

func (f *fakeJobRepo) CountPostedBy(context.Context, string) (int64, error)    { return f.posted, nil }
func (f *fakeJobRepo) CountCompletedBy(context.Context, string) (int64, error) { return f.completed, nil }
func (f *fakeJobRepo) SumEarnings(context.Context, string) (float64, error)    { return f.earnings, nil }

func testTokens() *utils.TokenManager {
	return utils.NewTokenManager("test-secret", 1)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func claimsFor(u *models.User) *utils.SessionClaims {
	return &utils.SessionClaims{
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID.Hex(),
		},
	}
}

func validSignup() *models.SignupRequest {
	return &models.SignupRequest{
		AuthMethod: models.AuthMethodEmail,
		Name:       "Blessan Corley",
		Email:      "blessan@example.com",
		Username:   "blessan_c",
		Phone:      "9876543210",
		Password:   "Str0ng!pass",
		Role:       models.RoleHirer,
		Location:   &models.Location{City: "Coimbatore", State: "TN"},
	}
}
