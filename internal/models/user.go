package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods a user can sign up with.
const (
	AuthMethodEmail  = "email"
	AuthMethodGoogle = "google"
	AuthMethodPhone  = "phone"
)

// Roles. Admin accounts are created out of band and are never
// moderatable through the admin action endpoint.
const (
	RoleHirer = "hirer"
	RoleFixer = "fixer"
	RoleAdmin = "admin"
)

// TempUsernamePrefix marks a Google-created placeholder record that is
// still waiting for profile completion. It is a lifecycle state of the
// user document, not a separate entity.
const TempUsernamePrefix = "temp_"

type Location struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type Notification struct {
	ID        string    `bson:"id" json:"id"`
	Type      string    `bson:"type" json:"type"`
	Message   string    `bson:"message" json:"message"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// User is the single persisted entity of the auth core.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	ExternalID string             `bson:"external_id,omitempty" json:"-"`

	AuthMethod   string   `bson:"auth_method" json:"auth_method"`
	PasswordHash string   `bson:"password_hash,omitempty" json:"-"`
	Providers    []string `bson:"providers,omitempty" json:"-"`

	Role     string    `bson:"role,omitempty" json:"role,omitempty"`
	Bio      string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Location *Location `bson:"location,omitempty" json:"location,omitempty"`
	Skills   []string  `bson:"skills,omitempty" json:"skills,omitempty"`
	Avatar   string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	IsVerified    bool       `bson:"is_verified" json:"is_verified"`
	EmailVerified bool       `bson:"email_verified" json:"email_verified"`
	PhoneVerified bool       `bson:"phone_verified" json:"phone_verified"`
	VerifiedAt    *time.Time `bson:"verified_at,omitempty" json:"-"`
	VerifiedBy    string     `bson:"verified_by,omitempty" json:"-"`

	Banned       bool       `bson:"banned" json:"-"`
	BannedReason string     `bson:"banned_reason,omitempty" json:"-"`
	BannedAt     *time.Time `bson:"banned_at,omitempty" json:"-"`
	BannedBy     string     `bson:"banned_by,omitempty" json:"-"`

	// Reset-flow fields are sensitive and excluded from public reads.
	PasswordResetTokenHash string     `bson:"password_reset_token_hash,omitempty" json:"-"`
	PasswordResetExpiry    *time.Time `bson:"password_reset_expiry,omitempty" json:"-"`
	PasswordResetAttempts  int        `bson:"password_reset_attempts,omitempty" json:"-"`

	Notifications []Notification `bson:"notifications,omitempty" json:"-"`

	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"-"`
	LastActivityAt *time.Time `bson:"last_activity_at,omitempty" json:"-"`
}

// IsTemp reports whether the record is a Google placeholder awaiting
// profile completion.
func (u *User) IsTemp() bool {
	return strings.HasPrefix(u.Username, TempUsernamePrefix)
}

// IsRegistered is true once role, location and a real username are all
// set; temp placeholders are never registered.
func (u *User) IsRegistered() bool {
	return u.Role != "" && u.Location != nil && u.Username != "" && !u.IsTemp()
}

// PublicUser is the normalized profile summary returned to clients.
type PublicUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Skills        []string  `json:"skills,omitempty"`
	Avatar        string    `json:"avatar_url,omitempty"`
	AuthMethod    string    `json:"auth_method"`
	IsVerified    bool      `json:"is_verified"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	IsRegistered  bool      `json:"is_registered"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public projects the document onto the client-facing summary.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Bio:           u.Bio,
		Location:      u.Location,
		Skills:        u.Skills,
		Avatar:        u.Avatar,
		AuthMethod:    u.AuthMethod,
		IsVerified:    u.IsVerified,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		IsRegistered:  u.IsRegistered(),
		CreatedAt:     u.CreatedAt,
	}
}
