package models

// Request DTOs. Tags drive the validator.v10 pass in the handlers; the
// deeper normalization rules live in the validation package.

type SignupRequest struct {
	AuthMethod string    `json:"auth_method" validate:"required,oneof=email google phone"`
	Name       string    `json:"name" validate:"required,min=2,max=60"`
	Email      string    `json:"email" validate:"required,email"`
	Username   string    `json:"username" validate:"required"`
	Phone      string    `json:"phone" validate:"required"`
	Password   string    `json:"password,omitempty"`
	Role       string    `json:"role" validate:"required,oneof=hirer fixer"`
	Location   *Location `json:"location" validate:"required"`
	Skills     []string  `json:"skills,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UsernameCheckRequest struct {
	Username string `json:"username" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	IDToken     string `json:"id_token" validate:"required"`
	Action      string `json:"action" validate:"required,oneof=signup signin"`
}

type ProfileUpdateRequest struct {
	Name     *string   `json:"name,omitempty"`
	Bio      *string   `json:"bio,omitempty"`
	Location *Location `json:"location,omitempty"`
	Skills   *[]string `json:"skills,omitempty"`
	Avatar   *string   `json:"avatar_url,omitempty"`
}

type AdminActionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=ban unban verify unverify view"`
	Reason string `json:"reason,omitempty"`
}
