package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBanned      = errors.New("this account has been blocked")

	// Deliberately generic: no detail about which heuristic fired.
	ErrFakeAccount = errors.New("signup could not be completed")

	ErrGoogleSessionMismatch = errors.New("google signup requires a signed-in google session for the same email")
	ErrSessionInvalid        = errors.New("invalid session")
	ErrProfileIncomplete     = errors.New("profile completion required")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrGoogleLinkedAccount   = errors.New("this account uses google sign-in; no password to reset")

	ErrPhoneMismatch  = errors.New("phone number does not match the verified identity")
	ErrNoPhoneAccount = errors.New("no account found for this phone number")

	ErrAdminImmutable = errors.New("admin accounts cannot be moderated")
	ErrEmailDispatch  = errors.New("unable to send email right now, please try again")
)
