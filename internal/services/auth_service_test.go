package services

import (
	"context"
	"testing"

	"github.com/Blessan-Corley/fixly-server/internal/googleauth"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func googleProfile(email, sub string) *googleauth.Profile {
	return &googleauth.Profile{Sub: sub, Email: email, Name: "Blessan Corley"}
}

func newAuthService(repo *fakeUserRepo, mail *fakeMailer) *AuthService {
	return NewAuthService(repo, mail, testTokens(), testLogger(), false, bcrypt.MinCost)
}

func TestSignupEmail(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newAuthService(repo, mail)

	user, err := svc.Signup(context.Background(), validSignup(), nil)
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "blessan_c", user.Username)
	assert.Equal(t, "+919876543210", user.Phone)
	assert.Equal(t, models.RoleHirer, user.Role)
	assert.True(t, user.IsRegistered)

	stored := repo.get(user.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Str0ng!pass", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Str0ng!pass")))
	require.Len(t, stored.Notifications, 1)
	assert.Equal(t, "welcome", stored.Notifications[0].Type)
}

func TestSignupCollectsAllValidationErrors(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	req := &models.SignupRequest{
		AuthMethod: models.AuthMethodEmail,
		Name:       "B",
		Email:      "not-an-email",
		Username:   "Ab",
		Phone:      "12345",
		Password:   "abc",
		Role:       models.RoleFixer,
	}
	_, err := svc.Signup(context.Background(), req, nil)

	var ferrs validation.FieldErrors
	require.ErrorAs(t, err, &ferrs)
	for _, field := range []string{"name", "email", "username", "phone", "password", "skills", "location"} {
		assert.Contains(t, ferrs, field)
	}
}

func TestSignupDuplicateEmailPrecedence(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	_, err := svc.Signup(context.Background(), validSignup(), nil)
	require.NoError(t, err)

	// Same email AND username collide; email wins the 409 message.
	req := validSignup()
	req.Phone = "9876500000"
	_, err = svc.Signup(context.Background(), req, nil)

	var dup *repository.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestSignupRejectsFakeLookingAccounts(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	req := validSignup()
	req.Name = "Test User"
	_, err := svc.Signup(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrFakeAccount)
}

func TestSignupGoogleNeedsMatchingSession(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	req := validSignup()
	req.AuthMethod = models.AuthMethodGoogle
	req.Password = ""

	_, err := svc.Signup(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrGoogleSessionMismatch)

	wrong := &models.User{Email: "someone.else@example.com", Username: "someone"}
	_, err = svc.Signup(context.Background(), req, claimsFor(wrong))
	assert.ErrorIs(t, err, ErrGoogleSessionMismatch)
}

func TestSignupUpgradesGooglePlaceholder(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	temp := repo.seed(&models.User{
		Name:          "Blessan Corley",
		Username:      models.TempUsernamePrefix + "a1b2c3",
		Email:         "blessan@example.com",
		ExternalID:    "google-sub-1",
		AuthMethod:    models.AuthMethodGoogle,
		EmailVerified: true,
		IsVerified:    true,
	})

	req := validSignup()
	req.AuthMethod = models.AuthMethodGoogle
	req.Password = ""
	req.ExternalID = "google-sub-1"

	user, err := svc.Signup(context.Background(), req, claimsFor(temp))
	require.NoError(t, err)

	assert.Equal(t, temp.ID.Hex(), user.ID)
	assert.Equal(t, "blessan_c", user.Username)
	assert.True(t, user.IsRegistered)

	stored := repo.get(temp.ID.Hex())
	assert.False(t, stored.IsTemp())
	assert.Equal(t, models.RoleHirer, stored.Role)
	require.Len(t, stored.Notifications, 1)
}

func TestSignupPhoneStartsUnverified(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	// The identity id alone proves nothing; the phone flag is only set
	// by a provider-checked signin.
	req := validSignup()
	req.AuthMethod = models.AuthMethodPhone
	req.Password = ""
	req.ExternalID = "unchecked-identity-id"

	user, err := svc.Signup(context.Background(), req, nil)
	require.NoError(t, err)

	stored := repo.get(user.ID)
	require.NotNil(t, stored)
	assert.False(t, stored.PhoneVerified)
	assert.False(t, stored.EmailVerified)
	assert.False(t, stored.IsVerified)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newAuthService(repo, mail)

	created, err := svc.Signup(context.Background(), validSignup(), nil)
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "Blessan@Example.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	require.NotEmpty(t, token)

	claims, err := testTokens().ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.Subject)
	assert.Equal(t, "blessan_c", claims.Username)

	_, _, err = svc.Login(context.Background(), "blessan@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlockedForBannedAndExternalAccounts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	repo.seed(&models.User{
		Email:        "banned@example.com",
		Username:     "banneduser",
		AuthMethod:   models.AuthMethodEmail,
		PasswordHash: mustHash(t, "Str0ng!pass"),
		Banned:       true,
	})
	_, _, err := svc.Login(context.Background(), "banned@example.com", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrAccountBanned)

	repo.seed(&models.User{
		Email:      "google.only@example.com",
		Username:   "googleonly",
		AuthMethod: models.AuthMethodGoogle,
	})
	_, _, err = svc.Login(context.Background(), "google.only@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCheckUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})
	ctx := context.Background()

	available, msg, err := svc.CheckUsername(ctx, "Fresh_Name")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, "username is available", msg)

	repo.seed(&models.User{Username: "taken_name"})
	available, msg, err = svc.CheckUsername(ctx, "taken_name")
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, "username is taken", msg)

	available, msg, err = svc.CheckUsername(ctx, "admin")
	assert.Error(t, err)
	assert.False(t, available)
	assert.NotEmpty(t, msg)
}

func TestSuggestUsernamesSkipsTaken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})
	repo.seed(&models.User{Username: "blessan"})

	out, err := svc.SuggestUsernames(context.Background(), "Blessan!")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "blessan")
	for _, c := range out {
		assert.Empty(t, validation.CheckUsername(c))
	}
}

func TestCheckPhone(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})
	ctx := context.Background()

	free, err := svc.CheckPhone(ctx, "98765 43210")
	require.NoError(t, err)
	assert.True(t, free)

	repo.seed(&models.User{Phone: "+919876543210"})
	free, err = svc.CheckPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.CheckPhone(ctx, "12345")
	var ferrs validation.FieldErrors
	assert.ErrorAs(t, err, &ferrs)
}

func TestGoogleSignInCreatesPlaceholder(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	user, token, err := svc.GoogleSignIn(context.Background(), googleProfile("new.user@example.com", "sub-9"))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, user.IsRegistered)

	stored := repo.get(user.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.IsTemp())
	assert.True(t, stored.EmailVerified)
	assert.Equal(t, models.AuthMethodGoogle, stored.AuthMethod)

	// Second sign-in reuses the same placeholder.
	again, _, err := svc.GoogleSignIn(context.Background(), googleProfile("new.user@example.com", "sub-9"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGoogleSignInBannedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})
	repo.seed(&models.User{
		Email:      "banned@example.com",
		Username:   "banneduser",
		AuthMethod: models.AuthMethodGoogle,
		Banned:     true,
	})

	_, _, err := svc.GoogleSignIn(context.Background(), googleProfile("banned@example.com", "sub-1"))
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignupDuplicatePhone(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	repo.seed(&models.User{Phone: "+919876543210", Username: "other_user", Email: "other@example.com"})

	req := validSignup()
	_, err := svc.Signup(context.Background(), req, nil)

	var dup *repository.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "phone", dup.Field)
}
