package services

import (
	"context"
	"testing"

	"github.com/Blessan-Corley/fixly-server/internal/identity"
	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOTPService(repo *fakeUserRepo, provider *fakeIdentity) *OTPService {
	return NewOTPService(repo, provider, testTokens(), testLogger())
}

func otpRequest(action string) *models.OTPVerifyRequest {
	return &models.OTPVerifyRequest{
		PhoneNumber: "9876543210",
		IDToken:     "provider-token",
		Action:      action,
	}
}

func TestOTPVerifyRejectsPhoneMismatch(t *testing.T) {
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919999999999"}}
	svc := newOTPService(newFakeUserRepo(), provider)

	_, err := svc.Verify(context.Background(), otpRequest(OTPActionSignup))
	assert.ErrorIs(t, err, ErrPhoneMismatch)
}

func TestOTPSignupModeDoesNotCreateRecord(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919876543210"}}
	svc := newOTPService(repo, provider)

	result, err := svc.Verify(context.Background(), otpRequest(OTPActionSignup))
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.Equal(t, "+919876543210", result.Phone)
	assert.Equal(t, "uid-1", result.ExternalID)
	assert.Nil(t, result.User)
	assert.Empty(t, result.Token)

	_, err = repo.FindByPhone(context.Background(), "+919876543210")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestOTPSignupModeTakenPhone(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(&models.User{Phone: "+919876543210", Username: "existing_u"})
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919876543210"}}
	svc := newOTPService(repo, provider)

	_, err := svc.Verify(context.Background(), otpRequest(OTPActionSignup))
	var dup *repository.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "phone", dup.Field)
}

func TestOTPSigninMode(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&models.User{
		Name:       "Blessan Corley",
		Username:   "blessan_c",
		Phone:      "+919876543210",
		AuthMethod: models.AuthMethodPhone,
		Role:       models.RoleFixer,
	})
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919876543210"}}
	svc := newOTPService(repo, provider)

	result, err := svc.Verify(context.Background(), otpRequest(OTPActionSignin))
	require.NoError(t, err)

	require.NotNil(t, result.User)
	assert.Equal(t, user.ID.Hex(), result.User.ID)
	require.NotEmpty(t, result.Token)

	claims, err := testTokens().ParseSessionToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)

	// Both the store and the response carry the verified flag.
	assert.True(t, repo.get(user.ID.Hex()).PhoneVerified)
	assert.True(t, result.User.PhoneVerified)
}

func TestOTPSigninModeNoPhoneAccount(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919876543210"}}
	svc := newOTPService(repo, provider)

	_, err := svc.Verify(context.Background(), otpRequest(OTPActionSignin))
	assert.ErrorIs(t, err, ErrNoPhoneAccount)

	// A record with that phone but a different auth method is not a
	// phone-login account either.
	repo.seed(&models.User{
		Phone:      "+919876543210",
		Username:   "email_user",
		AuthMethod: models.AuthMethodEmail,
	})
	_, err = svc.Verify(context.Background(), otpRequest(OTPActionSignin))
	assert.ErrorIs(t, err, ErrNoPhoneAccount)
}

func TestOTPSigninModeBanned(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(&models.User{
		Phone:      "+919876543210",
		Username:   "banneduser",
		AuthMethod: models.AuthMethodPhone,
		Banned:     true,
	})
	provider := &fakeIdentity{ident: &identity.PhoneIdentity{UID: "uid-1", PhoneNumber: "+919876543210"}}
	svc := newOTPService(repo, provider)

	_, err := svc.Verify(context.Background(), otpRequest(OTPActionSignin))
	assert.ErrorIs(t, err, ErrAccountBanned)
}
