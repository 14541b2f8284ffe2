package services

import (
	"context"
	"testing"

	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFixer(repo *fakeUserRepo) *models.User {
	return repo.seed(&models.User{
		Name:     "Blessan Corley",
		Username: "blessan_c",
		Email:    "blessan@example.com",
		Role:     models.RoleFixer,
		Bio:      "old bio",
		Skills:   []string{"plumbing"},
		Location: &models.Location{City: "Coimbatore"},
	})
}

func strPtr(s string) *string { return &s }

func TestProfileGet(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	user := seedFixer(repo)

	got, err := svc.Get(context.Background(), claimsFor(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), got.ID)
	assert.Equal(t, "old bio", got.Bio)
}

func TestProfileGetBannedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	user := seedFixer(repo)
	user.Banned = true

	_, err := svc.Get(context.Background(), claimsFor(user))
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func TestProfileUpdateSetAndClearFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	user := seedFixer(repo)

	got, err := svc.Update(context.Background(), claimsFor(user), &models.ProfileUpdateRequest{
		Name: strPtr("Blessan C"),
		Bio:  strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Blessan C", got.Name)
	assert.Empty(t, got.Bio)

	stored := repo.get(user.ID.Hex())
	assert.Empty(t, stored.Bio)
	require.NotNil(t, stored.LastActivityAt)
}

func TestProfileUpdateSkillsOnlyForFixers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	hirer := repo.seed(&models.User{
		Username: "hirer_one",
		Role:     models.RoleHirer,
		Location: &models.Location{City: "Coimbatore"},
	})

	skills := []string{"electrical"}
	_, err := svc.Update(context.Background(), claimsFor(hirer), &models.ProfileUpdateRequest{
		Skills: &skills,
	})
	var ferrs validation.FieldErrors
	require.ErrorAs(t, err, &ferrs)
	assert.Contains(t, ferrs, "skills")
}

func TestProfileUpdateRejectsShortName(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	user := seedFixer(repo)

	_, err := svc.Update(context.Background(), claimsFor(user), &models.ProfileUpdateRequest{
		Name: strPtr("B"),
	})
	var ferrs validation.FieldErrors
	require.ErrorAs(t, err, &ferrs)
	assert.Contains(t, ferrs, "name")
}

func TestProfileTempSessionBlocked(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewProfileService(repo, testLogger())
	temp := repo.seed(&models.User{Username: models.TempUsernamePrefix + "xyz"})

	_, err := svc.Get(context.Background(), claimsFor(temp))
	assert.ErrorIs(t, err, ErrProfileIncomplete)
}
