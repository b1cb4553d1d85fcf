package account

import (
	"context"
	"testing"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*Service, *memory.Store) {
	store := memory.New()
	svc := NewService(store, store)
	svc.cost = bcrypt.MinCost
	return svc, store
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Grace", "Grace", ""},
		{"Mary Ann Evans", "Mary", "Ann Evans"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitFullName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestSignupCreatesUserAndProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	user, err := svc.Signup(ctx, SignupInput{
		FullName: " Ada Lovelace ",
		Email:    "ada@example.com",
		Password: "analytical",
		City:     "London",
		Gender:   models.GenderFemale,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Username)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.NotEqual(t, "analytical", user.PasswordHash)

	profile, err := store.ProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, models.DefaultCountry, profile.Country)
}

func TestSignupExistingEmail(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	first, err := svc.Signup(ctx, SignupInput{FullName: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{FullName: "Impostor", Email: "ada@example.com", Password: "other"})
	assert.ErrorIs(t, err, models.ErrConflict)

	user, err := store.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, user.ID)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Signup(context.Background(), SignupInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Signup(context.Background(), SignupInput{Email: "x@example.com", Password: "pw", Gender: "robot"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	created, err := svc.Signup(ctx, SignupInput{FullName: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Accounts whose username differs from the email still log in by email.
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	legacy := &models.User{Username: "grace", Email: "Grace@Example.com", PasswordHash: string(hash)}
	require.NoError(t, store.CreateUser(ctx, legacy, nil))

	user, err = svc.Authenticate(ctx, "grace@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, user.ID)
}

func TestLoadProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	user := &models.User{Username: "grace", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"}
	require.NoError(t, store.CreateUser(ctx, user, nil))

	p, err := svc.LoadProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Profile)
	assert.Empty(t, p.Orders)
	assert.Equal(t, "Grace Hopper", p.DisplayName())

	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{FullName: "Rear Admiral Hopper"})
	require.NoError(t, err)
	p, err = svc.LoadProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rear Admiral Hopper", p.DisplayName())
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	ada, err := svc.Signup(ctx, SignupInput{FullName: "Ada Lovelace", Email: "ada@example.com", Password: "pw", City: "London"})
	require.NoError(t, err)
	grace, err := svc.Signup(ctx, SignupInput{FullName: "Grace Hopper", Email: "grace@example.com", Password: "pw"})
	require.NoError(t, err)

	p, err := svc.UpdateProfile(ctx, ada.ID, ProfileInput{FullName: " Ada King ", Gender: "female", City: "Ockham"})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", p.FullName)
	assert.Equal(t, "India", p.Country)

	stored, err := store.ProfileByUserID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ockham", stored.City)

	other, err := store.ProfileByUserID(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", other.FullName)

	_, err = svc.UpdateProfile(ctx, ada.ID, ProfileInput{Gender: "robot"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateProfile(ctx, "", ProfileInput{})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.UpdateProfile(ctx, "missing", ProfileInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
