package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpharma/models"
)

func register(t *testing.T, env *testEnv, email, phone string) Session {
	t.Helper()
	s, err := env.identity.CreateAccount(context.Background(), Profile{FirstName: "Jane", LastName: "Roe", Email: email, Phone: phone}, "s3cret!")
	require.NoError(t, err)
	return s
}

func TestIdentity_CreateAccountAndLogin(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	s := register(t, env, "Jane@Example.com", "5550001")
	assert.Equal(t, "jane@example.com", s.Principal.Email)
	assert.Equal(t, models.RoleUser, s.Principal.Role)
	assert.NotEmpty(t, s.Token)

	byEmail, err := env.identity.Authenticate(ctx, "JANE@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, s.Principal.ID, byEmail.Principal.ID)

	byPhone, err := env.identity.Authenticate(ctx, "5550001", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, s.Principal.ID, byPhone.Principal.ID)

	_, err = env.identity.Authenticate(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.identity.Authenticate(ctx, "ghost@example.com", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := env.users.FindByID(ctx, s.Principal.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
}

func TestIdentity_CreateAccountRejectsDuplicates(t *testing.T) {
	env := newTestEnv(nil)
	register(t, env, "jane@example.com", "5550001")

	_, err := env.identity.CreateAccount(context.Background(), Profile{FirstName: "Jo", LastName: "Roe", Phone: "5550001"}, "s3cret!")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = env.identity.CreateAccount(context.Background(), Profile{FirstName: "Jo", LastName: "Roe", Email: "JANE@example.com"}, "s3cret!")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestIdentity_CreateAccountValidation(t *testing.T) {
	env := newTestEnv(nil)
	_, err := env.identity.CreateAccount(context.Background(), Profile{FirstName: "J"}, "123")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "First name must be at least 2 characters", verr.Fields["firstName"])
	assert.Equal(t, "Last name is required", verr.Fields["lastName"])
	assert.Equal(t, "Email or phone is required", verr.Fields["email"])
	assert.Equal(t, "Password must be at least 6 characters", verr.Fields["password"])
}

func TestIdentity_AdminRoleComesFromConfig(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	s := register(t, env, "admin@x.com", "")
	assert.Equal(t, models.RoleAdmin, s.Principal.Role)

	p, err := env.identity.RequireRole(ctx, s.Token, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, s.Principal.ID, p.ID)

	user := register(t, env, "user@x.com", "")
	_, err = env.identity.RequireRole(ctx, user.Token, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestIdentity_VerifyRejectsForgedAndExpiredTokens(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	s := register(t, env, "jane@example.com", "")

	p, err := env.identity.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Principal.ID, p.ID)
	assert.Equal(t, models.RoleUser, p.Role)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           s.Principal.ID,
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	forgedToken, err := forged.SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)
	_, err = env.identity.Verify(ctx, forgedToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.identity.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	env.identity.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	old, err := env.identity.Authenticate(ctx, "jane@example.com", "s3cret!")
	require.NoError(t, err)
	_, err = env.identity.Verify(ctx, old.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIdentity_SessionLastsSevenDays(t *testing.T) {
	env := newTestEnv(nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	env.identity.now = func() time.Time { return now }

	s := register(t, env, "jane@example.com", "")
	assert.Equal(t, now.Add(7*24*time.Hour), s.ExpiresAt)
}

func TestIdentity_Logout(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	s := register(t, env, "jane@example.com", "")

	require.NoError(t, env.identity.Logout(ctx, s.Token))
	_, err := env.identity.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	again, err := env.identity.Authenticate(ctx, "jane@example.com", "s3cret!")
	require.NoError(t, err)
	_, err = env.identity.Verify(ctx, again.Token)
	assert.NoError(t, err)
}

func TestIdentity_MeAndUsers(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	s := register(t, env, "jane@example.com", "5550001")

	me, err := env.identity.Me(ctx, s.Principal)
	require.NoError(t, err)
	assert.Equal(t, "Jane", me.FirstName)
	assert.Equal(t, "5550001", me.Phone)

	users, err := env.identity.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
