package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
)

func newAuthFixture() (*AuthService, *memory.UserStore) {
	users := memory.NewUserStore()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			// min cost keeps hashing fast in tests
			BcryptCost: 4,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users})
	return svc, users
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	t.Run("role defaults to USER", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterInput{
			Name:     "Dana",
			Email:    "Dana@Example.com",
			Password: "hunter2",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, user.Role)
		// emails are stored lowercase
		assert.Equal(t, "dana@example.com", user.Email)
		assert.NotEqual(t, "hunter2", user.PasswordHash)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Name:     "Dana Again",
			Email:    "dana@example.com",
			Password: "hunter3",
		})
		assertDomainErr(t, err, "CONFLICT")
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Name:     "Eve",
			Email:    "eve@example.com",
			Password: "pw",
			Role:     domain.Role("OVERLORD"),
		})
		assertDomainErr(t, err, "VALIDATION_FAILED")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "x@example.com"})
		assertDomainErr(t, err, "VALIDATION_FAILED")
	})
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "hunter2",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		user, token, _, err := svc.Login(ctx, "DANA@example.com", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		require.NotEmpty(t, token)

		claims, err := svc.TokenManager().ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, domain.RoleManager, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "dana@example.com", "wrong")
		assertDomainErr(t, err, "UNAUTHORIZED")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		assertDomainErr(t, err, "NOT_FOUND")
	})
}

func TestListOtherUsers(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	dana, err := svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Erin", Email: "erin@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Maya", Email: "maya@example.com", Password: "pw", Role: domain.RoleManager})
	require.NoError(t, err)

	others, err := svc.ListOtherUsers(ctx, dana.ID)
	require.NoError(t, err)
	// only USER-role accounts, excluding the caller
	require.Len(t, others, 1)
	assert.Equal(t, "erin@example.com", others[0].Email)
}
