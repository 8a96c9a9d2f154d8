package services_test

import (
	"errors"
	"testing"

	"ims_backend/internal/services"
	"ims_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.authService.RegisterUser(services.RegisterUserRequest{
		Name:     "Alex Doe",
		Username: "alex",
		Email:    strPtr("alex@example.com"),
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password must be stored hashed")

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := env.authService.RegisterUser(services.RegisterUserRequest{
			Name:     "Other",
			Username: "alex",
			Password: "irrelevant-pw",
		})
		assert.True(t, errors.Is(err, services.ErrUsernameExists))
	})

	t.Run("login with valid credentials issues a token", func(t *testing.T) {
		resp, err := env.authService.LoginUser(services.LoginRequest{Username: "alex", Password: "correct-horse"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.AccessToken)

		claims, err := utils.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alex", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.authService.LoginUser(services.LoginRequest{Username: "alex", Password: "wrong"})
		assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := env.authService.LoginUser(services.LoginRequest{Username: "nobody", Password: "whatever"})
		assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
	})
}

func TestUpdateUser_PatchSemantics(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.authService.RegisterUser(services.RegisterUserRequest{
		Name:     "Alex Doe",
		Username: "alex",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	updated, err := env.userService.UpdateUser(user.ID, services.UpdateUserRequest{
		Email: strPtr("alex@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex Doe", updated.Name)
	assert.Equal(t, "alex", updated.Username)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "alex@example.com", *updated.Email)

	t.Run("password change re-hashes and old password stops working", func(t *testing.T) {
		_, err := env.userService.UpdateUser(user.ID, services.UpdateUserRequest{
			Password: strPtr("new-passphrase"),
		})
		require.NoError(t, err)

		_, err = env.authService.LoginUser(services.LoginRequest{Username: "alex", Password: "correct-horse"})
		assert.True(t, errors.Is(err, services.ErrInvalidCredentials))

		resp, err := env.authService.LoginUser(services.LoginRequest{Username: "alex", Password: "new-passphrase"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := env.userService.UpdateUser(9999, services.UpdateUserRequest{Name: strPtr("ghost")})
		assert.True(t, errors.Is(err, services.ErrUserNotFound))
	})
}
