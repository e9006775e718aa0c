package users

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/server/internal/auth"
)

func newTestAuthService() (*AuthService, *auth.JWTManager) {
	tokens := auth.NewJWTManager("test-secret", time.Hour, "eventforge")
	return NewAuthService(newFakeRepo(), tokens, zerolog.Nop()), tokens
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, string(auth.RoleUser), user.Role)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Username: "alice", Email: "other@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, RegisterParams{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterParams{Username: "alice", Email: "alice@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginParams{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "alice", result.User.Username)

	// Token resolves back to the username.
	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "user", claims.Role)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginParams{Username: "alice", Password: "wrong-password"})
	_, unknownUser := svc.Login(ctx, LoginParams{Username: "nobody", Password: "secret123"})

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}
