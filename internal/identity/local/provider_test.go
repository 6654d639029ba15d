package local

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

func newTestProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	p, err := NewProvider([]byte("test-secret"), opts...)
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	_, err := NewProvider(nil)
	require.Error(t, err)
}

func TestSignUpAndVerify(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	session, err := p.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.User.UID)

	user, err := p.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User, user)

	got, err := p.GetUser(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	_, err := p.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, " USER@example.com ", "other")
	require.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestSignUp_StoresLowercaseEmail(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	session, err := p.SignUp(ctx, " Eater@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "eater@example.com", session.User.Email)

	got, err := p.GetUser(ctx, session.User.UID)
	require.NoError(t, err)
	assert.Equal(t, "eater@example.com", got.Email)

	relogin, err := p.SignIn(ctx, "EATER@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "eater@example.com", relogin.User.Email)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	created, err := p.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	session, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.User.UID, session.User.UID)

	_, err = p.SignIn(ctx, "user@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRevokeSessions_InvalidatesIssuedTokens(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	session, err := p.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.RevokeSessions(ctx, session.User.UID))

	_, err = p.Verify(ctx, session.Token)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	fresh, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	_, err = p.Verify(ctx, fresh.Token)
	require.NoError(t, err)

	require.ErrorIs(t, p.RevokeSessions(ctx, "missing"), domain.ErrAuthProvider)
}

func TestVerify_RejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newTestProvider(t, WithClock(func() time.Time { return now }), WithTokenTTL(time.Minute))

	session, err := p.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = p.Verify(ctx, session.Token)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    defaultIssuer,
			Subject:   session.User.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = p.Verify(ctx, signed)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = p.Verify(ctx, "not-a-jwt")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestGetUser_Unknown(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}
