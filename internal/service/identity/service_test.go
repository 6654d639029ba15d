package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/identity/local"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

type stubProvider struct {
	domain.IdentityProvider
	verifyErr error
	revokeErr error
	signInErr error
}

func (s stubProvider) SignIn(context.Context, string, string) (domain.Session, error) {
	return domain.Session{}, s.signInErr
}

func (s stubProvider) Verify(context.Context, string) (domain.User, error) {
	if s.verifyErr != nil {
		return domain.User{}, s.verifyErr
	}
	return domain.User{UID: "uid-1"}, nil
}

func (s stubProvider) RevokeSessions(context.Context, string) error { return s.revokeErr }

func newLocalService(t *testing.T, m *metrics.ShopMetrics) *Service {
	t.Helper()
	provider, err := local.NewProvider([]byte("secret"), local.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return NewService(provider, nil, m)
}

func TestService_SignUpLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t, nil)

	created, err := svc.SignUp(ctx, " user@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", created.User.Email)

	session, err := svc.LogIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.UID, user.UID)

	current, err := svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User, current)

	require.NoError(t, svc.LogOut(ctx, session.Token))

	_, err = svc.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.Authenticate(ctx, created.Token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_NormalizesEmailCase(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t, nil)

	created, err := svc.SignUp(ctx, "Eater@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "eater@example.com", created.User.Email)

	session, err := svc.LogIn(ctx, " EATER@EXAMPLE.COM", "secret1")
	require.NoError(t, err)

	current, err := svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "eater@example.com", current.Email)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t, nil)

	_, err := svc.SignUp(ctx, "", "secret1")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SignUp(ctx, "user@example.com", "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.LogIn(ctx, "  ", "x")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, domain.ErrTokenMissing)
	require.ErrorIs(t, svc.LogOut(ctx, " "), domain.ErrTokenMissing)
	_, err = svc.CurrentUser(ctx, "")
	require.ErrorIs(t, err, domain.ErrTokenMissing)
}

func TestService_ErrorKinds(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t, nil)

	_, err := svc.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "user@example.com", "secret2")
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.LogIn(ctx, "user@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_ProviderFailures(t *testing.T) {
	ctx := context.Background()
	outage := errors.New("connection refused")

	svc := NewService(stubProvider{signInErr: outage}, nil, nil)
	_, err := svc.LogIn(ctx, "user@example.com", "secret1")
	require.ErrorIs(t, err, domain.ErrAuthProvider)
	require.ErrorIs(t, err, outage)

	svc = NewService(stubProvider{revokeErr: outage}, nil, nil)
	require.ErrorIs(t, svc.LogOut(ctx, "token"), domain.ErrAuthProvider)

	svc = NewService(stubProvider{verifyErr: domain.ErrTokenInvalid}, nil, nil)
	err = svc.LogOut(ctx, "token")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	require.NotErrorIs(t, err, domain.ErrAuthProvider)
}

func TestService_RecordsAuthMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	svc := newLocalService(t, metrics.NewShopMetricsWithRegisterer(reg))

	_, err := svc.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.LogIn(ctx, "user@example.com", "wrong")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "food_auth_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
