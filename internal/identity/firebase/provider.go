// Package firebase реализует провайдер идентификации поверх Firebase Auth:
// Admin SDK для управления пользователями и проверки токенов, Identity Toolkit
// REST API для входа по паролю и обмена custom token на ID token.
package firebase

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// AuthClient: подмножество *auth.Client, которое использует провайдер.
type AuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// Provider: IdentityProvider на Firebase.
type Provider struct {
	auth    AuthClient
	toolkit *ToolkitClient
	logger  *log.Entry

	// Классификаторы ошибок Admin SDK; в тестах подменяются.
	isEmailTaken   func(error) bool
	isTokenInvalid func(error) bool
	isUserNotFound func(error) bool
}

// NewProvider создаёт провайдер.
func NewProvider(client AuthClient, toolkit *ToolkitClient, logger *log.Entry) *Provider {
	if logger == nil {
		logger = log.WithField("component", "firebase-identity")
	}
	return &Provider{
		auth:           client,
		toolkit:        toolkit,
		logger:         logger,
		isEmailTaken:   auth.IsEmailAlreadyExists,
		isTokenInvalid: isTokenRejected,
		isUserNotFound: auth.IsUserNotFound,
	}
}

// SignUp создаёт пользователя, выпускает custom token и обменивает его на ID token.
func (p *Provider) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	record, err := p.auth.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if p.isEmailTaken(err) {
			return domain.Session{}, domain.ErrEmailInUse
		}
		return domain.Session{}, domain.ProviderError("create user", err)
	}

	customToken, err := p.auth.CustomToken(ctx, record.UID)
	if err != nil {
		return domain.Session{}, domain.ProviderError("mint custom token", err)
	}

	session, err := p.toolkit.SignInWithCustomToken(ctx, customToken)
	if err != nil {
		return domain.Session{}, domain.ProviderError("exchange custom token", err)
	}

	return domain.Session{
		Token: session.IDToken,
		User:  domain.User{UID: record.UID, Email: record.Email},
	}, nil
}

// SignIn проверяет пароль через signInWithPassword.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	session, err := p.toolkit.SignInWithPassword(ctx, email, password)
	if err != nil {
		var tkErr *ToolkitError
		if errors.As(err, &tkErr) && tkErr.InvalidCredentials() {
			p.logger.WithField("reason", tkErr.Message).Debug("sign in rejected by provider")
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, domain.ProviderError("sign in with password", err)
	}

	user := domain.User{UID: session.LocalID, Email: session.Email}
	if user.Email == "" {
		user.Email = email
	}
	return domain.Session{Token: session.IDToken, User: user}, nil
}

// Verify проверяет ID token, включая отзыв сессий.
func (p *Provider) Verify(ctx context.Context, token string) (domain.User, error) {
	decoded, err := p.auth.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		if p.isTokenInvalid(err) {
			return domain.User{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
		}
		return domain.User{}, domain.ProviderError("verify id token", err)
	}

	email, _ := decoded.Claims["email"].(string)
	return domain.User{UID: decoded.UID, Email: email}, nil
}

// RevokeSessions отзывает refresh-токены; выданные ранее ID token перестают проходить Verify.
func (p *Provider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return domain.ProviderError("revoke refresh tokens", err)
	}
	return nil
}

// GetUser читает актуальную запись пользователя.
func (p *Provider) GetUser(ctx context.Context, uid string) (domain.User, error) {
	record, err := p.auth.GetUser(ctx, uid)
	if err != nil {
		if p.isUserNotFound(err) {
			return domain.User{}, fmt.Errorf("%w: user no longer exists", domain.ErrTokenInvalid)
		}
		return domain.User{}, domain.ProviderError("get user", err)
	}
	return domain.User{UID: record.UID, Email: record.Email}, nil
}

func isTokenRejected(err error) bool {
	return auth.IsIDTokenInvalid(err) ||
		auth.IsIDTokenExpired(err) ||
		auth.IsIDTokenRevoked(err) ||
		auth.IsUserDisabled(err) ||
		auth.IsUserNotFound(err)
}

var _ domain.IdentityProvider = (*Provider)(nil)
