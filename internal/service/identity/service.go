// Package identity: шлюз к провайдеру идентификации: регистрация, вход,
// выход и проверка сессионных токенов.
package identity

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// Service делегирует операции провайдеру и нормализует входные данные.
type Service struct {
	provider domain.IdentityProvider
	logger   *log.Entry
	metrics  *metrics.ShopMetrics
}

// NewService создаёт шлюз. logger и m могут быть nil.
func NewService(provider domain.IdentityProvider, logger *log.Entry, m *metrics.ShopMetrics) *Service {
	if logger == nil {
		logger = log.WithField("component", "identity")
	}
	return &Service{provider: provider, logger: logger, metrics: m}
}

// SignUp регистрирует пользователя и сразу открывает сессию.
func (s *Service) SignUp(ctx context.Context, email, password string) (session domain.Session, err error) {
	defer s.record("signup", &err)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, domain.ErrCredentialsMissing
	}

	session, err = s.provider.SignUp(ctx, email, password)
	if err != nil {
		return domain.Session{}, domain.ProviderError("sign up", err)
	}

	s.logger.WithField("uid", session.User.UID).Info("user signed up")
	return session, nil
}

// LogIn проверяет пароль у провайдера и возвращает сессию.
func (s *Service) LogIn(ctx context.Context, email, password string) (session domain.Session, err error) {
	defer s.record("login", &err)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, domain.ErrCredentialsMissing
	}

	session, err = s.provider.SignIn(ctx, email, password)
	if err != nil {
		return domain.Session{}, domain.ProviderError("sign in", err)
	}

	s.logger.WithField("uid", session.User.UID).Debug("user logged in")
	return session, nil
}

// LogOut отзывает все сессии владельца токена.
func (s *Service) LogOut(ctx context.Context, token string) (err error) {
	defer s.record("logout", &err)

	user, err := s.verify(ctx, token)
	if err != nil {
		return err
	}

	if err = s.provider.RevokeSessions(ctx, user.UID); err != nil {
		return domain.ProviderError("revoke sessions", err)
	}

	s.logger.WithField("uid", user.UID).Info("user sessions revoked")
	return nil
}

// CurrentUser проверяет токен и возвращает актуальные данные пользователя.
func (s *Service) CurrentUser(ctx context.Context, token string) (user domain.User, err error) {
	defer s.record("user", &err)

	verified, err := s.verify(ctx, token)
	if err != nil {
		return domain.User{}, err
	}

	user, err = s.provider.GetUser(ctx, verified.UID)
	if err != nil {
		return domain.User{}, domain.ProviderError("get user", err)
	}
	return user, nil
}

// Authenticate только проверяет токен.
func (s *Service) Authenticate(ctx context.Context, token string) (user domain.User, err error) {
	defer s.record("verify", &err)
	return s.verify(ctx, token)
}

func (s *Service) verify(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrTokenMissing
	}

	user, err := s.provider.Verify(ctx, token)
	if err != nil {
		return domain.User{}, domain.ProviderError("verify token", err)
	}
	return user, nil
}

func (s *Service) record(operation string, err *error) {
	if s.metrics != nil {
		s.metrics.RecordAuth(operation, *err)
	}
}

// normalizeEmail приводит адрес к виду, в котором его хранит провайдер.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
