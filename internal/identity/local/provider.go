// Package local реализует провайдер идентификации в памяти процесса:
// bcrypt-хэши паролей и подписанные HS256 сессионные токены.
// Используется для локального запуска и тестов без Firebase.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

const (
	defaultIssuer   = "foodorder-local"
	defaultTokenTTL = time.Hour
)

type account struct {
	uid            string
	email          string
	passwordHash   []byte
	sessionVersion int
}

type sessionClaims struct {
	Email          string `json:"email"`
	SessionVersion int    `json:"sv"`
	jwt.RegisteredClaims
}

// Provider хранит аккаунты в памяти.
type Provider struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	logger     *log.Entry

	mu      sync.RWMutex
	byEmail map[string]*account
	byUID   map[string]*account
}

// Option настраивает Provider.
type Option func(*Provider)

// WithTokenTTL задаёт срок жизни токена.
func WithTokenTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.tokenTTL = ttl
		}
	}
}

// WithBcryptCost задаёт стоимость bcrypt.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			p.bcryptCost = cost
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider создаёт провайдер с ключом подписи secret.
func NewProvider(secret []byte, opts ...Option) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errors.New("local identity: signing secret is required")
	}

	p := &Provider{
		secret:     append([]byte(nil), secret...),
		tokenTTL:   defaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     log.WithField("component", "local-identity"),
		byEmail:    make(map[string]*account),
		byUID:      make(map[string]*account),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SignUp создаёт аккаунт и выдаёт токен.
func (p *Provider) SignUp(_ context.Context, email, password string) (domain.Session, error) {
	key := normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return domain.Session{}, domain.ProviderError("hash password", err)
	}

	p.mu.Lock()
	if _, exists := p.byEmail[key]; exists {
		p.mu.Unlock()
		return domain.Session{}, domain.ErrEmailInUse
	}
	acc := &account{
		uid:          uuid.NewString(),
		email:        key,
		passwordHash: hash,
	}
	p.byEmail[key] = acc
	p.byUID[acc.uid] = acc
	version := acc.sessionVersion
	p.mu.Unlock()

	p.logger.WithField("uid", acc.uid).Debug("local account created")
	return p.issue(acc.uid, acc.email, version)
}

// SignIn сверяет пароль с хэшем.
func (p *Provider) SignIn(_ context.Context, email, password string) (domain.Session, error) {
	p.mu.RLock()
	acc, ok := p.byEmail[normalizeEmail(email)]
	var (
		uid, addr string
		hash      []byte
		version   int
	)
	if ok {
		uid, addr, hash, version = acc.uid, acc.email, acc.passwordHash, acc.sessionVersion
	}
	p.mu.RUnlock()

	if !ok {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return p.issue(uid, addr, version)
}

// Verify проверяет подпись, срок и версию сессии токена.
func (p *Provider) Verify(_ context.Context, token string) (domain.User, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(defaultIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	p.mu.RLock()
	acc, ok := p.byUID[claims.Subject]
	var version int
	if ok {
		version = acc.sessionVersion
	}
	p.mu.RUnlock()

	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown subject", domain.ErrTokenInvalid)
	}
	if claims.SessionVersion != version {
		return domain.User{}, fmt.Errorf("%w: session revoked", domain.ErrTokenInvalid)
	}
	return domain.User{UID: claims.Subject, Email: claims.Email}, nil
}

// RevokeSessions инвалидирует все выданные токены пользователя.
func (p *Provider) RevokeSessions(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byUID[uid]
	if !ok {
		return domain.ProviderError("revoke sessions", fmt.Errorf("unknown user %q", uid))
	}
	acc.sessionVersion++
	return nil
}

// GetUser возвращает данные аккаунта.
func (p *Provider) GetUser(_ context.Context, uid string) (domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acc, ok := p.byUID[uid]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user no longer exists", domain.ErrTokenInvalid)
	}
	return domain.User{UID: acc.uid, Email: acc.email}, nil
}

func (p *Provider) issue(uid, email string, version int) (domain.Session, error) {
	now := p.now()
	claims := sessionClaims{
		Email:          email,
		SessionVersion: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    defaultIssuer,
			Subject:   uid,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return domain.Session{}, domain.ProviderError("sign token", err)
	}
	return domain.Session{Token: signed, User: domain.User{UID: uid, Email: email}}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.IdentityProvider = (*Provider)(nil)
