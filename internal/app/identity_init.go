package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	fbidentity "github.com/vladislavdragonenkov/foodorder/internal/identity/firebase"
	"github.com/vladislavdragonenkov/foodorder/internal/identity/local"
)

const identityToolkitTimeout = 10 * time.Second

func (d *runtimeDependencies) initIdentity(ctx context.Context, cfg Config, fb *firebaseRuntime, logger *log.Entry) error {
	identityLogger := logger.WithField("identity", cfg.IdentityProvider)

	switch cfg.IdentityProvider {
	case IdentityProviderFirebase:
		authClient, err := fb.app.Auth(ctx)
		if err != nil {
			return fmt.Errorf("init firebase auth client: %w", err)
		}
		if fb.account.WebAPIKey == "" {
			return fmt.Errorf("firebase service account: webApiKey is required for sign in")
		}

		toolkit := fbidentity.NewToolkitClient(cfg.IdentityToolkitURL, fb.account.WebAPIKey,
			&http.Client{Timeout: identityToolkitTimeout})
		d.identity = fbidentity.NewProvider(authClient, toolkit, identityLogger)

	case IdentityProviderLocal:
		secret := []byte(strings.TrimSpace(cfg.LocalAuthSecret))
		if len(secret) == 0 {
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return fmt.Errorf("generate local auth secret: %w", err)
			}
			identityLogger.Warn("LOCAL_AUTH_SECRET is not set, sessions will not survive restart")
		}

		provider, err := local.NewProvider(secret,
			local.WithTokenTTL(cfg.LocalAuthTokenTTL),
			local.WithLogger(identityLogger),
		)
		if err != nil {
			return err
		}
		d.identity = provider

	default:
		return fmt.Errorf("unsupported identity provider %q", cfg.IdentityProvider)
	}

	identityLogger.Info("identity provider initialized")
	return nil
}
