package firebase

import (
	"context"
	"encoding/json"
	"fmt"

	firebasesdk "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// ServiceAccount: поля сервисного аккаунта, нужные сервису.
// webApiKey не входит в стандартный JSON ключа и добавляется в него вручную.
type ServiceAccount struct {
	ProjectID string `json:"project_id"`
	WebAPIKey string `json:"webApiKey"`
}

// ParseServiceAccount разбирает JSON сервисного аккаунта.
func ParseServiceAccount(raw []byte) (ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse firebase service account: %w", err)
	}
	if sa.ProjectID == "" {
		return ServiceAccount{}, fmt.Errorf("firebase service account: project_id is required")
	}
	return sa, nil
}

// NewApp инициализирует Firebase App с учётными данными сервисного аккаунта.
func NewApp(ctx context.Context, raw []byte) (*firebasesdk.App, ServiceAccount, error) {
	sa, err := ParseServiceAccount(raw)
	if err != nil {
		return nil, ServiceAccount{}, err
	}

	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: sa.ProjectID}, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, ServiceAccount{}, fmt.Errorf("init firebase app: %w", err)
	}
	return app, sa, nil
}
