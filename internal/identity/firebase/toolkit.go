package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultToolkitURL: базовый адрес Identity Toolkit REST API.
	DefaultToolkitURL     = "https://identitytoolkit.googleapis.com/v1"
	defaultToolkitTimeout = 10 * time.Second
)

// ToolkitClient вызывает Identity Toolkit REST API с web API key проекта.
type ToolkitClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewToolkitClient создаёт клиент; пустой baseURL заменяется DefaultToolkitURL.
func NewToolkitClient(baseURL, apiKey string, httpClient *http.Client) *ToolkitClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultToolkitURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultToolkitTimeout}
	}
	return &ToolkitClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ToolkitSession: ответ signInWith* эндпоинтов.
type ToolkitSession struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
}

// ToolkitError: ошибка Identity Toolkit: {"error":{"code":400,"message":"INVALID_PASSWORD"}}.
type ToolkitError struct {
	StatusCode int
	Message    string
}

func (e *ToolkitError) Error() string {
	return fmt.Sprintf("identity toolkit: status %d: %s", e.StatusCode, e.Message)
}

// InvalidCredentials сообщает, что провайдер отклонил email или пароль.
func (e *ToolkitError) InvalidCredentials() bool {
	code := e.Message
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		code = code[:idx]
	}
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL", "MISSING_PASSWORD":
		return true
	}
	return false
}

// SignInWithPassword проверяет пароль и возвращает сессию.
func (c *ToolkitClient) SignInWithPassword(ctx context.Context, email, password string) (*ToolkitSession, error) {
	return c.signIn(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignInWithCustomToken обменивает custom token на ID token.
func (c *ToolkitClient) SignInWithCustomToken(ctx context.Context, customToken string) (*ToolkitSession, error) {
	return c.signIn(ctx, "accounts:signInWithCustomToken", map[string]any{
		"token":             customToken,
		"returnSecureToken": true,
	})
}

func (c *ToolkitClient) signIn(ctx context.Context, method string, payload map[string]any) (*ToolkitSession, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := c.request(ctx, http.MethodPost, method, body)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var session ToolkitSession
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if session.IDToken == "" {
		return nil, fmt.Errorf("identity toolkit %s: empty idToken", method)
	}
	return &session, nil
}

func (c *ToolkitClient) request(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	endpoint := c.baseURL + "/" + path + "?key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func parseError(body []byte, statusCode int) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &ToolkitError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	}
	return &ToolkitError{StatusCode: statusCode, Message: errResp.Error.Message}
}
