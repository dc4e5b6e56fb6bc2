package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ErrUnauthorized reports that the refresh credential was rejected. It is the
// one refresh failure that cascades into a logout.
var ErrUnauthorized = errors.New("refresh credential rejected")

// Tokens is the credential set returned by the OAuth provider.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

// Exchanger talks to the OAuth provider endpoints of the commerce API. The
// client secret never leaves this layer.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
	Logout(ctx context.Context, accessToken string) error
}

// ProviderClient implements Exchanger against the remote provider.
type ProviderClient struct {
	http         *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	log          *zap.Logger
}

func NewProviderClient(baseURL, clientID, clientSecret string, httpClient *http.Client, log *zap.Logger) *ProviderClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProviderClient{
		http:         httpClient,
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log,
	}
}

func (p *ProviderClient) Exchange(ctx context.Context, code string) (Tokens, error) {
	return p.tokenRequest(ctx, "/provider/oauth/token-exchange/", map[string]string{
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
		"code":          code,
	})
}

func (p *ProviderClient) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	return p.tokenRequest(ctx, "/provider/oauth/refresh-token/", map[string]string{
		"client_id":     p.clientID,
		"refresh_token": refreshToken,
	})
}

func (p *ProviderClient) Logout(ctx context.Context, accessToken string) error {
	payload, _ := json.Marshal(map[string]string{"client_id": p.clientID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/provider/oauth/logout/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider logout: status %d", resp.StatusCode)
	}
	return nil
}

func (p *ProviderClient) tokenRequest(ctx context.Context, path string, payload map[string]string) (Tokens, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return Tokens{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Tokens{}, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Tokens{}, fmt.Errorf("%s: %s", path, providerMessage(raw, resp.StatusCode))
	}

	var tokens Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("decode provider response: %w", err)
	}
	if tokens.AccessToken == "" {
		return Tokens{}, errors.New("provider response missing access token")
	}
	return tokens, nil
}

func providerMessage(raw []byte, status int) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("status %d", status)
}
