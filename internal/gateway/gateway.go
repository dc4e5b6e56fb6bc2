// Package gateway executes every request against the remote commerce API and
// centralizes the failure policy: 400 surfaces the server's message, 5xx
// surfaces a generic connectivity notice, 401 on an authenticated call ends
// the session, and every expected failure resolves to a nil payload so
// callers branch on nil instead of on exceptions.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront-web/internal/notify"
	"storefront-web/internal/service/session"

	"go.uber.org/zap"
)

// User-facing notification texts.
const (
	MsgInvalidRequest    = "Invalid request"
	MsgServerUnreachable = "Could not reach the server. Please try again."
)

// TokenSource resolves the bearer credential for authenticated calls and
// reacts when the server declares the session dead.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	HandleUnauthorized(ctx context.Context)
}

// Client is the process-wide half of the gateway: base URL, store namespace
// and the shared HTTP client. Bind attaches the per-request half.
type Client struct {
	http      *http.Client
	baseURL   string
	storeSlug string
	log       *zap.Logger
}

func New(baseURL, storeSlug string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:      httpClient,
		baseURL:   baseURL,
		storeSlug: storeSlug,
		log:       log,
	}
}

// Bind scopes the client to one request: notifications go to n, bearer
// credentials come from tokens. tokens may be nil for public-only callers.
func (c *Client) Bind(n notify.Notifier, tokens TokenSource) *Caller {
	return &Caller{client: c, notifier: n, tokens: tokens}
}

// Caller executes requests on behalf of one visitor.
type Caller struct {
	client   *Client
	notifier notify.Notifier
	tokens   TokenSource
}

// Public executes a request without credentials. When addStorePrefix is set
// the path is namespaced under the store ("/open/{slug}"). A nil result
// means the request failed and any user-facing policy already ran.
func (r *Caller) Public(ctx context.Context, method, path string, body any, addStorePrefix, silent bool) json.RawMessage {
	url := r.client.baseURL + path
	if addStorePrefix {
		url = r.client.baseURL + "/open/" + r.client.storeSlug + path
	}
	raw, _ := r.execute(ctx, method, url, body, "", silent)
	return raw
}

// Authed resolves an access token (refreshing if absent), attaches it as a
// bearer credential and executes. A 401 response invokes the logout path.
// A nil result means the request failed; callers must not assume a shape
// without a nil check.
func (r *Caller) Authed(ctx context.Context, method, path string, body any, silent bool) json.RawMessage {
	if r.tokens == nil {
		return nil
	}
	token, err := r.tokens.Token(ctx)
	if err != nil {
		if !silent && !errors.Is(err, session.ErrUnauthorized) {
			r.notifier.Notify(MsgServerUnreachable)
		}
		return nil
	}

	raw, status := r.execute(ctx, method, r.client.baseURL+path, body, token, silent)
	if status == http.StatusUnauthorized {
		r.tokens.HandleUnauthorized(ctx)
	}
	return raw
}

// execute performs the call and applies the notification policy. It returns
// the payload (nil on failure) and the HTTP status (0 when the request never
// reached the server).
func (r *Caller) execute(ctx context.Context, method, url string, body any, bearer string, silent bool) (json.RawMessage, int) {
	method, ok := normalizeMethod(method)
	if !ok {
		r.client.log.Error("unsupported request method", zap.String("method", method))
		return nil, 0
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			r.client.log.Error("marshal request body", zap.String("url", url), zap.Error(err))
			return nil, 0
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		r.client.log.Error("build request", zap.String("url", url), zap.Error(err))
		return nil, 0
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		r.client.log.Debug("request failed", zap.String("url", url), zap.Error(err))
		return nil, 0
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r.client.log.Debug("read response", zap.String("url", url), zap.Error(err))
		return nil, resp.StatusCode
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(raw) == 0 {
			return json.RawMessage("null"), resp.StatusCode
		}
		return raw, resp.StatusCode
	case resp.StatusCode == http.StatusBadRequest:
		if !silent {
			r.notifier.Notify(serverMessage(raw))
		}
	case resp.StatusCode >= 500:
		if !silent {
			r.notifier.Notify(MsgServerUnreachable)
		}
	}
	return nil, resp.StatusCode
}

func normalizeMethod(method string) (string, bool) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return http.MethodGet, true
	case http.MethodPost:
		return http.MethodPost, true
	case http.MethodPut, "UPDATE":
		return http.MethodPut, true
	case http.MethodDelete:
		return http.MethodDelete, true
	default:
		return method, false
	}
}

// serverMessage extracts the server-provided message of a 400 response,
// falling back to the generic text.
func serverMessage(raw []byte) string {
	var body struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != nil {
		if msg := strings.TrimSpace(fmt.Sprint(body.Message)); msg != "" {
			return msg
		}
	}
	return MsgInvalidRequest
}
