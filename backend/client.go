// Package backend is the HTTP client for the console's auth backend. It
// performs no retries and no local fallback; error classification and
// recovery belong entirely to the session manager.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/onionrsv/console-session/identity"
	"github.com/onionrsv/console-session/tokenstore"
)

const defaultRequestTimeout = 10 * time.Second

const (
	verifyPath         = "/api/core/verify"
	tokenPath          = "/api/core/token"
	refreshPath        = "/api/core/refresh"
	profilePath        = "/api/users/me"
	changePasswordPath = "/api/users/change-password"
	registerPath       = "/api/users/"
)

// Client issues requests against the auth backend collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestTimeout sets the per-request timeout. A timed-out request is
// indistinguishable from a backend failure to callers.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient initializes a Client against the given base URL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// ExchangeCredentials swaps an email/password pair for a token pair.
func (c *Client) ExchangeCredentials(ctx context.Context, email, password string) (tokenstore.TokenPair, error) {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, tokenPath, "", credentialsRequest{Email: email, Password: password}, &tr)
	if err != nil {
		return tokenstore.TokenPair{}, errors.Wrap(InvalidCredentialsErr, err.Error())
	}
	return tokenstore.TokenPair{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}

// Verify reports whether the backend accepts the access token. It never
// returns an error: a network failure or non-2xx response is "not valid".
func (c *Client) Verify(ctx context.Context, accessToken string) bool {
	return c.do(ctx, http.MethodGet, verifyPath, accessToken, nil, nil) == nil
}

// Refresh mints a new token pair from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error) {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, refreshPath, "", refreshRequest{RefreshToken: refreshToken}, &tr)
	if err != nil {
		return tokenstore.TokenPair{}, errors.Wrap(RefreshFailedErr, err.Error())
	}
	return tokenstore.TokenPair{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}

// FetchProfile retrieves the authenticated user's identity.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*identity.Identity, error) {
	var id identity.Identity
	if err := c.do(ctx, http.MethodGet, profilePath, accessToken, nil, &id); err != nil {
		return nil, errors.Wrap(ProfileFetchFailedErr, err.Error())
	}
	return &id, nil
}

// UpdateProfile applies a partial update and returns the full updated identity.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, partial identity.Partial) (*identity.Identity, error) {
	var id identity.Identity
	if err := c.do(ctx, http.MethodPut, profilePath, accessToken, partial, &id); err != nil {
		return nil, errors.Wrap(ProfileUpdateFailedErr, err.Error())
	}
	return &id, nil
}

// ChangePassword rotates the user's password.
func (c *Client) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	req := changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := c.do(ctx, http.MethodPost, changePasswordPath, accessToken, req, nil); err != nil {
		return errors.Wrap(PasswordChangeFailedErr, err.Error())
	}
	return nil
}

// Register creates a new account. A subsequent login is required; this call
// never mutates session state.
func (c *Client) Register(ctx context.Context, email, displayName, password string) error {
	req := registerRequest{Email: email, FullName: displayName, Password: password}
	if err := c.do(ctx, http.MethodPost, registerPath, "", req, nil); err != nil {
		return errors.Wrap(RegistrationFailedErr, err.Error())
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
