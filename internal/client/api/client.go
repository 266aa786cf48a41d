// Package api is the typed REST client for the identity server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/isaidso/auth/internal/client/models"
	"github.com/isaidso/auth/internal/client/storage"
	"github.com/isaidso/auth/internal/common"
)

// Error is a non-2xx API response. Fields carries the per-field validation
// details when the server returned any.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is lets callers match transport-agnostic sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrorUnauthorized:
		return e.Status == http.StatusUnauthorized
	case common.ErrorValidation:
		return e.Status == http.StatusUnprocessableEntity
	case common.ErrorNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Session is the result of any endpoint that logs the user in.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
}

// Pair converts the session to the storable token pair.
func (s *Session) Pair() *storage.Pair {
	return &storage.Pair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Client talks to the identity server. Unauthenticated endpoints go through
// the bare client; bearer-protected endpoints go through the session-aware
// one installed with UseSession.
type Client struct {
	baseURL string
	bare    *http.Client
	authed  *http.Client
}

func NewClient(baseURL string) *Client {
	bare := &http.Client{Timeout: 10 * time.Second}
	return &Client{baseURL: baseURL, bare: bare, authed: bare}
}

// UseSession routes protected calls through the given transport, typically a
// session.Manager.
func (c *Client) UseSession(rt http.RoundTripper) {
	c.authed = &http.Client{Transport: rt, Timeout: 10 * time.Second}
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body any, bearer string, out any) error {
	var buf *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Message string              `json:"message"`
			Err     string              `json:"error"`
			Errors  map[string][]string `json:"errors"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			if payload.Message != "" {
				apiErr.Message = payload.Message
			} else if payload.Err != "" {
				apiErr.Message = payload.Err
			}
			apiErr.Fields = payload.Errors
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Register creates a password account and returns the server's message.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	body := map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, c.bare, http.MethodPost, "/register", body, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	out := &Session{}
	if err := c.do(ctx, c.bare, http.MethodPost, "/login", body, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout revokes the presented access token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authed, http.MethodPost, "/logout", nil, "", nil)
}

// Refresh rotates a refresh token for a fresh session. It bypasses the
// session transport so it can be used as the session manager's renewer.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	out := &Session{}
	if err := c.do(ctx, c.bare, http.MethodPost, "/refresh", nil, refreshToken, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Renew adapts Refresh to the session manager's renewal signature.
func (c *Client) Renew(ctx context.Context, refreshToken string) (*storage.Pair, error) {
	sess, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return sess.Pair(), nil
}

// User fetches the authenticated account.
func (c *Client) User(ctx context.Context) (*models.User, error) {
	out := &models.User{}
	if err := c.do(ctx, c.authed, http.MethodGet, "/user", nil, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfileParams are the mutable profile fields; nil means unchanged.
type UpdateProfileParams struct {
	Username string  `json:"username"`
	Name     *string `json:"name,omitempty"`
	Country  *string `json:"country,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// UpdateProfile submits profile changes and returns the updated account.
func (c *Client) UpdateProfile(ctx context.Context, params UpdateProfileParams) (*models.User, error) {
	var out struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}
	if err := c.do(ctx, c.authed, http.MethodPost, "/profile/update", params, "", &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// VerifyEmail redeems an emailed verification token and logs in.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*Session, error) {
	out := &Session{}
	path := "/auth/verify-email/" + url.PathEscape(token)
	if err := c.do(ctx, c.bare, http.MethodGet, path, nil, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword requests a reset link for the address.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"email": email}
	if err := c.do(ctx, c.bare, http.MethodPost, "/auth/forgot-password", body, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ResetPassword redeems a reset token, sets the new password, and logs in.
func (c *Client) ResetPassword(ctx context.Context, token, email, password string) (*Session, error) {
	body := map[string]string{
		"token":                 token,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}
	out := &Session{}
	if err := c.do(ctx, c.bare, http.MethodPost, "/auth/reset-password", body, "", out); err != nil {
		return nil, err
	}
	return out, nil
}
