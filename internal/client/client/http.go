package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/moodmapper/moodmapper/internal/client/models"
)

const requestTimeout = 12 * time.Second

// HTTPClient is the production Remote/Identity implementation over the
// server's JSON API. It keeps the current session (user id plus token
// pair) and transparently refreshes an expired access token once per
// request before giving up.
type HTTPClient struct {
	rest *resty.Client

	mu           sync.Mutex
	userID       string
	accessToken  string
	refreshToken string

	// onTokens, when set, is invoked after every successful login or
	// refresh so the caller can persist the new pair.
	onTokens func(access, refresh string)
}

// NewHTTPClient returns a client bound to the given base URL, e.g.
// "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string) *HTTPClient {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPClient{rest: rest}
}

// OnTokensRefreshed registers a persistence hook for token rotation.
func (c *HTTPClient) OnTokensRefreshed(fn func(access, refresh string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

// SetSession installs a previously persisted session.
func (c *HTTPClient) SetSession(userID, access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.accessToken = access
	c.refreshToken = refresh
}

// ClearSession drops the session; the client becomes anonymous.
func (c *HTTPClient) ClearSession() {
	c.SetSession("", "", "")
}

// UserID implements Identity.
func (c *HTTPClient) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// IsAnonymous implements Identity. A client without a session has no
// durable cloud-side identity.
func (c *HTTPClient) IsAnonymous() bool {
	return c.UserID() == ""
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	UserID       string `json:"userId,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new account on the server.
func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(credentialsRequest{Username: username, Password: password}).
		Post("/api/register")
	if err != nil {
		return ErrUnavailable
	}
	return c.checkStatus(resp)
}

// Login authenticates and installs the returned session. The user id is
// returned so the caller can persist it alongside the tokens.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var tokens tokenResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(credentialsRequest{Username: username, Password: password}).
		SetResult(&tokens).
		Post("/api/login")
	if err != nil {
		return "", ErrUnavailable
	}
	if err := c.checkStatus(resp); err != nil {
		return "", err
	}

	c.SetSession(tokens.UserID, tokens.AccessToken, tokens.RefreshToken)
	c.notifyTokens(tokens.AccessToken, tokens.RefreshToken)
	return tokens.UserID, nil
}

// DeleteAccount removes the signed-in user and their entire collection
// server-side, then clears the session.
func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/api/account")
	})
	if err != nil {
		return err
	}
	if err := c.checkStatus(resp); err != nil {
		return err
	}
	c.ClearSession()
	return nil
}

// Ping implements Remote.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.rest.R().SetContext(ctx).Get("/api/ping")
	if err != nil {
		return ErrUnavailable
	}
	return c.checkStatus(resp)
}

// SetDoc implements Remote.
func (c *HTTPClient) SetDoc(ctx context.Context, doc models.Document) error {
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(doc).Put("/api/entries/" + doc.ID)
	})
	if err != nil {
		return err
	}
	return c.checkStatus(resp)
}

// DeleteDoc implements Remote.
func (c *HTTPClient) DeleteDoc(ctx context.Context, id string) error {
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/api/entries/" + id)
	})
	if err != nil {
		return err
	}
	return c.checkStatus(resp)
}

// GetAll implements Remote.
func (c *HTTPClient) GetAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&docs).Get("/api/entries")
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return docs, nil
}

// Count implements Remote.
func (c *HTTPClient) Count(ctx context.Context) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&result).Get("/api/entries/count")
	})
	if err != nil {
		return 0, err
	}
	if err := c.checkStatus(resp); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// Changes implements Remote.
func (c *HTTPClient) Changes(ctx context.Context, after time.Time) ([]models.Document, error) {
	var docs []models.Document
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		if !after.IsZero() {
			r.SetQueryParam("after", after.UTC().Format(time.RFC3339Nano))
		}
		return r.SetResult(&docs).Get("/api/entries/changes")
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return docs, nil
}

type batchRequest struct {
	Ops []BatchOp `json:"ops"`
}

// BatchWrite implements Remote.
func (c *HTTPClient) BatchWrite(ctx context.Context, ops []BatchOp) error {
	resp, err := c.authed(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(batchRequest{Ops: ops}).Post("/api/entries/batch")
	})
	if err != nil {
		return err
	}
	return c.checkStatus(resp)
}

// authed runs an API call with the bearer token attached. On a 401 it
// refreshes the token pair once and replays the call; a second 401 is
// surfaced as ErrUnauthorized.
func (c *HTTPClient) authed(ctx context.Context, call func(r *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	c.mu.Lock()
	access, refresh := c.accessToken, c.refreshToken
	c.mu.Unlock()
	if access == "" {
		return nil, ErrNotSignedIn
	}

	resp, err := call(c.rest.R().SetContext(ctx).SetAuthToken(access))
	if err != nil {
		return nil, ErrUnavailable
	}
	if resp.StatusCode() != http.StatusUnauthorized || refresh == "" {
		return resp, nil
	}

	access, err = c.refreshTokens(ctx, refresh)
	if err != nil {
		return nil, err
	}

	resp, err = call(c.rest.R().SetContext(ctx).SetAuthToken(access))
	if err != nil {
		return nil, ErrUnavailable
	}
	return resp, nil
}

func (c *HTTPClient) refreshTokens(ctx context.Context, refresh string) (string, error) {
	var tokens tokenResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"refreshToken": refresh}).
		SetResult(&tokens).
		Post("/api/refresh")
	if err != nil {
		return "", ErrUnavailable
	}
	if resp.IsError() {
		return "", ErrUnauthorized
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()
	c.notifyTokens(tokens.AccessToken, tokens.RefreshToken)
	return tokens.AccessToken, nil
}

func (c *HTTPClient) notifyTokens(access, refresh string) {
	c.mu.Lock()
	fn := c.onTokens
	c.mu.Unlock()
	if fn != nil {
		fn(access, refresh)
	}
}

func (c *HTTPClient) checkStatus(resp *resty.Response) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode() >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return fmt.Errorf("server error: %s", resp.Status())
	}
}
