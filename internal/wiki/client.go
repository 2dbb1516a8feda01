package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize caps how much of an API response is read.
const maxResponseSize = 8 * 1024 * 1024

// Client talks to one wiki's api.php. It is not safe for concurrent use:
// csv2wiki drives the wiki strictly sequentially.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	user      string
	csrfToken string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the api.php at endpoint. httpClient must
// keep cookies, since MediaWiki sessions are cookie based.
func NewClient(endpoint string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Login starts a session with a username and password and fetches the
// CSRF token needed for writes.
func (c *Client) Login(ctx context.Context, user, password string) error {
	loginToken, err := c.token(ctx, "login")
	if err != nil {
		return fmt.Errorf("failed to get login token: %w", err)
	}

	var resp struct {
		Login struct {
			Result   string `json:"result"`
			Reason   string `json:"reason"`
			UserName string `json:"lgusername"`
		} `json:"login"`
	}
	err = c.post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {user},
		"lgpassword": {password},
		"lgtoken":    {loginToken},
	}, &resp)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if resp.Login.Result != "Success" {
		reason := resp.Login.Reason
		if reason == "" {
			reason = resp.Login.Result
		}
		return fmt.Errorf("%w for %s: %s", ErrLoginFailed, user, reason)
	}

	c.user = resp.Login.UserName
	if c.user == "" {
		c.user = user
	}

	csrf, err := c.token(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("failed to get CSRF token: %w", err)
	}
	c.csrfToken = csrf

	c.logger.Info("logged in to wiki", "endpoint", c.endpoint, "user", c.user)
	return nil
}

// token fetches a token of the given type ("login" or "csrf").
func (c *Client) token(ctx context.Context, kind string) (string, error) {
	var resp struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	err := c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {kind},
	}, &resp)
	if err != nil {
		return "", err
	}
	tok := resp.Query.Tokens[kind+"token"]
	if tok == "" {
		return "", fmt.Errorf("%w: no %s token", ErrUnexpectedResponse, kind)
	}
	return tok, nil
}

// write sends a token-protected POST. It fails with ErrNotLoggedIn before
// Login and asserts the session is still a logged-in user.
func (c *Client) write(ctx context.Context, params url.Values, out any) error {
	if c.csrfToken == "" {
		return ErrNotLoggedIn
	}
	params.Set("token", c.csrfToken)
	params.Set("assert", "user")
	return c.post(ctx, params, out)
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params = withFormat(params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, params.Get("action"), out)
}

func (c *Client) post(ctx context.Context, params url.Values, out any) error {
	params = withFormat(params)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, params.Get("action"), out)
}

func withFormat(params url.Values) url.Values {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	return params
}

// do executes req and decodes the JSON body into out. An "error" member in
// the response is returned as *APIError.
func (c *Client) do(req *http.Request, action string, out any) error {
	c.logger.Debug("wiki API request", "method", req.Method, "action", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrUnexpectedResponse, resp.StatusCode, c.endpoint)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err) //nolint:errorlint // Only the sentinel is meant for errors.Is
	}
	if envelope.Error != nil {
		c.logger.Debug("wiki API error", "action", action, "error_code", envelope.Error.Code)
		return envelope.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err) //nolint:errorlint // Only the sentinel is meant for errors.Is
	}
	return nil
}
