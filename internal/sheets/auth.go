package sheets

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ReadOnlyScope grants read access to spreadsheets.
const ReadOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// OutOfBandRedirect makes Google show the code to the user instead of
// redirecting to a local server.
const OutOfBandRedirect = "urn:ietf:wg:oauth:2.0:oob"

// Credentials identify the OAuth client.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig returns the oauth2 configuration for read-only access.
func OAuthConfig(c Credentials) (*oauth2.Config, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = OutOfBandRedirect
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       []string{ReadOnlyScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenStore caches an OAuth token as JSON in a file.
type TokenStore struct {
	path string
}

// NewTokenStore returns a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the token file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the cached token, or returns ErrTokenNotFound.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token %s: %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok with owner-only permissions.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Authorizer obtains a token, interactively if nothing usable is cached.
type Authorizer struct {
	config *oauth2.Config
	store  *TokenStore
	in     io.Reader
	out    io.Writer
}

// NewAuthorizer returns an Authorizer that prompts on out and reads the
// authorization code from in.
func NewAuthorizer(config *oauth2.Config, store *TokenStore, in io.Reader, out io.Writer) *Authorizer {
	return &Authorizer{config: config, store: store, in: in, out: out}
}

// Token returns the cached token when it is still valid or can be
// refreshed. Otherwise it runs the consent flow and caches the result.
func (a *Authorizer) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := a.store.Load()
	switch {
	case err == nil && (tok.Valid() || tok.RefreshToken != ""):
		return tok, nil
	case err != nil && !errors.Is(err, ErrTokenNotFound):
		return nil, err
	}

	url := a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(a.out, "Go to the following link in your browser:\n\n  %s\n\nThen enter the authorization code: ", url)

	code, err := bufio.NewReader(a.in).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
		return nil, ErrNoAuthCode
	}

	tok, err = a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := a.store.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// HTTPClient returns a client that authorizes requests with tok, refreshing
// it as needed. base carries the proxy and User-Agent settings; nil means
// http.DefaultClient.
func (a *Authorizer) HTTPClient(ctx context.Context, base *http.Client, tok *oauth2.Token) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, a.config.TokenSource(ctx, tok))
}
