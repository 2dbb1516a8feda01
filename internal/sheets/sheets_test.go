package sheets

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
)

func TestOAuthConfig(t *testing.T) {
	t.Parallel()

	t.Run("requires client credentials", func(t *testing.T) {
		t.Parallel()

		if _, err := OAuthConfig(Credentials{ClientID: "id"}); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("OAuthConfig() error = %v, want ErrMissingCredentials", err)
		}
	})

	t.Run("read-only scope and default redirect", func(t *testing.T) {
		t.Parallel()

		cfg, err := OAuthConfig(Credentials{ClientID: "id", ClientSecret: "secret"})
		if err != nil {
			t.Fatalf("OAuthConfig() error = %v", err)
		}
		if diff := cmp.Diff([]string{ReadOnlyScope}, cfg.Scopes); diff != "" {
			t.Errorf("Scopes mismatch (-want +got):\n%s", diff)
		}
		if cfg.RedirectURL != OutOfBandRedirect {
			t.Errorf("RedirectURL = %q", cfg.RedirectURL)
		}
		if !strings.Contains(cfg.Endpoint.AuthURL, "accounts.google.com") {
			t.Errorf("unexpected AuthURL %q", cfg.Endpoint.AuthURL)
		}
	})
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewTokenStore(path)

	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("Load() error = %v, want ErrTokenNotFound", err)
	}

	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

// newTokenServer answers the OAuth token exchange.
func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("code") != "the-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh",
			"refresh_token": "keep",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  OutOfBandRedirect,
		Scopes:       []string{ReadOnlyScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://auth.example.com/o/oauth2/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestAuthorizerToken(t *testing.T) {
	t.Parallel()

	t.Run("interactive exchange caches the token", func(t *testing.T) {
		t.Parallel()

		srv := newTokenServer(t)
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		var out bytes.Buffer

		a := NewAuthorizer(testConfig(srv.URL), store, strings.NewReader("the-code\n"), &out)
		tok, err := a.Token(t.Context())
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok.AccessToken != "fresh" {
			t.Errorf("AccessToken = %q", tok.AccessToken)
		}
		if !strings.Contains(out.String(), "https://auth.example.com/o/oauth2/auth?") {
			t.Errorf("consent URL not printed:\n%s", out.String())
		}

		cached, err := store.Load()
		if err != nil {
			t.Fatalf("token was not cached: %v", err)
		}
		if cached.RefreshToken != "keep" {
			t.Errorf("cached RefreshToken = %q", cached.RefreshToken)
		}
	})

	t.Run("cached token skips the prompt", func(t *testing.T) {
		t.Parallel()

		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}); err != nil {
			t.Fatal(err)
		}
		var out bytes.Buffer

		a := NewAuthorizer(testConfig("http://unused.invalid"), store, strings.NewReader(""), &out)
		tok, err := a.Token(t.Context())
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok.AccessToken != "cached" {
			t.Errorf("AccessToken = %q", tok.AccessToken)
		}
		if out.Len() != 0 {
			t.Errorf("unexpected prompt: %q", out.String())
		}
	})

	t.Run("empty code", func(t *testing.T) {
		t.Parallel()

		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		a := NewAuthorizer(testConfig("http://unused.invalid"), store, strings.NewReader("\n"), &bytes.Buffer{})
		if _, err := a.Token(t.Context()); !errors.Is(err, ErrNoAuthCode) {
			t.Errorf("Token() error = %v, want ErrNoAuthCode", err)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()

		srv := newTokenServer(t)
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		a := NewAuthorizer(testConfig(srv.URL), store, strings.NewReader("wrong\n"), &bytes.Buffer{})
		if _, err := a.Token(t.Context()); err == nil {
			t.Fatal("expected error for rejected code")
		}
		if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
			t.Error("a failed exchange must not cache anything")
		}
	})
}

func TestValues(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"range": "Sheet1!A1:C3",
			"majorDimension": "ROWS",
			"values": [["Title", "Count", "Category"], ["Alpha", 3, "Green"], ["Beta"]]
		}`))
	}))
	t.Cleanup(srv.Close)

	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	a := NewAuthorizer(testConfig("http://unused.invalid"), store, nil, nil)
	tok := &oauth2.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	c := NewClient(a.HTTPClient(t.Context(), srv.Client(), tok), WithBaseURL(srv.URL+"/"))
	rows, err := c.Values(t.Context(), "sheet-id", "Sheet1!A1:C3")
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}

	want := [][]string{{"Title", "Count", "Category"}, {"Alpha", "3", "Green"}, {"Beta"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-id/values/Sheet1") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestValuesEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"range": "Sheet1!A1:C3", "majorDimension": "ROWS"}`))
	}))
	t.Cleanup(srv.Close)

	rows, err := NewClient(srv.Client(), WithBaseURL(srv.URL)).Values(t.Context(), "id", "A1:B2")
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestValuesErrors(t *testing.T) {
	t.Parallel()

	t.Run("API error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "Requested entity was not found.", "status": "NOT_FOUND"}}`))
		}))
		t.Cleanup(srv.Close)

		_, err := NewClient(srv.Client(), WithBaseURL(srv.URL)).Values(t.Context(), "id", "A1:B2")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusNotFound || apiErr.Status != "NOT_FOUND" {
			t.Errorf("unexpected API error: %+v", apiErr)
		}
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gateway down", http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		_, err := NewClient(srv.Client(), WithBaseURL(srv.URL)).Values(t.Context(), "id", "A1:B2")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "Bad Gateway" {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("missing sheet settings", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient(http.DefaultClient).Values(t.Context(), "", "A1"); !errors.Is(err, ErrMissingSheet) {
			t.Errorf("Values() error = %v, want ErrMissingSheet", err)
		}
	})
}
