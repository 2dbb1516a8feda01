package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultScheme is http because the typical target is a MediaWiki
	// running on localhost, which rarely has a TLS certificate.
	DefaultScheme = "http"

	// DefaultScriptPath is the path under which api.php is served.
	DefaultScriptPath = "/"

	// DefaultTimeout bounds each HTTP request to the wiki or Google APIs.
	DefaultTimeout = 60 * time.Second

	// DefaultPagePrefix is prepended to the row number to build page titles.
	DefaultPagePrefix = "Proposal_"

	// DefaultTOCTitle is the page that receives the table of contents.
	DefaultTOCTitle = "List of Proposals"

	// DefaultAuthzPathPrefix is the repository path that added authz
	// sections are expected to start with.
	DefaultAuthzPathPrefix = "/trunk/"

	// AuthzRootEnv names the environment variable pointing at the checkout
	// that contains the authz file.
	AuthzRootEnv = "OTS_DIR"

	// DefaultAuthzRelPath is the authz file location relative to AuthzRootEnv.
	DefaultAuthzRelPath = "infra/svn-server/srv/svn/repositories/auth/ots-authz-file"

	// PasswordEnv is consulted when the password argument is omitted.
	PasswordEnv = "CSV2WIKI_PASSWORD"

	// AppName is the application name used for XDG directory paths.
	AppName = "csv2wiki"

	// DefaultUserAgent identifies csv2wiki in HTTP requests. MediaWiki's
	// API etiquette asks clients to send a descriptive User-Agent.
	DefaultUserAgent = "csv2wiki/1.0 (+https://github.com/nao1215/csv2wiki)"
)

// Config holds all configuration options for csv2wiki.
// It is populated from the config file and CLI flags and passed down
// explicitly; nothing reads configuration from global state.
type Config struct {
	// Scheme is "http" or "https".
	Scheme string

	// Site is the wiki host, optionally with a path (e.g. "localhost/mediawiki").
	Site string

	// ScriptPath is appended to Site before "api.php".
	ScriptPath string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is the explicit config file, if any.
	ConfigFilePath string

	// PagePrefix is prepended to the 1-based row number to build page titles.
	PagePrefix string

	// TOCTitle is the title of the table of contents page.
	TOCTitle string

	// CombineSections writes each page with a single edit instead of one
	// edit per cell.
	CombineSections bool

	// DryRun logs the writes that would be made without contacting the wiki.
	DryRun bool

	// JSONReport selects JSON output for the sync report.
	JSONReport bool

	// MarkdownReport selects Markdown output for the sync report.
	MarkdownReport bool

	// ReportFile sends the report to a file; the terminal then gets the
	// text report.
	ReportFile string

	// SummaryOnly limits the report to the summary counts.
	SummaryOnly bool

	// DBDir is the directory holding the run history database.
	// Empty disables history.
	DBDir string

	// Sheets holds the Google Sheets fetcher settings.
	Sheets SheetsConfig

	// Authz holds the authz validator settings.
	Authz AuthzConfig
}

// SheetsConfig configures the Google Sheets fetcher.
type SheetsConfig struct {
	ClientID     string `yaml:"clientID,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	SheetID      string `yaml:"sheetID,omitempty"`
	// Range is in A1 notation, e.g. "Sheet1!A1:F".
	Range       string `yaml:"range,omitempty"`
	RedirectURL string `yaml:"redirectURL,omitempty"`
	// TokenFile caches the OAuth token. Defaults to the XDG config dir.
	TokenFile string `yaml:"tokenFile,omitempty"`
}

// AuthzConfig configures the authz validator.
type AuthzConfig struct {
	File       string `yaml:"file,omitempty"`
	Checkout   string `yaml:"checkout,omitempty"`
	PathPrefix string `yaml:"pathPrefix,omitempty"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Scheme:     DefaultScheme,
		ScriptPath: DefaultScriptPath,
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		PagePrefix: DefaultPagePrefix,
		TOCTitle:   DefaultTOCTitle,
		Authz: AuthzConfig{
			PathPrefix: DefaultAuthzPathPrefix,
		},
	}
}

// APIEndpoint returns the URL of the wiki's api.php.
func (c *Config) APIEndpoint() string {
	path := c.ScriptPath
	if path == "" {
		path = "/"
	}
	if path[len(path)-1] != '/' {
		path += "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return c.Scheme + "://" + trimSlash(c.Site) + path + "api.php"
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// ApplyFile copies non-empty values from the config file into c.
// Values already set from flags are expected to be applied afterwards.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Wiki.Scheme != "" {
		c.Scheme = f.Wiki.Scheme
	}
	if f.Wiki.Site != "" {
		c.Site = f.Wiki.Site
	}
	if f.Wiki.ScriptPath != "" {
		c.ScriptPath = f.Wiki.ScriptPath
	}
	if f.Wiki.Proxy != "" {
		c.ProxyAddress = f.Wiki.Proxy
	}
	if f.Wiki.Timeout > 0 {
		c.Timeout = f.Wiki.Timeout
	}
	if f.Wiki.UserAgent != "" {
		c.UserAgent = f.Wiki.UserAgent
	}
	if f.Sync.PagePrefix != "" {
		c.PagePrefix = f.Sync.PagePrefix
	}
	if f.Sync.TOCTitle != "" {
		c.TOCTitle = f.Sync.TOCTitle
	}
	if f.Sync.CombineSections {
		c.CombineSections = true
	}
	c.Sheets = f.Sheets
	if f.Authz.File != "" {
		c.Authz.File = f.Authz.File
	}
	if f.Authz.Checkout != "" {
		c.Authz.Checkout = f.Authz.Checkout
	}
	if f.Authz.PathPrefix != "" {
		c.Authz.PathPrefix = f.Authz.PathPrefix
	}
}

// XDGDataDir returns the XDG data directory for csv2wiki.
// On Linux: ~/.local/share/csv2wiki
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for csv2wiki.
// On Linux: ~/.config/csv2wiki
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultTokenFile is where the Google OAuth token is cached.
func DefaultTokenFile() string {
	return filepath.Join(XDGConfigDir(), "sheets-token.json")
}

// DefaultAuthzPaths returns the authz file and checkout directory derived
// from the AuthzRootEnv environment variable.
func DefaultAuthzPaths() (file, checkout string, err error) {
	root := os.Getenv(AuthzRootEnv)
	if root == "" {
		return "", "", ErrAuthzRootUnset
	}
	return filepath.Join(root, DefaultAuthzRelPath), root, nil
}

// Validate checks the options every wiki-facing command needs.
func (c *Config) Validate() error {
	if c.Site == "" {
		return ErrNoSite
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return ErrInvalidScheme
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PagePrefix == "" {
		return ErrEmptyPagePrefix
	}
	if c.TOCTitle == "" {
		return ErrEmptyTOCTitle
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
