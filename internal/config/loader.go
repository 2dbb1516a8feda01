package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".csv2wiki"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// WikiSection is the "wiki" block of the config file.
type WikiSection struct {
	// Scheme is "http" or "https".
	Scheme string `yaml:"scheme,omitempty"`

	// Site is the wiki host, e.g. "localhost/mediawiki".
	Site string `yaml:"site,omitempty"`

	// ScriptPath is the directory serving api.php, "/" by default.
	ScriptPath string `yaml:"scriptPath,omitempty"`

	// Proxy is an optional SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// Timeout is the per-request timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// SyncSection is the "sync" block of the config file.
type SyncSection struct {
	PagePrefix      string `yaml:"pagePrefix,omitempty"`
	TOCTitle        string `yaml:"tocTitle,omitempty"`
	CombineSections bool   `yaml:"combineSections,omitempty"`
}

// File represents the structure of the .csv2wiki configuration file.
type File struct {
	Wiki   WikiSection  `yaml:"wiki,omitempty"`
	Sync   SyncSection  `yaml:"sync,omitempty"`
	Sheets SheetsConfig `yaml:"sheets,omitempty"`
	Authz  AuthzConfig  `yaml:"authz,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .csv2wiki in the current directory
// 3. Look for .csv2wiki in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Load resolves and reads the config file and applies it on top of the
// defaults. An explicit path that does not exist is an error; a missing
// implicit file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFile(file)
	return cfg, nil
}
