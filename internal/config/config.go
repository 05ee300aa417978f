// Package config loads bugtracker settings with the precedence
// defaults < user config < project config < environment < overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyAPIURL         = "api-url"
	KeyWebURL         = "web-url"
	KeyRequestTimeout = "request-timeout"
	KeyDebug          = "debug"
	KeyDebugLogPath   = "debug-log"
	KeyMarkdownStyle  = "markdown-style"
)

const (
	// DefaultAPIURL is where the bug tracker API listens in development.
	DefaultAPIURL = "http://localhost:8080"
	// DefaultWebURL is the browser front end, used when opening a bug.
	DefaultWebURL = "http://localhost:3000"

	// DefaultMarkdownStyle renders descriptions and comments for dark terminals.
	DefaultMarkdownStyle = "dark"

	envPrefix = "BUGTRACKER"
	dirName   = ".bugtracker"
	fileName  = "config.yaml"
)

// Config is the resolved configuration.
type Config struct {
	APIURL         string
	WebURL         string
	RequestTimeout time.Duration
	Debug          bool
	DebugLogPath   string
	MarkdownStyle  string
}

// MarkdownStyles lists the accepted markdown-style values. "plain" disables
// markdown rendering and only wraps text.
var MarkdownStyles = []string{"dark", "light", "notty", "plain"}

type loadSettings struct {
	workingDir     string
	userConfigPath string
	explicitPath   string
	overrides      map[string]any
}

// Option adjusts Load. Mostly useful for tests and CLI flags.
type Option func(*loadSettings)

// WithWorkingDir sets where project config discovery starts.
func WithWorkingDir(dir string) Option {
	return func(s *loadSettings) { s.workingDir = dir }
}

// WithUserConfig overrides ~/.bugtracker/config.yaml.
func WithUserConfig(path string) Option {
	return func(s *loadSettings) { s.userConfigPath = path }
}

// WithConfigFile loads exactly this file instead of discovering a project config.
func WithConfigFile(path string) Option {
	return func(s *loadSettings) { s.explicitPath = path }
}

// WithOverrides applies values (typically CLI flags) on top of everything else.
func WithOverrides(overrides map[string]any) Option {
	return func(s *loadSettings) {
		if s.overrides == nil {
			s.overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			s.overrides[k] = v
		}
	}
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	userPath := strings.TrimSpace(settings.userConfigPath)
	if userPath == "" {
		p, err := defaultUserConfigPath()
		if err != nil {
			return nil, err
		}
		userPath = p
	}
	if err := mergeConfigFile(v, userPath); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}

	projectPath := strings.TrimSpace(settings.explicitPath)
	if projectPath == "" {
		wd := strings.TrimSpace(settings.workingDir)
		if wd == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("determine working directory: %w", err)
			}
			wd = cwd
		}
		p, err := findProjectConfig(wd)
		if err != nil {
			return nil, err
		}
		projectPath = p
	} else if _, err := os.Stat(projectPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", projectPath, err)
	}
	if err := mergeConfigFile(v, projectPath); err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}

	for k, val := range settings.overrides {
		v.Set(k, val)
	}

	cfg := &Config{
		APIURL:         strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		WebURL:         strings.TrimRight(strings.TrimSpace(v.GetString(KeyWebURL)), "/"),
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		Debug:          v.GetBool(KeyDebug),
		DebugLogPath:   v.GetString(KeyDebugLogPath),
		MarkdownStyle:  strings.ToLower(strings.TrimSpace(v.GetString(KeyMarkdownStyle))),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that URLs are absolute http(s) URLs and the timeout is sane.
func (c *Config) Validate() error {
	if err := validateURL(KeyAPIURL, c.APIURL); err != nil {
		return err
	}
	if c.WebURL != "" {
		if err := validateURL(KeyWebURL, c.WebURL); err != nil {
			return err
		}
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyRequestTimeout)
	}
	if c.MarkdownStyle != "" && !slices.Contains(MarkdownStyles, c.MarkdownStyle) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyMarkdownStyle, strings.Join(MarkdownStyles, ", "), c.MarkdownStyle)
	}
	return nil
}

// BugWebURL returns the browser URL of a bug's detail page, or "" when no
// web front end is configured.
func (c *Config) BugWebURL(id int) string {
	if c.WebURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/bugs/%d", c.WebURL, id)
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", key, raw)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyWebURL, DefaultWebURL)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyDebugLogPath, "")
	v.SetDefault(KeyMarkdownStyle, DefaultMarkdownStyle)
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: reading user and project config is the point
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// findProjectConfig walks up from startDir looking for .bugtracker/config.yaml.
func findProjectConfig(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, dirName, fileName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
