package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/highlight"
	"github.com/adyingdeath/blog/internal/listing"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	Site      SiteConfig        `yaml:"site"`
	Build     BuildConfig       `yaml:"build"`
	Highlight HighlightConfig   `yaml:"highlight"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Build.Validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig describes where documents live and how listings are cut.
type ContentConfig struct {
	Dir                string `yaml:"dir"`
	ProjectsFile       string `yaml:"projects_file"`
	SummaryPlaceholder string `yaml:"summary_placeholder"`
	PageSize           int    `yaml:"page_size"`
	RecentCount        int    `yaml:"recent_count"`
	FeaturedPath       string `yaml:"featured_path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.RecentCount, validation.Min(0)),
	)
}

// SetDir moves the content root to dir. A projects file that lived inside
// the old root moves with it; one configured elsewhere is kept.
func (c *ContentConfig) SetDir(dir string) {
	if c.ProjectsFile != "" {
		if rel, err := filepath.Rel(c.Dir, c.ProjectsFile); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			c.ProjectsFile = filepath.Join(dir, rel)
		}
	}
	c.Dir = dir
}

// SiteConfig holds the public address of the site and the build output location.
type SiteConfig struct {
	BaseURL   string `yaml:"base_url"`
	OutputDir string `yaml:"output_dir"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// BuildConfig controls the compilation pass.
//
// Strict makes the build command fail when any document fails to compile;
// otherwise failures are logged and the remaining posts are published.
type BuildConfig struct {
	Workers int  `yaml:"workers"`
	Strict  bool `yaml:"strict"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
	)
}

// HighlightConfig selects the code highlighting style.
type HighlightConfig struct {
	Style string `yaml:"style"`
}

// AuthConfig holds authentication configuration for the admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:                "./content",
			ProjectsFile:       "./content/projects.yaml",
			SummaryPlaceholder: compiler.DefaultSummary,
			PageSize:           listing.DefaultPageSize,
			RecentCount:        3,
		},
		Site: SiteConfig{
			BaseURL:   "https://adyingdeath.com",
			OutputDir: "./public",
		},
		Build: BuildConfig{
			Workers: 4,
		},
		Highlight: HighlightConfig{
			Style: highlight.DefaultStyle,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
