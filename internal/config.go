package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Assets  AssetsConfig      `yaml:"assets"`
	Views   ViewsConfig       `yaml:"views"`
	Catalog CatalogConfig     `yaml:"catalog"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Assets.Validate(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	return c.Views.Validate()
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

var basePathRe = regexp.MustCompile(`^/?([A-Za-z0-9._~-]+/?)*$`)

// SiteConfig holds where and how the page is published.
//
// BasePath is the URL prefix of the deployment (for example "/GMGBD" on a
// project page host). Every asset URL and route is placed under it; empty
// serves from the root.
type SiteConfig struct {
	BasePath string `yaml:"base_path"`
	Title    string `yaml:"title"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BasePath, validation.Match(basePathRe).Error("must be a slash-separated URL path")),
		validation.Field(&c.Title, validation.Required),
	)
}

// AssetsConfig holds the directory the plot files are served from.
// An empty Dir disables asset serving; the page still renders.
type AssetsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.When(c.Watch, validation.Required.Error("is required when watch is enabled"))),
	)
}

// ViewsConfig bounds the in-memory page-view state.
type ViewsConfig struct {
	MaxViews int `yaml:"max_views"`
}

// Validate validates the views configuration.
func (c *ViewsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxViews, validation.Required, validation.Min(1), validation.Max(1_000_000)),
	)
}

// CatalogConfig optionally replaces the embedded catalog with a YAML file.
type CatalogConfig struct {
	File string `yaml:"file"`
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
		Site: SiteConfig{
			BasePath: "",
			Title:    "GMGBD | Global Multimodal Geo-Biotic Dataset",
		},
		Assets: AssetsConfig{
			Dir:   "./public",
			Watch: true,
		},
		Views: ViewsConfig{
			MaxViews: 4096,
		},
	}
}
