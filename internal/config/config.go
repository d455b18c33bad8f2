// Package config provides configuration management for vitrine using Viper
// for loading from files, environment variables, and command-line flags.
//
// Precedence, highest first: flags, VITRINE_CONFIG_FILE, VITRINE_* environment
// variables, .vitrine.yml. The configuration covers the HTTP server, carousel
// timing and direction, testimonial content and site-level presentation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/vitrine/internal/errors"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 8080
	DefaultInterval = 5 * time.Second
	DefaultDebounce = 300 * time.Millisecond
	DefaultLang     = "he"
	DefaultTitle    = "מה הלקוחות שלנו אומרים"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Carousel CarouselConfig `mapstructure:"carousel" yaml:"carousel"`
	Content  ContentConfig  `mapstructure:"content" yaml:"content"`
	Site     SiteConfig     `mapstructure:"site" yaml:"site"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Environment    string   `mapstructure:"environment" yaml:"environment"`
}

type CarouselConfig struct {
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	StartPaused bool          `mapstructure:"start_paused" yaml:"start_paused"`
	// Strict turns lifecycle misuse into panics.
	Strict    bool   `mapstructure:"strict" yaml:"strict"`
	Direction string `mapstructure:"direction" yaml:"direction"`
}

type ContentConfig struct {
	// Path is a YAML testimonials file. Empty selects the embedded defaults.
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type SiteConfig struct {
	Lang  string `mapstructure:"lang" yaml:"lang"`
	Title string `mapstructure:"title" yaml:"title"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			Environment: "development",
		},
		Carousel: CarouselConfig{
			Interval:  DefaultInterval,
			Direction: "rtl",
		},
		Content: ContentConfig{
			Watch:    true,
			Debounce: DefaultDebounce,
		},
		Site: SiteConfig{
			Lang:  DefaultLang,
			Title: DefaultTitle,
		},
	}
}

// Load reads the global viper instance into a validated Config.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a validated Config.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	defaults := Default()

	// Handle allowed origins set via viper (workaround for viper slice handling)
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if !v.IsSet("server.port") {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.Environment == "" {
		config.Server.Environment = defaults.Server.Environment
	}

	if config.Carousel.Interval == 0 {
		config.Carousel.Interval = defaults.Carousel.Interval
	}
	if config.Carousel.Direction == "" {
		config.Carousel.Direction = defaults.Carousel.Direction
	}
	config.Carousel.Direction = strings.ToLower(strings.TrimSpace(config.Carousel.Direction))

	// Booleans default to true unless explicitly disabled.
	if v.IsSet("content.watch") {
		config.Content.Watch = v.GetBool("content.watch")
	} else {
		config.Content.Watch = defaults.Content.Watch
	}
	if config.Content.Debounce == 0 {
		config.Content.Debounce = defaults.Content.Debounce
	}

	if config.Site.Lang == "" {
		config.Site.Lang = defaults.Site.Lang
	}
	if config.Site.Title == "" {
		config.Site.Title = defaults.Site.Title
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateCarouselConfig(&config.Carousel); err != nil {
		return fmt.Errorf("carousel config: %w", err)
	}

	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port))
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("host %q: %v", config.Host, err))
		}
	}

	for _, origin := range config.AllowedOrigins {
		if strings.ContainsAny(origin, " \t\r\n\"'<>") {
			return errors.NewSecurityError(errors.ErrCodeInvalidOrigin,
				fmt.Sprintf("allowed origin %q contains invalid characters", origin))
		}
	}

	return nil
}

func validateCarouselConfig(config *CarouselConfig) error {
	if config.Interval < 0 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("interval %s must be positive", config.Interval))
	}

	switch config.Direction {
	case "rtl", "ltr", "auto":
	default:
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown direction %q (want rtl, ltr or auto)", config.Direction))
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if config.Debounce < 0 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("debounce %s must not be negative", config.Debounce))
	}

	if config.Path != "" {
		if err := validatePath(config.Path); err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(config.Path))
		if ext != ".yml" && ext != ".yaml" {
			return errors.NewConfigError(errors.ErrCodeInvalidPath,
				fmt.Sprintf("content path %q must be a .yml or .yaml file", config.Path))
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return errors.NewSecurityError(errors.ErrCodePathTraversal,
				fmt.Sprintf("path contains traversal: %s", path))
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return errors.NewSecurityError(errors.ErrCodeInvalidPath,
				fmt.Sprintf("path contains dangerous character: %s", char))
		}
	}

	return nil
}

// Keys lists every configuration key.
var Keys = []string{
	"server.host",
	"server.port",
	"server.allowed_origins",
	"server.environment",
	"carousel.interval",
	"carousel.start_paused",
	"carousel.strict",
	"carousel.direction",
	"content.path",
	"content.watch",
	"content.debounce",
	"site.lang",
	"site.title",
}

// BindEnv makes every key visible to Unmarshal through VITRINE_* variables,
// e.g. VITRINE_CAROUSEL_INTERVAL. AutomaticEnv alone only covers keys viper
// already knows about.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("VITRINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}
