package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string      `json:"field"`
	Value       interface{} `json:"value,omitempty"`
	Message     string      `json:"message"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs validation with detailed feedback. Unlike
// Load it also reports warnings for settings that work but look unintended.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateCarouselConfigDetails(&config.Carousel, result)
	validateContentConfigDetails(&config.Content, result)
	validateSiteConfigDetails(&config.Site, config.Carousel.Direction, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
			Suggestions: []string{
				"Consider using a port above 1024 for development",
			},
		})
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.host",
				Value:   config.Host,
				Message: err.Error(),
				Suggestions: []string{
					"Use 'localhost' for local development",
					"Use '0.0.0.0' to bind to all interfaces",
				},
			})
		}
	}

	validEnvs := []string{"development", "production", "testing"}
	if config.Environment != "" && !contains(validEnvs, config.Environment) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.environment",
			Value:   config.Environment,
			Message: "unknown environment type",
			Suggestions: []string{
				"Use 'development' for local development",
				"Use 'production' for production deployments",
			},
		})
	}

	if config.Environment == "production" && len(config.AllowedOrigins) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.allowed_origins",
			Message: "no allowed origins configured; only same-host websocket connections are accepted",
			Suggestions: []string{
				"List the public site origin, e.g. https://example.com",
			},
		})
	}
}

func validateCarouselConfigDetails(config *CarouselConfig, result *ValidationResult) {
	if config.Interval < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "carousel.interval",
			Value:   config.Interval.String(),
			Message: "interval must be positive",
			Suggestions: []string{
				"Use a duration such as 5s",
			},
		})
	} else if config.Interval > 0 && config.Interval < time.Second {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "carousel.interval",
			Value:   config.Interval.String(),
			Message: "interval shorter than one second leaves no time to read a testimonial",
			Suggestions: []string{
				"The default interval is " + DefaultInterval.String(),
			},
		})
	}

	switch config.Direction {
	case "", "rtl", "ltr", "auto":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "carousel.direction",
			Value:   config.Direction,
			Message: fmt.Sprintf("unknown direction %q", config.Direction),
			Suggestions: []string{
				"Valid directions: rtl, ltr, auto",
			},
		})
	}

	if config.Strict {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "carousel.strict",
			Value:   true,
			Message: "strict mode panics on lifecycle misuse",
			Suggestions: []string{
				"Enable strict mode only while debugging",
			},
		})
	}
}

func validateContentConfigDetails(config *ContentConfig, result *ValidationResult) {
	if config.Path != "" {
		if err := validatePath(config.Path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "content.path",
				Value:   config.Path,
				Message: err.Error(),
				Suggestions: []string{
					"Use a path relative to the project directory",
				},
			})
		} else if !strings.HasSuffix(config.Path, ".yml") && !strings.HasSuffix(config.Path, ".yaml") {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "content.path",
				Value:   config.Path,
				Message: "content file must be YAML",
				Suggestions: []string{
					"Rename the file to testimonials.yml",
				},
			})
		}
	}

	if config.Path == "" && config.Watch {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "content.watch",
			Value:   true,
			Message: "watching has no effect with the embedded testimonials",
			Suggestions: []string{
				"Set content.path to reload testimonials from disk",
			},
		})
	}

	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "content.debounce",
			Value:   config.Debounce.String(),
			Message: "debounce must not be negative",
		})
	}
}

func validateSiteConfigDetails(config *SiteConfig, direction string, result *ValidationResult) {
	rtlLangs := []string{"he", "ar", "fa", "ur", "yi"}
	if direction == "ltr" && contains(rtlLangs, config.Lang) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "carousel.direction",
			Value:   direction,
			Message: fmt.Sprintf("left-to-right arrows with right-to-left language %q", config.Lang),
			Suggestions: []string{
				"Use direction rtl or auto for " + config.Lang,
			},
		})
	}
}

// Helper validation functions

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if host == "localhost" {
		return nil
	}

	hostnameRegex := regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
