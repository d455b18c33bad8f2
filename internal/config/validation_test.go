package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fieldsOf(issues []ValidationError) []string {
	var fields []string
	for _, issue := range issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

func TestValidateConfigWithDetails(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(c *Config)
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "defaults only warn about watching embedded content",
			mutate: func(c *Config) {
			},
			wantWarnings: []string{"content.watch"},
		},
		{
			name: "bad port and host",
			mutate: func(c *Config) {
				c.Server.Port = -1
				c.Server.Host = "bad|host"
				c.Content.Watch = false
			},
			wantErrors: []string{"server.port", "server.host"},
		},
		{
			name: "privileged port and unknown environment",
			mutate: func(c *Config) {
				c.Server.Port = 80
				c.Server.Environment = "staging"
				c.Content.Watch = false
			},
			wantWarnings: []string{"server.port", "server.environment"},
		},
		{
			name: "production without origins",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Content.Path = "testimonials.yml"
			},
			wantWarnings: []string{"server.allowed_origins"},
		},
		{
			name: "carousel issues",
			mutate: func(c *Config) {
				c.Carousel.Interval = 200 * time.Millisecond
				c.Carousel.Strict = true
				c.Carousel.Direction = "sideways"
				c.Content.Watch = false
			},
			wantErrors:   []string{"carousel.direction"},
			wantWarnings: []string{"carousel.interval", "carousel.strict"},
		},
		{
			name: "content issues",
			mutate: func(c *Config) {
				c.Content.Path = "testimonials.txt"
				c.Content.Debounce = -time.Second
			},
			wantErrors: []string{"content.path", "content.debounce"},
		},
		{
			name: "ltr arrows with hebrew",
			mutate: func(c *Config) {
				c.Carousel.Direction = "ltr"
				c.Content.Watch = false
			},
			wantWarnings: []string{"carousel.direction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)

			result := ValidateConfigWithDetails(c)

			assert.Equal(t, tt.wantErrors, fieldsOf(result.Errors))
			assert.Equal(t, tt.wantWarnings, fieldsOf(result.Warnings))
			assert.Equal(t, len(tt.wantErrors) == 0, result.Valid)
		})
	}
}

func TestValidationResultString(t *testing.T) {
	c := Default()
	c.Server.Port = 99999

	result := ValidateConfigWithDetails(c)
	out := result.String()

	assert.Contains(t, out, "Validation Errors")
	assert.Contains(t, out, "server.port")
	assert.Contains(t, out, "Validation Warnings")
	assert.Contains(t, out, "💡")
}

func TestValidateHostname(t *testing.T) {
	valid := []string{"localhost", "127.0.0.1", "::1", "0.0.0.0", "studio.example.com"}
	for _, host := range valid {
		assert.NoError(t, validateHostname(host), host)
	}

	invalid := []string{"host;rm", "-bad.example", "a..b", "$(whoami)"}
	for _, host := range invalid {
		assert.Error(t, validateHostname(host), host)
	}
}
