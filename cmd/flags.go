package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/config"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int
	Host string

	// Carousel flags
	Interval  time.Duration
	Direction string
	Paused    bool
	Lang      string

	// Content flags
	Content string
	NoWatch bool

	// Output flags
	OutputFormat string
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"port":      "server.port",
	"host":      "server.host",
	"interval":  "carousel.interval",
	"direction": "carousel.direction",
	"paused":    "carousel.start_paused",
	"lang":      "site.lang",
	"content":   "content.path",
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "carousel":
			addCarouselFlags(cmd, flags)
		case "content":
			addContentFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", config.DefaultPort, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", config.DefaultHost, "Host to bind to")
	AddFlagValidation(cmd, "port", ValidatePort)
}

func addCarouselFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().DurationVarP(&flags.Interval, "interval", "i", config.DefaultInterval, "Time each testimonial is shown")
	cmd.Flags().StringVarP(&flags.Direction, "direction", "d", "rtl", "Arrow direction (rtl, ltr, auto)")
	cmd.Flags().BoolVar(&flags.Paused, "paused", false, "Start with rotation paused")
	cmd.Flags().StringVar(&flags.Lang, "lang", config.DefaultLang, "Language of the carousel labels")
	AddFlagValidation(cmd, "direction", ValidateDirection)
}

func addContentFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Content, "content", "c", "", "Testimonials file (default is the built-in set)")
	cmd.Flags().BoolVar(&flags.NoWatch, "no-watch", false, "Don't reload the testimonials file when it changes")
	AddFlagValidation(cmd, "content", ValidateFileExists)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "format", "f", "text", "Output format (text, json)")
	AddFlagValidation(cmd, "format", ValidateOutputFormat)
}

// bindFlags binds the command's standard flags to their configuration keys.
// Several commands share keys, so binding happens when a command runs rather
// than at registration.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	if flag := cmd.Flags().Lookup("no-watch"); flag != nil && flag.Changed {
		viper.Set("content.watch", false)
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port number.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateDirection checks an arrow direction.
func ValidateDirection(dir string) error {
	_, err := adapters.ParseDirection(dir)
	return err
}

// ValidateFileExists checks that an optional file exists.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateOutputFormat checks an output format.
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid output format %s, must be one of: text, json", format)
	}
}
