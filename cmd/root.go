package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/content"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vitrine",
	Short: "A rotating testimonial carousel for right-to-left sites",
	Long: `vitrine serves an accessible testimonial carousel that rotates on its own,
pauses while the visitor's attention is on it, and maps arrows and keys to
the reading direction of the page.

Quick Start:
  vitrine init                    Write .vitrine.yml and testimonials.yml
  vitrine validate                Check the testimonials and their markup
  vitrine serve                   Serve the carousel
  vitrine preview                 Show the carousel in the terminal

Command Aliases:
  serve (s), preview (p), validate (v)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .vitrine.yml, can also use VITRINE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// The configuration file is, in order: the --config flag, the
// VITRINE_CONFIG_FILE environment variable, .vitrine.yml in the working
// directory. A .env file in the working directory is loaded into the
// environment first, so it may set VITRINE_CONFIG_FILE as well as any
// VITRINE_<SECTION>_<OPTION> value. Variables already set are not overridden.
func initConfig() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("VITRINE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vitrine")
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	// A missing file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// commandContext returns the command's context, or a background context when
// the command is run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newLogger builds the logger selected by --log-level and --log-format.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log.level")),
		Format: viper.GetString("log.format"),
		Output: os.Stderr,
	})
}

// fileLogger opens path for appending and logs to it in format.
func fileLogger(path, format string) (logging.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log.level")),
		Format: format,
		Output: f,
	})
	return logger, func() { _ = f.Close() }, nil
}

// loadConfig loads the configuration, attaching suggestions on failure.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		path := viper.ConfigFileUsed()
		if path == "" {
			path = config.FileName
		}
		suggestions := errors.ConfigurationError(err.Error(), path, &errors.SuggestionContext{ConfigPath: path})
		return nil, errors.NewEnhancedError("Failed to load configuration", err, suggestions)
	}
	return cfg, nil
}

// loadContent loads the configured testimonials, attaching suggestions on
// failure.
func loadContent(cfg *config.Config) ([]carousel.Testimonial, error) {
	items, err := content.Load(cfg.Content.Path)
	if err != nil {
		suggestions := errors.ContentError(err, &errors.SuggestionContext{ContentPath: cfg.Content.Path})
		return nil, errors.NewEnhancedError("Failed to load testimonials", err, suggestions)
	}
	return items, nil
}
