package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/content"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/server"
	"github.com/conneroisu/vitrine/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	initForce = false
	t.Cleanup(func() { initForce = false })

	err := runInit(&cobra.Command{}, []string{dir})
	require.NoError(t, err)

	configPath := filepath.Join(dir, config.FileName)
	contentPath := filepath.Join(dir, defaultContentFile)
	assert.FileExists(t, configPath)
	assert.FileExists(t, contentPath)

	items, err := content.Load(contentPath)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, defaultContentFile, cfg.Content.Path)
	assert.Equal(t, config.DefaultInterval, cfg.Carousel.Interval)

	err = runInit(&cobra.Command{}, []string{dir})
	assert.Error(t, err, "existing files are kept")

	initForce = true
	require.NoError(t, os.WriteFile(contentPath, []byte("broken"), 0o644))
	require.NoError(t, runInit(&cobra.Command{}, []string{dir}))
	_, err = content.Load(contentPath)
	assert.NoError(t, err, "--force restores the starter content")
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		direction string
		items     []carousel.Testimonial
		wantDir   string
		wantDocs  int
	}{
		{
			name:      "built-in hebrew",
			lang:      "he",
			direction: "rtl",
			items:     content.Default(),
			wantDir:   "rtl",
			wantDocs:  1 + 2*4,
		},
		{
			name:      "english ltr",
			lang:      "en",
			direction: "auto",
			items: []carousel.Testimonial{
				{ID: "a", DisplayName: "Ana Silva", QuoteText: "Beautiful photos."},
				{ID: "b", DisplayName: "Ben Cohen", QuoteText: "Great experience."},
			},
			wantDir:  "ltr",
			wantDocs: 1 + 2*2,
		},
		{
			name:      "empty list",
			lang:      "he",
			direction: "rtl",
			items:     nil,
			wantDir:   "rtl",
			wantDocs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Site.Lang = tt.lang
			cfg.Carousel.Direction = tt.direction

			result, err := validateContent(context.Background(), cfg, tt.items, logging.NewNop())
			require.NoError(t, err)

			assert.True(t, result.Valid)
			assert.Equal(t, tt.wantDir, result.Direction)
			assert.Len(t, result.Documents, tt.wantDocs)
			assert.Equal(t, "built-in", result.Content)
			assert.Equal(t, 0, failedDocuments(result))
		})
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json")
	require.NoError(t, err)

	var result validationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 4, result.Testimonials)
	assert.Equal(t, "page", result.Documents[0].Name)
	assert.Equal(t, "slide 1 (paused)", result.Documents[2].Name)
	require.NotNil(t, result.Config)
	assert.True(t, result.Config.Valid)
	require.Len(t, result.Config.Warnings, 1)
	assert.Equal(t, "content.watch", result.Config.Warnings[0].Field)
}

func TestValidateCommandPrintsConfigWarnings(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)

	assert.Contains(t, out, "content.watch: watching has no effect with the embedded testimonials")
	assert.Contains(t, out, "documents pass")
}

func TestValidateContentReportsConfigIssues(t *testing.T) {
	cfg := config.Default()
	cfg.Content.Watch = false
	cfg.Carousel.Interval = 200 * time.Millisecond
	cfg.Carousel.Strict = true

	result, err := validateContent(context.Background(), cfg, content.Default(), logging.NewNop())
	require.NoError(t, err)
	assert.True(t, result.Valid, "warnings do not fail validation")
	assert.ElementsMatch(t, []string{"carousel.interval", "carousel.strict"},
		[]string{result.Config.Warnings[0].Field, result.Config.Warnings[1].Field})

	cfg.Server.Port = 70000
	result, err = validateContent(context.Background(), cfg, content.Default(), logging.NewNop())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Config.Errors, 1)
	assert.Equal(t, "server.port", result.Config.Errors[0].Field)
	assert.Equal(t, 0, failedDocuments(result), "the markup itself still passes")
}

func TestServeLoggerWritesToFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "vitrine.log")

	logger, closeLog, err := serveLogger(path)
	require.NoError(t, err)
	_, ok := logger.(*logging.MultiLogger)
	assert.True(t, ok)

	logger.WithComponent("server").Info(context.Background(), "Server started", "addr", "localhost:8080")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "Server started", record["msg"])
	assert.Equal(t, "localhost:8080", record["addr"])

	logger, closeLog, err = serveLogger("")
	require.NoError(t, err)
	closeLog()
	_, ok = logger.(*logging.MultiLogger)
	assert.False(t, ok)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Version)
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"port", ValidatePort, "8080", false},
		{"port zero", ValidatePort, "0", false},
		{"port too large", ValidatePort, "70000", true},
		{"port not a number", ValidatePort, "http", true},
		{"direction rtl", ValidateDirection, "rtl", false},
		{"direction auto", ValidateDirection, "AUTO", false},
		{"direction unknown", ValidateDirection, "sideways", true},
		{"format json", ValidateOutputFormat, "json", false},
		{"format yaml", ValidateOutputFormat, "yaml", true},
		{"file empty", ValidateFileExists, "", false},
		{"file missing", ValidateFileExists, "no-such-file.yml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStandardFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	flags := AddStandardFlags(cmd, "server", "carousel", "content")

	assert.Error(t, cmd.Flags().Set("direction", "sideways"))
	assert.Error(t, cmd.Flags().Set("port", "-1"))

	require.NoError(t, cmd.Flags().Set("direction", "ltr"))
	require.NoError(t, cmd.Flags().Set("interval", "2s"))
	require.NoError(t, cmd.Flags().Set("no-watch", "true"))
	assert.Equal(t, "ltr", flags.Direction)
	assert.Equal(t, 2*time.Second, flags.Interval)

	require.NoError(t, bindFlags(cmd))
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "ltr", cfg.Carousel.Direction)
	assert.Equal(t, 2*time.Second, cfg.Carousel.Interval)
	assert.False(t, cfg.Content.Watch)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
}

func TestStartError(t *testing.T) {
	assert.NoError(t, startError(nil, 8080))

	plain := fmt.Errorf("server error: boom")
	assert.Equal(t, plain, startError(plain, 8080))

	listen := errors.NewNetworkError(errors.ErrCodeListenFailed, "cannot listen on localhost:8080",
		fmt.Errorf("bind: address already in use"))
	err := startError(listen, 8080)

	var enhanced *errors.EnhancedError
	require.True(t, errors.As(err, &enhanced))
	assert.NotEmpty(t, enhanced.Suggestions)
	assert.Contains(t, err.Error(), "vitrine serve --port 8081")
	assert.ErrorIs(t, err, listen)
}

func TestLoadContentSuggestions(t *testing.T) {
	cfg := config.Default()
	cfg.Content.Path = filepath.Join(t.TempDir(), "missing.yml")

	_, err := loadContent(cfg)
	var enhanced *errors.EnhancedError
	require.True(t, errors.As(err, &enhanced))
	assert.Contains(t, err.Error(), "vitrine validate --content "+cfg.Content.Path)
}

func TestFetchHealth(t *testing.T) {
	srv, err := server.New(config.Default(), content.Default())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	status, err := fetchHealth(context.Background(), ts.URL+"/health", time.Second)
	require.NoError(t, err)

	assert.Equal(t, "healthy", status.Status)
	require.NotNil(t, status.Checks["testimonials"].Count)
	assert.Equal(t, 4, *status.Checks["testimonials"].Count)
	require.NotNil(t, status.Checks["sessions"].Active)
	assert.Equal(t, 0, *status.Checks["sessions"].Active)

	_, err = fetchHealth(context.Background(), ts.URL+"/", time.Second)
	assert.Error(t, err, "the index page is not a health body")
}
