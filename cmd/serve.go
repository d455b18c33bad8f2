package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveLogFile string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the testimonial carousel",
	Long: `Serve the testimonial carousel over HTTP. Every browser tab gets its own
carousel over a websocket; the server renders each change and pushes the
updated markup. When a testimonials file is configured it is reloaded on
change and every open carousel restarts from the first testimonial.

Examples:
  vitrine serve                              # Built-in testimonials on :8080
  vitrine serve --content testimonials.yml   # Serve and watch a file
  vitrine serve --direction ltr --lang en    # Left-to-right English site`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	AddStandardFlags(serveCmd, "server", "carousel", "content")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also write logs as JSON to this file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	items, err := loadContent(cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := serveLogger(serveLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	srv, err := server.New(cfg, items, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d testimonials at http://%s\n", len(items), cfg.Addr())

	select {
	case err := <-serveErr:
		return startError(err, cfg.Server.Port)
	case <-ctx.Done():
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, err, "Error during server shutdown")
	}

	return startError(<-serveErr, cfg.Server.Port)
}

// serveLogger logs to stderr and, when path is set, to path as JSON too.
func serveLogger(path string) (logging.Logger, func(), error) {
	if path == "" {
		return newLogger(), func() {}, nil
	}
	file, closeFile, err := fileLogger(path, "json")
	if err != nil {
		return nil, nil, err
	}
	return logging.NewMultiLogger(newLogger(), file), closeFile, nil
}

// startError attaches suggestions to a failure to listen.
func startError(err error, port int) error {
	if err == nil {
		return nil
	}
	var verr *errors.VitrineError
	if errors.As(err, &verr) && verr.Code == errors.ErrCodeListenFailed {
		suggestions := errors.ServerStartError(err, port, &errors.SuggestionContext{})
		return errors.NewEnhancedError(fmt.Sprintf("Failed to start server on port %d", port), err, suggestions)
	}
	return err
}
