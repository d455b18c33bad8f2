// Package server serves the testimonials page and hosts the live carousel
// sessions behind it.
//
// The page is rendered on the server from the initial carousel state so that
// it is complete without JavaScript. The browser script then opens a
// websocket to /ws, where a session.Manager mounts a carousel per connection
// and pushes re-rendered fragments as the carousel moves. When content
// watching is enabled, edits to the testimonials file remount every session
// with the new list.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/content"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/session"
	"github.com/conneroisu/vitrine/internal/view"
	"github.com/conneroisu/vitrine/internal/watcher"
)

// Server serves the carousel page and its sessions.
type Server struct {
	config   *config.Config
	sessions *session.Manager
	watcher  *watcher.FileWatcher
	logger   logging.Logger
	clock    clock.Clock
	started  time.Time

	httpServer  *http.Server
	serverMutex sync.RWMutex

	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock driving every carousel.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a server showing items.
func New(cfg *config.Config, items []carousel.Testimonial, opts ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logging.NewNop(),
		clock:  clock.System(),
	}
	for _, opt := range opts {
		opt(s)
	}
	sessionLogger := s.logger
	s.logger = s.logger.WithComponent("server")
	s.started = s.clock.Now()

	dir, err := adapters.ParseDirection(cfg.Carousel.Direction)
	if err != nil {
		return nil, err
	}

	s.sessions = session.NewManager(
		session.Settings{
			Interval:    cfg.Carousel.Interval,
			StartPaused: cfg.Carousel.StartPaused,
			Strict:      cfg.Carousel.Strict,
			Direction:   dir,
			Labels:      view.LabelsFor(cfg.Site.Lang),
		},
		items,
		session.NewOriginValidator(cfg.Server.Host, cfg.Server.Port, cfg.Server.AllowedOrigins),
		session.WithLogger(sessionLogger),
		session.WithClock(s.clock),
	)

	if cfg.Content.Watch && cfg.Content.Path != "" {
		fw, err := watcher.NewFileWatcher(cfg.Content.Debounce, watcher.WithLogger(sessionLogger))
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = fw
	}

	return s, nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeListenFailed,
			fmt.Sprintf("cannot listen on %s", s.config.Addr()), err).WithComponent("server")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.isShutdown.Load() {
		_ = ln.Close()
		return http.ErrServerClosed
	}

	if err := s.startWatcher(ctx); err != nil {
		s.logger.Warn(ctx, err, "Content watching disabled", "path", s.config.Content.Path)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving testimonials",
		"addr", ln.Addr().String(),
		"testimonials", len(s.sessions.Items()),
		"watch", s.watcher != nil)

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) startWatcher(ctx context.Context) error {
	if s.watcher == nil {
		return nil
	}
	s.watcher.AddFilter(watcher.NoEditorTempFilter)
	s.watcher.AddHandler(s.handleContentChange)
	if err := s.watcher.WatchFile(s.config.Content.Path); err != nil {
		return err
	}
	return s.watcher.Start(ctx)
}

// handleContentChange reloads the testimonials file. A file that fails to
// load leaves the current list in place.
func (s *Server) handleContentChange(events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(context.Background(), "Content file changed",
			"path", event.Path, "type", event.Type.String())
	}
	return s.Reload()
}

// Reload loads the content file and remounts every session with it.
func (s *Server) Reload() error {
	op := logging.StartOperation(s.logger, "reload")
	items, err := content.Load(s.config.Content.Path)
	if err != nil {
		err = fmt.Errorf("reloading testimonials: %w", err)
		op.EndWithError(context.Background(), err)
		return err
	}
	s.sessions.ReplaceAll(items)
	op.End(context.Background())
	return nil
}

// Shutdown stops the watcher, closes every session and stops the HTTP
// server. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		s.isShutdown.Store(true)

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		if err := s.sessions.Shutdown(ctx); err != nil {
			shutdownErr = err
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			if err := server.Shutdown(ctx); err != nil && shutdownErr == nil {
				shutdownErr = err
			}
		}
	})

	return shutdownErr
}
