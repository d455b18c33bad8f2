// Package session hosts one carousel per websocket connection.
//
// Every browser that opens the carousel socket gets its own Engine and input
// Adapter, so one visitor's hover or navigation never moves another visitor's
// slides. The engine's events are rendered into HTML fragments and pushed to
// the browser; browser stimuli arrive as JSON input messages and are
// dispatched through the adapter. When the testimonial list is reloaded every
// live session is remounted with the new list.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/view"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 32
)

// Settings configures the carousel mounted for each session.
type Settings struct {
	Interval    time.Duration
	StartPaused bool
	Strict      bool
	Direction   adapters.Direction
	Labels      view.Labels
}

// Manager owns the live sessions and the testimonial list they display.
type Manager struct {
	settings   Settings
	origins    OriginValidator
	newLimiter func() RateLimiter
	clock      clock.Clock
	logger     logging.Logger
	errs       *errors.ErrorHandler

	// mu guards items and clients. It is held while a session is mounted
	// and while a new list is pushed to every session.
	mu      sync.RWMutex
	items   []carousel.Testimonial
	clients map[string]*Client

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	shutdown     atomic.Bool
}

// Client is one browser connection and the carousel mounted for it.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	engine  *carousel.Engine
	adapter *adapters.Adapter
	dir     adapters.Direction
	limiter RateLimiter
	manager *Manager

	unsubscribe func()
	closeOnce   sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l.WithComponent("session")
		}
	}
}

// WithClock sets the clock that drives every session's engine.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithRateLimiter sets the factory for per-session stimulus limiters.
func WithRateLimiter(newLimiter func() RateLimiter) Option {
	return func(m *Manager) {
		m.newLimiter = newLimiter
	}
}

// NewManager creates a manager serving items. It panics if origins is nil.
func NewManager(settings Settings, items []carousel.Testimonial, origins OriginValidator, opts ...Option) *Manager {
	if origins == nil {
		panic("session: origin validator cannot be nil")
	}
	if settings.Interval <= 0 {
		settings.Interval = carousel.DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		settings: settings,
		origins:  origins,
		clock:    clock.System(),
		logger:   logging.NewNop(),
		items:    copyItems(items),
		clients:  make(map[string]*Client),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errs = errors.NewErrorHandler(m.logger)
	if m.newLimiter == nil {
		c := m.clock
		m.newLimiter = func() RateLimiter { return NewSlidingWindowLimiter(20, time.Second, c) }
	}
	return m
}

// HandleWebSocket upgrades the request and mounts a carousel for it.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if m.shutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if origin != "" && !m.origins.IsAllowedOrigin(origin) {
		m.logger.Warn(r.Context(), nil, "WebSocket connection rejected: origin not allowed",
			"origin", logging.SanitizeForLog(origin), "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins were validated above.
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		m.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := m.open(conn)
	m.logger.Info(r.Context(), "Session opened", "session", client.id, "sessions", m.Count())

	go m.handleClient(client)
}

// open mounts a carousel for conn and registers the session.
func (m *Manager) open(conn *websocket.Conn) *Client {
	id := uuid.NewString()
	logger := m.logger.With("session", id)

	engine := carousel.New(
		carousel.WithClock(m.clock),
		carousel.WithLogger(logger),
		carousel.WithStrict(m.settings.Strict),
		carousel.WithStartPaused(m.settings.StartPaused),
	)

	c := &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		engine:  engine,
		limiter: m.newLimiter(),
		manager: m,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c.dir = adapters.Resolve(m.settings.Direction, texts(m.items)...)
	c.adapter = adapters.New(engine, c.dir, adapters.WithLogger(logger))
	c.unsubscribe = engine.Subscribe(carousel.ObserverFunc(c.render))
	m.clients[id] = c
	engine.Initialize(m.items, m.settings.Interval)

	return c
}

func (m *Manager) handleClient(c *Client) {
	go c.writePump()
	c.readPump()
}

// ReplaceAll swaps the testimonial list and remounts every live session.
func (m *Manager) ReplaceAll(items []carousel.Testimonial) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = copyItems(items)
	for _, c := range m.clients {
		c.engine.Replace(m.items)
	}

	m.logger.Info(m.ctx, "Testimonials replaced", "items", len(m.items), "sessions", len(m.clients))
}

// Items returns a copy of the list new sessions are mounted with.
func (m *Manager) Items() []carousel.Testimonial {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyItems(m.items)
}

// InitialModel is the state a freshly mounted session renders, used for the
// server-side render of the page before the socket connects.
func (m *Manager) InitialModel() view.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := -1
	if len(m.items) > 0 {
		index = 0
	}
	return view.Model{
		Items: copyItems(m.items),
		State: carousel.State{
			Index:   index,
			Length:  len(m.items),
			Paused:  m.settings.StartPaused,
			Playing: !m.settings.StartPaused && len(m.items) > 1,
		},
		Labels: m.settings.Labels,
		Dir:    string(adapters.Resolve(m.settings.Direction, texts(m.items)...)),
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Client returns the live session with id.
func (m *Manager) Client(id string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	return c, ok
}

// IDs returns the ids of the live sessions.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown closes every session and rejects new ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	var err error
	m.shutdownOnce.Do(func() {
		m.shutdown.Store(true)
		m.cancel()

		m.mu.RLock()
		clients := make([]*Client, 0, len(m.clients))
		for _, c := range m.clients {
			clients = append(clients, c)
		}
		m.mu.RUnlock()

		var wg sync.WaitGroup
		for _, c := range clients {
			wg.Add(1)
			go func(c *Client) {
				defer wg.Done()
				c.close(websocket.StatusGoingAway, "server shutting down")
			}(c)
		}

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()

		select {
		case <-finished:
			m.logger.Info(ctx, "Session manager shut down", "sessions", len(clients))
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}

// IsShutdown reports whether Shutdown has been called.
func (m *Manager) IsShutdown() bool {
	return m.shutdown.Load()
}

func (m *Manager) unregister(id string) {
	m.mu.Lock()
	delete(m.clients, id)
	m.mu.Unlock()
}

// ID returns the session id.
func (c *Client) ID() string {
	return c.id
}

// State returns the session's carousel state.
func (c *Client) State() carousel.State {
	return c.engine.State()
}

// Direction returns the reading direction the session's arrows follow.
func (c *Client) Direction() adapters.Direction {
	return c.dir
}

// render turns an engine event into a fragment push. A reset re-renders the
// whole carousel since the list itself may have changed.
func (c *Client) render(ev carousel.Event) {
	model := view.Model{
		Items:  ev.Items,
		State:  ev.State,
		Labels: c.manager.settings.Labels,
		Dir:    string(c.dir),
	}
	fragments, err := view.Fragments(c.manager.ctx, model, ev.Kind == carousel.KindReset)
	if err != nil {
		c.fail(errors.NewInternalError(errors.ErrCodeRenderFailed, "failed to render carousel", err).
			WithComponent("session").
			WithContext("session", c.id))
		return
	}

	c.enqueue(ServerMessage{
		Type:      TypeRender,
		Fragments: fragments,
		State:     viewOf(ev.State),
		Timestamp: c.manager.clock.Now(),
	})
}

// fail logs err and reports it to the browser. The session stays open.
func (c *Client) fail(err error) {
	c.manager.errs.Handle(c.manager.ctx, err)

	msg := ServerMessage{
		Type:      TypeError,
		Error:     err.Error(),
		Timestamp: c.manager.clock.Now(),
	}
	var ve *errors.VitrineError
	if errors.As(err, &ve) {
		msg.Code = ve.Code
		msg.Error = ve.Message
	}
	c.enqueue(msg)
}

// enqueue drops the message when the session is closed or its buffer is full.
func (c *Client) enqueue(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.manager.logger.Error(c.manager.ctx, err, "Failed to marshal message", "session", c.id)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.manager.logger.Warn(c.manager.ctx, nil, "Send buffer full, dropping message", "session", c.id)
	}
}

func (c *Client) readPump() {
	defer c.close(websocket.StatusNormalClosure, "")

	for {
		typ, data, err := c.conn.Read(c.manager.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				c.manager.logger.Debug(c.manager.ctx, "Session read ended", "session", c.id, "error", err.Error())
			}
			return
		}

		if !c.limiter.Allow() {
			c.manager.logger.Warn(c.manager.ctx, nil, "Stimulus rate limit exceeded", "session", c.id)
			c.close(websocket.StatusPolicyViolation, "rate limit exceeded")
			return
		}

		if typ != websocket.MessageText {
			c.fail(errors.NewValidationError(errors.ErrCodeMessageMalformed, "expected a text message"))
			continue
		}
		if err := c.handle(data); err != nil {
			c.fail(err)
		}
	}
}

// handle decodes one input message and dispatches it to the carousel.
func (c *Client) handle(data []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.NewValidationError(errors.ErrCodeMessageMalformed, "message is not valid JSON")
	}
	if msg.Type != TypeInput {
		return errors.NewValidationError(errors.ErrCodeMessageMalformed, "unsupported message type").
			WithContext("type", msg.Type)
	}

	s, err := adapters.ParseStimulus(msg.Stimulus, msg.Index)
	if err != nil {
		return err
	}
	return c.adapter.Dispatch(s)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			ctx, cancel := context.WithTimeout(c.manager.ctx, writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.manager.logger.Debug(c.manager.ctx, "Session write failed", "session", c.id, "error", err.Error())
				go c.close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.manager.ctx, writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				go c.close(websocket.StatusGoingAway, "ping failed")
				return
			}

		case <-c.done:
			return
		}
	}
}

// close unregisters the session before tearing its carousel down, so that a
// concurrent ReplaceAll never reaches a torn-down engine.
func (c *Client) close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.manager.unregister(c.id)
		c.unsubscribe()
		c.adapter.Close()
		c.engine.Teardown()
		_ = c.conn.Close(status, reason)

		c.manager.logger.Info(context.Background(), "Session closed",
			"session", c.id, "sessions", c.manager.Count())
	})
}

func copyItems(items []carousel.Testimonial) []carousel.Testimonial {
	out := make([]carousel.Testimonial, len(items))
	copy(out, items)
	return out
}

func texts(items []carousel.Testimonial) []string {
	out := make([]string, 0, 2*len(items))
	for _, item := range items {
		out = append(out, item.DisplayName, item.QuoteText)
	}
	return out
}
