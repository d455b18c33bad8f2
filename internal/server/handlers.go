package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/vitrine/internal/version"
	"github.com/conneroisu/vitrine/internal/view"
)

// Handler returns the HTTP routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.sessions.HandleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	return s.addMiddleware(mux)
}

// handleIndex renders the page from the state a new session starts in.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	model := s.sessions.InitialModel()
	page := view.PageData{
		Title: s.config.Site.Title,
		Lang:  s.config.Site.Lang,
		Model: model,
		Client: view.ClientConfig{
			Socket:    "/ws",
			Direction: model.Dir,
		},
	}

	templ.Handler(view.Page(page)).ServeHTTP(w, r)
}

// handleHealth returns the server health status for health checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "healthy"
	code := http.StatusOK
	if s.isShutdown.Load() {
		status = "shutting_down"
		code = http.StatusServiceUnavailable
	}

	info := version.Get()
	health := map[string]interface{}{
		"status":    status,
		"timestamp": s.clock.Now().UTC(),
		"uptime":    s.clock.Now().Sub(s.started).Round(time.Second).String(),
		"version":   info.Short(),
		"checks": map[string]interface{}{
			"sessions":     map[string]interface{}{"status": "healthy", "active": s.sessions.Count()},
			"testimonials": map[string]interface{}{"status": "healthy", "count": len(s.sessions.Items())},
			"watcher":      map[string]interface{}{"status": "healthy", "enabled": s.watcher != nil},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}
