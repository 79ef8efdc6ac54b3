package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/config"
	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/logger"
)

const historySize = 200

// Server is the live decode dashboard. It is a decoder.Sink: every result is
// kept in recent history and pushed to WebSocket clients.
type Server struct {
	config config.WebConfig
	logger *logger.Logger
	server *http.Server
	recent *RecentRecords
	hub    *WebSocketHub
	api    *API
	addr   string
	mu     sync.RWMutex
}

// NewServer creates a dashboard server. store and stats may be nil.
func NewServer(cfg config.WebConfig, store MessageStore, stats StatsSource, log *logger.Logger) *Server {
	log = log.WithComponent("web")
	recent := NewRecentRecords(historySize)
	return &Server{
		config: cfg,
		logger: log,
		recent: recent,
		hub:    NewWebSocketHub(recent, log),
		api:    NewAPI(recent, store, stats, log),
	}
}

// Name implements decoder.Sink
func (s *Server) Name() string { return "web" }

// Handle implements decoder.Sink
func (s *Server) Handle(_ context.Context, r decoder.Result) error {
	rec := decoder.NewRecord(r)
	s.recent.Add(rec)
	s.hub.BroadcastMessage(rec)
	return nil
}

// Handler builds the dashboard's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.api.HandleStatus)
	mux.HandleFunc("/api/messages", s.api.HandleMessages)
	mux.HandleFunc("/api/stats", s.api.HandleStats)
	mux.HandleFunc("/api/opcodes", s.api.HandleOpcodes)
	mux.Handle("/ws", s.hub.Handler())

	if !s.config.AuthRequired {
		return mux
	}
	return s.basicAuth(mux)
}

// Start serves the dashboard until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Web server is disabled")
		return nil
	}

	go s.hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Port 0 picks a free port; GetAddr reports it
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("Starting web server", logger.String("address", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// GetAddr returns the address the server is listening on
func (s *Server) GetAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// GetHub returns the WebSocket hub
func (s *Server) GetHub() *WebSocketHub {
	return s.hub
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.config.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.config.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="dmr-lc"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dmr-lc",
		"clients": s.hub.GetClientCount(),
		"time":    time.Now().Unix(),
	}); err != nil {
		s.logger.Warn("Failed to encode health response", logger.Error(err))
	}
}
