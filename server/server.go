// Package server exposes the command webhook and the health endpoint.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cow-notifier/pkg/news"
)

// Server handles HTTP requests and feeds commands to the worker queue.
type Server struct {
	logger *slog.Logger
	queue  chan<- news.Command
	secret string
	port   string
}

// Config holds server configuration.
type Config struct {
	Logger *slog.Logger
	Queue  chan<- news.Command
	Secret string
	Port   string
}

// New creates a new HTTP server handler.
func New(cfg *Config) *Server {
	return &Server{
		logger: cfg.Logger,
		queue:  cfg.Queue,
		secret: cfg.Secret,
		port:   cfg.Port,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/hook/", s.handleHook)

	// Timeouts prevent resource exhaustion from slow clients.
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "port", s.port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, `{"status":"healthy"}`); err != nil {
		s.logger.Warn("Failed to write health response", "error", err)
	}
}

// handleHook accepts a command from the chat provider. The path carries a
// shared secret; a mismatch is answered 404 so the endpoint does not
// confirm its own existence.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Path[len("/hook/"):]
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) != 1 {
		s.logger.Warn("Webhook called with bad secret", "remote", r.RemoteAddr)
		http.NotFound(w, r)
		return
	}

	var cmd news.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&cmd); err != nil {
		s.logger.Warn("Webhook payload rejected", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if cmd.ChatID == 0 || cmd.Name == "" {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	select {
	case s.queue <- cmd:
		w.WriteHeader(http.StatusAccepted)
		if _, err := fmt.Fprint(w, `{"status":"queued"}`); err != nil {
			s.logger.Warn("Failed to write response", "error", err)
		}
	default:
		// The worker is behind; the provider will redeliver.
		s.logger.Warn("Command queue full, dropping command",
			"chat_id", cmd.ChatID,
			"name", cmd.Name)
		http.Error(w, "Queue full", http.StatusServiceUnavailable)
	}
}
