// Package api exposes the HTTP surface of finbot: the WhatsApp webhook
// endpoint (verification handshake and event deliveries) and a health check.
//
// Webhook deliveries are acknowledged immediately and processed
// asynchronously so Meta never retries because of slow downstream work.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/finsalud/finbot/internal/models"
	"github.com/finsalud/finbot/internal/wacloud"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":5001"

// maxWebhookBody caps webhook payload reads.
const maxWebhookBody = 1 << 20

// EventProcessor consumes normalized webhook events. Implemented by
// dispatch.Dispatcher.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev models.Event)
}

// Opts holds server configuration.
type Opts struct {
	Addr        string
	VerifyToken string
}

// Option configures the server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithVerifyToken sets the webhook verification token.
func WithVerifyToken(token string) Option {
	return func(o *Opts) {
		o.VerifyToken = token
	}
}

// Server is the finbot HTTP server.
type Server struct {
	addr        string
	verifyToken string
	processor   EventProcessor
	httpServer  *http.Server
}

// NewServer creates a server delivering webhook events to the processor.
func NewServer(processor EventProcessor, opts ...Option) (*Server, error) {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.VerifyToken == "" {
		return nil, fmt.Errorf("webhook verify token not set")
	}
	s := &Server{
		addr:        cfg.Addr,
		verifyToken: cfg.VerifyToken,
		processor:   processor,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	slog.Info("finbot API server listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyHandler(w, r)
	case http.MethodPost:
		s.deliveryHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyHandler answers the Meta webhook subscription handshake: echo the
// challenge when the mode and token match, reject otherwise.
func (s *Server) verifyHandler(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == s.verifyToken {
		slog.Info("Webhook verification succeeded")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge)); err != nil {
			slog.Error("Server.verifyHandler: failed to write challenge", "error", err)
		}
		return
	}
	slog.Warn("Webhook verification failed", "mode", mode)
	http.Error(w, "Error de verificación", http.StatusForbidden)
}

func (s *Server) deliveryHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		slog.Warn("Server.deliveryHandler: failed to read body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ev, err := wacloud.ParseWebhook(body)
	if errors.Is(err, models.ErrNoMessages) {
		// Status updates and read receipts are acknowledged without processing.
		slog.Debug("Webhook delivery without messages acknowledged")
		s.writeAck(w)
		return
	}
	if err != nil {
		slog.Warn("Server.deliveryHandler: invalid payload", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Acknowledge before processing so slow downstream work never triggers a
	// webhook retry.
	s.writeAck(w)
	go s.processor.ProcessEvent(context.Background(), ev)
}

func (s *Server) writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Evento recibido"}); err != nil {
		slog.Error("Server.writeAck: failed to write acknowledgment", "error", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("Server.healthHandler: failed to write response", "error", err)
	}
}
