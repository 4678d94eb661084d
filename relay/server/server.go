// Package server implements the ASH relay's HTTP surface: the blind
// ciphertext queue described in spec.md §6. A Server bundles the
// conversation store, a notifier for best-effort device pushes, and an
// SSE broadcaster, the way socks.Server bundles a listener address, a
// circuit source, and a logger behind one ListenAndServe call.
//
// Per-source-IP rate limiting on POST /v1/conversations and
// POST /v1/register is a deployment concern, not something this
// package implements: operators are expected to place a reverse proxy
// or load balancer in front of a relay that needs it.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/relay/notify"
	"github.com/ashmsg/ash/relay/store"
)

// tokenHashHexLen is the length of a hex-encoded SHA-256 hash, the wire
// format spec.md §6 requires for auth_token_hash/burn_token_hash.
const tokenHashHexLen = 64

// Server is the relay's HTTP listener. Construct with New, then call
// ListenAndServe.
type Server struct {
	Addr   string
	Store  *store.Store
	Notify notify.Notifier
	Logger *slog.Logger

	CleanupInterval time.Duration

	broadcast *broadcaster
	mux       *http.ServeMux
	ln        net.Listener
}

// New returns a Server wired to store, ready to have ListenAndServe
// called on it. notifier may be nil, in which case a logging-only
// notify.LoggingNotifier is used.
func New(addr string, st *store.Store, notifier notify.Notifier, logger *slog.Logger) *Server {
	if notifier == nil {
		notifier = notify.NewLoggingNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Addr:            addr,
		Store:           st,
		Notify:          notifier,
		Logger:          logger,
		CleanupInterval: 10 * time.Second,
		broadcast:       newBroadcaster(),
	}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/conversations", s.handleCreateConversation)
	mux.HandleFunc("POST /v1/register", s.handleRegisterDevice)
	mux.HandleFunc("POST /v1/messages", s.handlePostMessage)
	mux.HandleFunc("GET /v1/messages", s.handleGetMessages)
	mux.HandleFunc("GET /v1/messages/stream", s.handleStream)
	mux.HandleFunc("POST /v1/burn", s.handleBurn)
	mux.HandleFunc("GET /v1/burn", s.handleGetBurnStatus)
	return mux
}

// ListenAndServe binds Addr and serves until the listener fails or ctx
// is canceled. It also starts the background cleanup ticker that
// expires blobs, burn flags, and device registrations.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, the way socks.Server.Serve lets a
// caller supply its own listener (useful for tests that bind to
// :0 and need the chosen port back).
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.ln = ln
	s.Logger.Info("ASH relay listening", "addr", ln.Addr().String())

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go s.runCleanupLoop(cleanupCtx)

	httpServer := &http.Server{Handler: s.mux}
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) runCleanupLoop(ctx context.Context) {
	interval := s.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Store.Cleanup()
		}
	}
}

// writeError maps err to its HTTP status/code and writes the standard
// {"error": {"code": ..., "message": ...}} body. Message text is the
// generic asherr text, never a store-internal detail, matching
// spec.md's requirement that failure responses not leak internals.
func writeError(w http.ResponseWriter, err error) {
	status, code := asherr.HTTPStatus(err)
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return asherr.ErrInvalidHeader
	}
	return nil
}

func validTokenHash(hash string) bool {
	if len(hash) != tokenHashHexLen {
		return false
	}
	for _, r := range hash {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// sseHeartbeatInterval returns a ticker for the SSE keep-alive ping event.
func sseHeartbeatInterval() *time.Ticker {
	return time.NewTicker(15 * time.Second)
}

func decodeCiphertext(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, asherr.ErrInvalidHeader
	}
	return data, nil
}
