package server

import (
	"fmt"
	"net/http"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/relay/auth"
	"github.com/ashmsg/ash/relay/notify"
	"github.com/ashmsg/ash/relay/store"
)

// Version is the relay's reported build version. It is a var, not a
// const, so cmd/ash-relay can override it at startup with its own
// ldflags-injected build version.
var Version = "dev"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": Version})
}

type createConversationRequest struct {
	ConversationID string `json:"conversation_id"`
	AuthTokenHash  string `json:"auth_token_hash"`
	BurnTokenHash  string `json:"burn_token_hash"`
}

// handleCreateConversation registers a new conversation's auth/burn
// token hashes. The relay never sees the tokens themselves, only their
// hashes, so it cannot forge a session it never witnessed in plaintext.
func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ConversationID == "" || !validTokenHash(req.AuthTokenHash) || !validTokenHash(req.BurnTokenHash) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": "INVALID_INPUT", "message": "invalid conversation registration"},
		})
		return
	}

	switch s.Store.Register(req.ConversationID, req.AuthTokenHash, req.BurnTokenHash) {
	case store.RegisterAtCapacity:
		writeError(w, asherr.ErrServerAtCapacity)
	default:
		// RegisterOK and RegisterAlreadyExists both report success:
		// registration is idempotent from the client's point of view.
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})
	}
}

type registerDeviceRequest struct {
	ConversationID string `json:"conversation_id"`
	DeviceToken    string `json:"device_token"`
	Platform       string `json:"platform"`
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := auth.VerifyAuth(s.Store, req.ConversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	platform := store.Platform(req.Platform)
	if platform == "" {
		platform = store.PlatformIOS
	}
	if platform != store.PlatformIOS && platform != store.PlatformMacOS {
		writeError(w, asherr.ErrInvalidHeader)
		return
	}
	if len(req.DeviceToken) < 1 || len(req.DeviceToken) > 200 {
		writeError(w, asherr.ErrInvalidHeader)
		return
	}

	if err := s.Store.RegisterDevice(req.ConversationID, req.DeviceToken, platform); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type postMessageRequest struct {
	ConversationID string  `json:"conversation_id"`
	Ciphertext     string  `json:"ciphertext"`
	Sequence       *uint64 `json:"sequence,omitempty"`
}

// handlePostMessage enqueues one opaque ciphertext blob. The relay
// never inspects, decrypts, or interprets Ciphertext: it is a one-time-
// pad XOR output from a device that has already consumed pad bytes
// offline.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := auth.VerifyAuth(s.Store, req.ConversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	ciphertext, err := decodeCiphertext(req.Ciphertext)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.Store.StoreBlob(req.ConversationID, ciphertext, req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}

	s.broadcast.Publish(Event{Type: "message", ConversationID: req.ConversationID})
	devices := s.Store.GetDeviceTokens(req.ConversationID)
	s.Notify.Notify(notify.Event{ConversationID: req.ConversationID, Kind: notify.EventMessage}, devices)

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "blob_id": id})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if err := auth.VerifyAuth(s.Store, conversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	var cursor *store.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		c, err := store.DecodeCursor(raw)
		if err != nil {
			// A malformed cursor is a client input error, not an auth
			// failure, even though DecodeCursor reuses ErrInvalidHeader
			// internally; report it as such rather than through
			// writeError's auth-oriented status mapping.
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"code": "INVALID_INPUT", "message": "invalid cursor"},
			})
			return
		}
		cursor = &c
	}

	blobs, next, err := s.Store.GetBlobs(conversationID, cursor)
	if err != nil {
		writeError(w, err)
		return
	}

	messages := make([]map[string]any, 0, len(blobs))
	for _, b := range blobs {
		msg := map[string]any{
			"id":          b.ID,
			"ciphertext":  b.Ciphertext,
			"received_at": b.ReceivedAt,
		}
		if b.Sequence != nil {
			msg["sequence"] = *b.Sequence
		}
		messages = append(messages, msg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":    messages,
		"next_cursor": store.EncodeCursor(next),
		"burned":      s.Store.IsBurned(conversationID),
	})
}

// handleStream serves Server-Sent Events for a single conversation:
// one {"type":"message"} or {"type":"burned"} event per store mutation,
// plus a periodic {"type":"ping"} heartbeat so intermediary proxies
// don't time the connection out during quiet periods.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if err := auth.VerifyAuth(s.Store, conversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, asherr.ErrInvalidHeader)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsubscribe := s.broadcast.Subscribe()
	defer unsubscribe()

	heartbeat := sseHeartbeatInterval()
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if !writeSSEEvent(w, flusher, "ping") {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.ConversationID != conversationID {
				continue
			}
			if !writeSSEEvent(w, flusher, ev.Type) {
				return
			}
		}
	}
}

// writeSSEEvent writes one SSE "data:" line carrying a JSON object with
// the given type, matching spec.md's {"type":"message"|"burned"|"ping"}
// event shape. It reports whether the write succeeded.
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string) bool {
	if _, err := fmt.Fprintf(w, "data: {\"type\":%q}\n\n", eventType); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

type burnRequest struct {
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := auth.VerifyBurnAuth(s.Store, req.ConversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	if err := s.Store.Burn(req.ConversationID); err != nil {
		writeError(w, err)
		return
	}

	s.broadcast.Publish(Event{Type: "burned", ConversationID: req.ConversationID})
	devices := s.Store.GetDeviceTokens(req.ConversationID)
	s.Notify.Notify(notify.Event{ConversationID: req.ConversationID, Kind: notify.EventBurned}, devices)

	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func (s *Server) handleGetBurnStatus(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if err := auth.VerifyAuth(s.Store, conversationID, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	flag, burned := s.Store.GetBurnStatus(conversationID)
	resp := map[string]any{"burned": burned}
	if burned {
		resp["burned_at"] = flag.BurnedAt
	}
	writeJSON(w, http.StatusOK, resp)
}
