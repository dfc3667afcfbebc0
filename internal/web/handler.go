// Package web serves the chat front end: a small JSON API, a WebSocket
// endpoint and an embedded single-page UI.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ultracoach/internal/store"
)

//go:embed index.html
var indexHTML []byte

// Chatter is the conversational surface the handlers front. The agent
// implements it; tests substitute a stub.
type Chatter interface {
	Reply(ctx context.Context, input string) (string, error)
}

// Handler exposes the coaching agent and read-only context over HTTP.
type Handler struct {
	chat  Chatter
	store store.Store
}

// NewHandler builds the HTTP handler set.
func NewHandler(chat Chatter, s store.Store) *Handler {
	return &Handler{chat: chat, store: s}
}

// Routes assembles the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)
	r.Post("/api/chat", h.handleChat)
	r.Get("/api/context", h.handleContext)
	r.Get("/ws", h.handleWS)

	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	start := time.Now()
	reply, err := h.chat.Reply(r.Context(), req.Message)
	if err != nil {
		slog.Error("chat failed", "error", err)
		writeError(w, http.StatusBadGateway, "the coach could not answer, try again")
		return
	}
	slog.Info("chat turn served", "duration", time.Since(start))

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// handleContext exposes the current grounding snapshot for inspection.
func (h *Handler) handleContext(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.ContextSummary(r.Context())
	if err != nil {
		slog.Error("context summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "context unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleWS runs the chat loop over a WebSocket: one JSON request in, one
// JSON reply out, until the client goes away.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Debug("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
			writeWS(ctx, conn, map[string]string{"error": "message is required"})
			continue
		}

		reply, err := h.chat.Reply(ctx, req.Message)
		if err != nil {
			slog.Error("ws chat failed", "error", err)
			writeWS(ctx, conn, map[string]string{"error": "the coach could not answer"})
			continue
		}
		writeWS(ctx, conn, chatResponse{Reply: reply})
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, v interface{}) {
	b, _ := json.Marshal(v)
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
