// Package http implements the HTTP/WebSocket transport for voxrelay.
//
// This transport exposes the REST endpoint the browser voice-assistant front
// end talks to, plus a WebSocket variant for clients that keep a connection
// open across turns. CORS is fully permissive (no credentials) since the
// front end is served from a different origin.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/voxrelay/voxrelay/internal/completion"
	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/message"
	"github.com/voxrelay/voxrelay/internal/transport"
)

// maxBodyBytes bounds the request body; conversations are text, so 1 MB is
// already generous.
const maxBodyBytes = 1 << 20

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	mux := http.NewServeMux()

	// POST /chat — the main request/response relay endpoint.
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		t.handleChat(w, r, handler)
	})

	// OPTIONS — CORS preflight for the browser front end.
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w)
		w.WriteHeader(http.StatusOK)
	})

	// GET /ws — WebSocket chat: one ChatRequest per frame in, one
	// ChatResponse (or error payload) per frame out.
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		t.handleWS(w, r, handler)
	})

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleChat processes a POST /chat request.
//
// @Summary     Relay a chat message
// @Description Accepts a conversation (or a legacy single message) with an optional voice id.
// @Description The message is augmented with live web-search context, completed by the
// @Description configured language model, and synthesized to speech. Audio is base64-encoded
// @Description in the response and null when synthesis fails — audio absence is not an error.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request  body      message.ChatRequest  true  "Chat request"
// @Success     200  {object}  message.ChatResponse  "Completion text plus optional audio"
// @Failure     400  {object}  message.ErrorResponse  "Malformed or empty request"
// @Failure     500  {object}  message.ErrorResponse  "Configuration or upstream failure"
// @Router      /chat [post]
func (t *Transport) handleChat(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	writeCORS(w)

	var req message.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		detail := "invalid json: " + err.Error()
		if errors.Is(err, io.EOF) {
			detail = "empty request body"
		}
		writeError(w, http.StatusBadRequest, detail)
		return
	}

	resp, err := handler(r.Context(), &req)
	if err != nil {
		status, detail := statusFor(err)
		writeError(w, status, detail)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleWS upgrades to WebSocket and relays one chat request per frame.
func (t *Transport) handleWS(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	for {
		var req message.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		resp, err := handler(r.Context(), &req)
		if err != nil {
			_, detail := statusFor(err)
			_ = conn.WriteJSON(message.ErrorResponse{Error: detail})
			continue
		}
		_ = conn.WriteJSON(resp)
	}
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// writeCORS emits permissive CORS headers (no credentials).
func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// statusFor maps pipeline errors to a status code and user-facing detail.
// Client errors carry their detail; misconfiguration stays deliberately
// vague so credential handling never leaks; upstream failures propagate the
// provider's message.
func statusFor(err error) (int, string) {
	var upstream *completion.UpstreamError
	switch {
	case errors.Is(err, message.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, config.ErrMissingCredential):
		return http.StatusInternalServerError, "server misconfiguration"
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, upstream.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// writeError emits the structured error payload.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(message.ErrorResponse{Error: detail})
}
