package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"llmrelay/manager"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 1 << 20

// Completer relays one inbound body to the upstream model.
// *upstream.Client implements it.
type Completer interface {
	Complete(ctx context.Context, input map[string]any) (string, error)
}

// HTTPHandler serves the health and relay endpoints.
type HTTPHandler struct {
	Upstream Completer
	Monitor  *manager.ActivityMonitor
	router   chi.Router
}

// NewHTTPHandler creates a new instance of HTTPHandler. A nil monitor gets
// a private one.
func NewHTTPHandler(c Completer, monitor *manager.ActivityMonitor) *HTTPHandler {
	if monitor == nil {
		monitor = manager.NewActivityMonitor()
	}
	h := &HTTPHandler{
		Upstream: c,
		Monitor:  monitor,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.HandleFunc("/", h.handleHealth)
	r.Post("/llm_bot", h.handleRelay)

	h.router = r
	return h
}

// ServeHTTP implements the http.Handler interface for HTTPHandler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	logRequest(r)
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Message: "Ok",
		Status:  "success",
		Method:  r.Method,
	})
}

func (h *HTTPHandler) handleRelay(w http.ResponseWriter, r *http.Request) {
	logRequest(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logAndReturnError(w, r, "Request Entity Too Large", http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body over %d bytes", tooLarge.Limit))
			return
		}
		requestLogger(r).Debugf("Unable to read body: %v", err)
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	// A JSON value that is not an object (including null) is rejected the
	// same way as a syntax error.
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	done := h.Monitor.Begin()
	defer done()

	// The caller hanging up does not abort the upstream call.
	ctx := context.WithoutCancel(r.Context())
	received, err := h.Upstream.Complete(ctx, payload)
	if err != nil {
		logAndReturnError(w, r, "Internal Server Error", http.StatusInternalServerError,
			fmt.Sprintf("Error relaying request: %s", err.Error()))
		return
	}

	writeJSON(w, r, http.StatusOK, RelayResponse{
		Received: received,
		Message:  relaySuccessMessage,
	})
}
