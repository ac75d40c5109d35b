// Package status exposes a read-only JSON introspection endpoint over the
// capture engine's current state. It is optional: the application only
// binds it when config.StatusConfig.Address is non-empty.
package status

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/oldirty/AirCodum/engine"
)

// Handlers serves the engine's status snapshot over HTTP.
type Handlers struct {
	eng    *engine.CaptureEngine
	logger *zap.Logger
}

// NewHandlers returns Handlers bound to eng.
func NewHandlers(eng *engine.CaptureEngine, logger *zap.Logger) *Handlers {
	return &Handlers{eng: eng, logger: logger}
}

// HandleStatus serves the engine's current Status snapshot as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.eng == nil {
		h.writeErrorResponse(w, "capture engine not initialized", http.StatusServiceUnavailable)
		return
	}
	h.writeJSONResponse(w, h.eng.StatusSnapshot())
}

// HandleHealth reports a minimal liveness signal, independent of whether
// any viewer is currently subscribed.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, map[string]string{"status": "ok"})
}

// NewMux builds the status endpoint's handler tree.
func (h *Handlers) NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/healthz", h.HandleHealth)
	return mux
}

func (h *Handlers) writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode status response", zap.Error(err))
	}
}

func (h *Handlers) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": message, "status": statusCode})
}
