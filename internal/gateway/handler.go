package gateway

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler exposes the websocket upgrade endpoint.
type Handler struct {
	hub *Hub
}

// NewHandler creates a websocket handler backed by the hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleSocket upgrades the request. Room membership is negotiated over the
// socket itself via joinBoard, so the URL carries no identifier.
func (h *Handler) HandleSocket(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Upgrade(w, r); err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// HandleStats reports live room and connection counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	rooms, members := h.hub.Stats()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"rooms":%d,"connections":%d}`, rooms, members)
}

// RegisterRoutes registers the websocket routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.HandleSocket)
	mux.HandleFunc("GET /ws/stats", h.HandleStats)
}
