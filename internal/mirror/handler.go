package mirror

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/bookprep/backend/internal/models"
)

type Handler struct {
	service *Service

	// Sync runs share no state with each other but are not safe to overlap;
	// the handler is the serialization point.
	mu sync.Mutex
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type runResponse struct {
	Status string            `json:"status"`
	Stats  map[string]*Stats `json:"stats"`
	Error  string            `json:"error,omitempty"`
}

func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	if !h.mu.TryLock() {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "A sync run is already in progress"})
		return
	}
	defer h.mu.Unlock()

	results, err := h.service.RunAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, runResponse{
			Status: "failed",
			Stats:  results,
			Error:  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{Status: "completed", Stats: results})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
