package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
)

// Refresher accepts recompute requests.
type Refresher interface {
	Enqueue(ctx context.Context, r queue.Request) error
}

// RefreshHandler handles recompute requests.
type RefreshHandler struct {
	refresher Refresher
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(refresher Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

type refreshResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// HandleRefresh handles POST /refresh requests. A refresh that is already
// pending absorbs the request.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	req := queue.Request{ID: uuid.NewString(), Reason: "api", At: time.Now()}
	switch err := h.refresher.Enqueue(r.Context(), req); {
	case err == nil:
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "queued", ID: req.ID})
	case errors.Is(err, queue.ErrFull):
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "pending"})
	case errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting_down", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
