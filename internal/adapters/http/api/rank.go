package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pavelchuchma/vkct/internal/adapters/repository"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, category, name, birthYear string) (repository.Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{category}?name=&birth_year= requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing name", ErrBadRequest))
		return
	}
	birthYear := strings.TrimSpace(r.URL.Query().Get("birth_year"))

	entry, err := h.deps.Rank(r.Context(), category, name, birthYear)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
