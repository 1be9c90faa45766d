package api

import (
	"context"
	"net/http"
)

// CategoriesDependencies lists the published categories.
type CategoriesDependencies interface {
	Categories(ctx context.Context) ([]string, error)
}

// CategoriesHandler handles category listing requests.
type CategoriesHandler struct {
	deps CategoriesDependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoriesDependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

// HandleGetCategories handles GET /categories requests.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.deps.Categories(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
