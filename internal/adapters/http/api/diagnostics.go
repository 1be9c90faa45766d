package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
)

// DiagnosticsDependencies reads the diagnostics of the published run.
type DiagnosticsDependencies interface {
	Diagnostics(ctx context.Context, minSeverity diag.Severity) ([]diag.Diagnostic, error)
}

// DiagnosticsHandler handles diagnostics requests.
type DiagnosticsHandler struct {
	deps DiagnosticsDependencies
}

// NewDiagnosticsHandler creates a new diagnostics handler.
func NewDiagnosticsHandler(deps DiagnosticsDependencies) *DiagnosticsHandler {
	return &DiagnosticsHandler{deps: deps}
}

// HandleGetDiagnostics handles GET /diagnostics?severity= requests. Without a
// severity every diagnostic is returned.
func (h *DiagnosticsHandler) HandleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	minSeverity := diag.Info
	if s := r.URL.Query().Get("severity"); s != "" {
		sev, err := diag.ParseSeverity(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		minSeverity = sev
	}

	out, err := h.deps.Diagnostics(r.Context(), minSeverity)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
