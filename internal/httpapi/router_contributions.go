package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fikir/freetrack/internal/reports"
)

// handleContributions serves the contribution graph: per-day activity counts
// for the tenant. /api/v1/contributions renders the trailing twelve months,
// /api/v1/contributions/{year} a full calendar year.
func (r *router) handleContributions(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	year := 0
	if rest := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/v1/contributions"), "/"); rest != "" {
		parsed, err := strconv.Atoi(rest)
		if err != nil || parsed < reports.MinYear || parsed > reports.MaxYear {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year parameter"})
			return
		}
		year = parsed
	}

	graph, err := reports.Contributions(req.Context(), r.deps.Store, tenantID(req), year)
	if err != nil {
		r.logError("contribution graph", "reports", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, graph)
}
