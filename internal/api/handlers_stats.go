package api

import (
	"net/http"
)

func (s *Server) handleSearchStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "search stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": s.sessions.Len(),
		"stats":    s.stats.Snapshot(),
	})
}
