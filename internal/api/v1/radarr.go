package v1

import (
	"net/http"
)

// listExclusions lists the import exclusions of one Radarr instance.
func (s *Server) listExclusions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Settings == nil || s.deps.NewRadarr == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Radarr not configured")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	for _, cfg := range s.deps.Settings().Radarr {
		if cfg.ID != id {
			continue
		}
		list, err := s.deps.NewRadarr(cfg).Exclusions(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, "RADARR_ERROR", err.Error())
			return
		}
		resp := make([]exclusionResponse, 0, len(list))
		for _, e := range list {
			resp = append(resp, exclusionResponse{ID: e.ID, TMDBID: e.TMDBID, Title: e.Title, Year: e.Year})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "radarr instance not found")
}
