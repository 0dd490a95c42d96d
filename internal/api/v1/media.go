package v1

import (
	"net/http"
)

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	m, err := s.deps.Store.GetMedia(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	seasons, err := s.deps.Store.ListSeasons(m.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	reqs, err := s.deps.Store.ListRequestsForMedia(m.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaToResponse(m, seasons, reqs))
}
