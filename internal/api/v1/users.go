package v1

import "net/http"

// deleteUser removes a user account along with every request it owns.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.deps.Requests.DeleteUser(r.Context(), actor(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.log.Info("user deleted", "target_id", id, "user_id", actor(r).ID)
	w.WriteHeader(http.StatusNoContent)
}
