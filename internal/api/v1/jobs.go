package v1

import (
	"net/http"

	"github.com/gorilla/mux"
)

// requireJobs answers 503 when no scheduler is wired.
func (s *Server) requireJobs(w http.ResponseWriter) bool {
	if s.deps.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Scheduler not configured")
		return false
	}
	return true
}

func (s *Server) listJobs(w http.ResponseWriter, _ *http.Request) {
	if !s.requireJobs(w) {
		return
	}
	infos := s.deps.Jobs.Jobs()
	resp := listJobsResponse{Items: make([]jobResponse, 0, len(infos))}
	for _, j := range infos {
		item := jobResponse{
			ID:        j.ID,
			Name:      j.Name,
			Schedule:  j.Schedule,
			Running:   j.Running,
			LastError: j.LastError,
		}
		if !j.NextRun.IsZero() {
			next := j.NextRun
			item.NextRun = &next
		}
		if !j.LastRun.IsZero() {
			last := j.LastRun
			item.LastRun = &last
		}
		resp.Items = append(resp.Items, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireJobs(w) {
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.deps.Jobs.RunNow(id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.log.Info("job triggered", "job", id, "user_id", actor(r).ID)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireJobs(w) {
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.deps.Jobs.Cancel(id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.log.Info("job cancel requested", "job", id, "user_id", actor(r).ID)
	w.WriteHeader(http.StatusAccepted)
}
