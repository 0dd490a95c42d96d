package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/requests"
)

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := s.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", verrs[0].Error())
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	typ := media.Type(body.MediaType)
	if typ == media.TypeTV && !body.Seasons.All && len(body.Seasons.Numbers) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "seasons are required for tv requests")
		return
	}

	req, err := s.deps.Requests.Create(r.Context(), actor(r), requests.CreateInput{
		MediaType:         typ,
		TMDBID:            body.TMDBID,
		TVDBID:            body.TVDBID,
		Is4K:              body.Is4K,
		Seasons:           body.Seasons.Numbers,
		AllSeasons:        body.Seasons.All,
		ServerID:          body.ServerID,
		ProfileID:         body.ProfileID,
		RootFolder:        body.RootFolder,
		LanguageProfileID: body.LanguageProfileID,
		Tags:              body.Tags,
		UserID:            body.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestToResponse(req))
}

// ownRequest loads a request the actor may see: their own, or any with the
// manage requests capability.
func (s *Server) ownRequest(w http.ResponseWriter, r *http.Request) (*media.Request, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return nil, false
	}
	req, err := s.deps.Store.GetRequest(id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	u := actor(r)
	if req.RequestedByID != u.ID && !u.HasAny(media.PermissionManageRequests) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "not your request")
		return nil, false
	}
	return req, true
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.ownRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.ownRequest(w, r)
	if !ok {
		return
	}
	if err := s.deps.Requests.Remove(r.Context(), req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.deps.Requests.Approve)
}

func (s *Server) declineRequest(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.deps.Requests.Decline)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *media.User, id int64) (*media.Request, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	req, err := fn(r.Context(), actor(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(req))
}

// retryRequest surfaces download manager failures as 502.
func (s *Server) retryRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	req, err := s.deps.Requests.Retry(r.Context(), actor(r), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, requestToResponse(req))
	case isDomainError(err):
		writeServiceError(w, err)
	default:
		s.log.Warn("retry failed", "request_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "SUBMISSION_FAILED", err.Error())
	}
}

func (s *Server) completeSeason(w http.ResponseWriter, r *http.Request) {
	if !actor(r).HasAny(media.PermissionManageRequests) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "manage requests permission required")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	req, err := s.deps.Requests.CompleteSeason(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(req))
}

func isDomainError(err error) bool {
	for _, target := range []error{
		media.ErrNotFound,
		requests.ErrPermission,
		requests.ErrInvalidTransition,
		requests.ErrNoInstance,
		requests.ErrMissingTVDB,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
