package requests

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
)

// Approve moves a pending (or already approved) request to approved and
// submits it to the download manager in the background.
func (s *Service) Approve(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error) {
	if !actor.HasAny(media.PermissionManageRequests) {
		return nil, fmt.Errorf("approve request %d: %w", requestID, ErrPermission)
	}
	req, err := s.transition(ctx, requestID, media.RequestApproved, &actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.applyApproval(ctx, req, &actor.ID, false); err != nil {
		return nil, err
	}
	s.submitAsync(ctx, req)
	return req, nil
}

// Decline moves a request to declined and rolls the media tier back when
// nothing else holds it.
func (s *Service) Decline(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error) {
	if !actor.HasAny(media.PermissionManageRequests) {
		return nil, fmt.Errorf("decline request %d: %w", requestID, ErrPermission)
	}
	req, err := s.transition(ctx, requestID, media.RequestDeclined, &actor.ID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return nil, err
	}
	tier := req.Tier()
	all, err := s.store.ListRequestsForMedia(m.ID)
	if err != nil {
		return nil, err
	}
	switch req.Type {
	case media.TypeMovie:
		// The declined request no longer counts; a duplicate still holding
		// the tier keeps it pending or processing.
		if want := media.DeriveStatus(m.StatusFor(tier), all, tier); want != m.StatusFor(tier) {
			if err := s.setTierStatus(ctx, m, tier, want, "request declined"); err != nil {
				return nil, err
			}
		}
	case media.TypeTV:
		// Only the last pending request of a show that has nothing approved
		// yet rolls the tier back.
		pending := slices.ContainsFunc(all, func(r *media.Request) bool { return r.Status == media.RequestPending })
		if !pending && m.StatusFor(tier) == media.StatusPending {
			if err := s.setTierStatus(ctx, m, tier, media.StatusUnknown, "request declined"); err != nil {
				return nil, err
			}
		}
	}

	if m.StatusFor(tier) == media.StatusAvailable {
		s.log.Warn("media became available before request was declined, skipping notification",
			"request_id", req.ID, "media_id", m.ID)
	} else {
		s.notify(ctx, events.NotifyMediaDeclined, m, req, &actor.ID)
	}
	return req, nil
}

// Retry re-runs the submission of an approved request synchronously and
// returns the download manager error, if any.
func (s *Service) Retry(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error) {
	if !actor.HasAny(media.PermissionManageRequests) {
		return nil, fmt.Errorf("retry request %d: %w", requestID, ErrPermission)
	}
	req, err := s.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != media.RequestApproved {
		return nil, fmt.Errorf("retry request %d in status %s: %w", req.ID, req.Status, ErrInvalidTransition)
	}
	if err := s.store.UpdateRequestStatus(req.ID, media.RequestApproved, &actor.ID); err != nil {
		return nil, err
	}
	req.ModifiedByID = &actor.ID

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return nil, err
	}
	if !m.StatusFor(req.Tier()).IsAvailable() {
		if err := s.setTierStatus(ctx, m, req.Tier(), media.StatusProcessing, "request retried"); err != nil {
			return nil, err
		}
	}
	return req, s.submit(ctx, req)
}

// Remove deletes a request and recomputes the media tiers it held.
func (s *Service) Remove(ctx context.Context, requestID int64) error {
	req, err := s.store.GetRequest(requestID)
	if err != nil {
		return err
	}
	return s.remove(ctx, req, events.RemovedByUser)
}

// RemoveUserRequests removes every request a user owns, each through the
// same cascade as Remove.
func (s *Service) RemoveUserRequests(ctx context.Context, userID int64) error {
	reqs, err := s.store.ListRequestsByUser(userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, req := range reqs {
		if err := s.remove(ctx, req, events.RemovedWithUser); err != nil {
			errs = append(errs, fmt.Errorf("remove request %d: %w", req.ID, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteUser removes a user account. The user's requests go first through
// RemoveUserRequests so media tiers they held are recomputed. The owner
// account and the actor's own account cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, actor *media.User, userID int64) error {
	if !actor.HasAny(media.PermissionAdmin) {
		return ErrPermission
	}
	if actor.ID == userID {
		return fmt.Errorf("delete own account: %w", ErrPermission)
	}
	target, err := s.store.GetUser(userID)
	if err != nil {
		return err
	}
	owner, err := s.store.AdminUser()
	if err != nil {
		return err
	}
	if owner.ID == target.ID {
		return fmt.Errorf("delete owner account: %w", ErrPermission)
	}

	if err := s.RemoveUserRequests(ctx, target.ID); err != nil {
		return fmt.Errorf("remove requests of user %d: %w", target.ID, err)
	}
	if err := s.store.DeleteUser(target.ID); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", target.ID, "actor_id", actor.ID)
	return nil
}

func (s *Service) remove(ctx context.Context, req *media.Request, reason string) error {
	if err := s.store.DeleteRequest(req.ID); err != nil {
		return err
	}
	s.log.Info("request removed", "request_id", req.ID, "media_id", req.MediaID, "reason", reason)
	s.publish(ctx, &events.RequestRemoved{
		BaseEvent: events.NewBaseEvent(events.EventRequestRemoved, events.EntityRequest, req.ID),
		RequestID: req.ID,
		MediaID:   req.MediaID,
		Is4K:      req.Is4K,
		Reason:    reason,
	})

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return err
	}
	remaining, err := s.store.ListRequestsForMedia(m.ID)
	if err != nil {
		return err
	}
	for _, tier := range media.Tiers {
		cur := m.StatusFor(tier)
		if cur == media.StatusAvailable || cur == media.StatusUnknown {
			continue
		}
		if media.ActiveRequestStatus(remaining, tier) == media.StatusUnknown {
			if err := s.setTierStatus(ctx, m, tier, media.StatusUnknown, "request removed"); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompleteSeason marks one season request fulfilled. When every season of
// the parent request is fulfilled the request itself completes.
func (s *Service) CompleteSeason(ctx context.Context, seasonRequestID int64) (*media.Request, error) {
	sr, err := s.store.GetSeasonRequest(seasonRequestID)
	if err != nil {
		return nil, err
	}
	if sr.Status == media.RequestDeclined {
		return nil, fmt.Errorf("complete declined season request %d: %w", sr.ID, ErrInvalidTransition)
	}
	if sr.Status != media.RequestCompleted {
		if err := s.store.UpdateSeasonRequestStatus(sr.ID, media.RequestCompleted); err != nil {
			return nil, err
		}
	}

	req, err := s.store.GetRequest(sr.RequestID)
	if err != nil {
		return nil, err
	}
	done := !slices.ContainsFunc(req.Seasons, func(x media.SeasonRequest) bool { return x.Status != media.RequestCompleted })
	if done && req.Status.CanTransitionTo(media.RequestCompleted) {
		if err := s.store.UpdateRequestStatus(req.ID, media.RequestCompleted, nil); err != nil {
			return nil, err
		}
		s.publishRequestStatus(ctx, req.ID, req.Status, media.RequestCompleted, nil)
		req.Status = media.RequestCompleted
	}
	return req, nil
}

// MediaAvailable runs the cascades of a tier that the library scan moved
// from previous to its current status: pending requests of a title that
// showed up on its own are approved, and requesters are told their title
// (or, for series, every season they asked for) is available.
// newlyAvailable lists the seasons that became available in this update.
func (s *Service) MediaAvailable(ctx context.Context, mediaID int64, tier media.Tier, previous media.Status, newlyAvailable []int) error {
	m, err := s.store.GetMedia(mediaID)
	if err != nil {
		return err
	}
	current := m.StatusFor(tier)
	reqs, err := s.store.ListRequestsForMedia(m.ID)
	if err != nil {
		return err
	}

	switch m.Type {
	case media.TypeMovie:
		if current == media.StatusAvailable && previous != media.StatusAvailable {
			for _, r := range reqs {
				if r.Tier() == tier && r.Status != media.RequestDeclined {
					s.notify(ctx, events.NotifyMediaAvailable, m, r, nil)
				}
			}
		}
	case media.TypeTV:
		if current.IsAvailable() && len(newlyAvailable) > 0 {
			if err := s.notifySeasonsAvailable(ctx, m, tier, reqs, newlyAvailable); err != nil {
				return err
			}
		}
	}

	if current == media.StatusAvailable && previous == media.StatusPending {
		for _, r := range reqs {
			if r.Tier() != tier || r.Status != media.RequestPending {
				continue
			}
			if err := s.store.UpdateRequestStatus(r.ID, media.RequestApproved, nil); err != nil {
				return err
			}
			s.publishRequestStatus(ctx, r.ID, r.Status, media.RequestApproved, nil)
		}
	}
	return nil
}

func (s *Service) notifySeasonsAvailable(ctx context.Context, m *media.Media, tier media.Tier, reqs []*media.Request, changed []int) error {
	seasons, err := s.store.ListSeasons(m.ID)
	if err != nil {
		return err
	}
	var available []int
	for _, season := range seasons {
		if season.StatusFor(tier) == media.StatusAvailable {
			available = append(available, season.SeasonNumber)
		}
	}

	notified := make(map[int64]bool)
	for _, n := range changed {
		for _, r := range reqs {
			if r.Tier() != tier || r.Status == media.RequestDeclined || notified[r.ID] {
				continue
			}
			covers := slices.ContainsFunc(r.Seasons, func(x media.SeasonRequest) bool { return x.SeasonNumber == n })
			complete := !slices.ContainsFunc(r.Seasons, func(x media.SeasonRequest) bool {
				return !slices.Contains(available, x.SeasonNumber)
			})
			if covers && complete {
				notified[r.ID] = true
				s.notify(ctx, events.NotifyMediaAvailable, m, r, nil)
			}
		}
	}
	return nil
}

// transition validates and writes a request status change.
func (s *Service) transition(ctx context.Context, requestID int64, to media.RequestStatus, actorID *int64) (*media.Request, error) {
	req, err := s.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("request %d is already %s: %w", req.ID, req.Status, ErrInvalidTransition)
	}
	if !req.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("request %d %s -> %s: %w", req.ID, req.Status, to, ErrInvalidTransition)
	}
	if err := s.store.UpdateRequestStatus(req.ID, to, actorID); err != nil {
		return nil, err
	}
	s.log.Info("request status changed", "request_id", req.ID, "status", to, "prev", req.Status)
	s.publishRequestStatus(ctx, req.ID, req.Status, to, actorID)
	req.Status = to
	if actorID != nil {
		req.ModifiedByID = actorID
	}
	return req, nil
}

func (s *Service) publishRequestStatus(ctx context.Context, requestID int64, from, to media.RequestStatus, actorID *int64) {
	s.publish(ctx, &events.RequestStatusChanged{
		BaseEvent: events.NewBaseEvent(events.EventRequestStatusChanged, events.EntityRequest, requestID),
		RequestID: requestID,
		OldStatus: string(from),
		NewStatus: string(to),
		ActorID:   actorID,
	})
}

// applyApproval runs the approval cascade: the tier moves to processing
// unless something is already available, season requests follow the parent,
// and the requester is told.
func (s *Service) applyApproval(ctx context.Context, req *media.Request, actorID *int64, auto bool) error {
	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return err
	}
	tier := req.Tier()
	if !m.StatusFor(tier).IsAvailable() {
		if err := s.setTierStatus(ctx, m, tier, media.StatusProcessing, "request approved"); err != nil {
			return err
		}
	}

	for i := range req.Seasons {
		sr := &req.Seasons[i]
		if sr.Status == media.RequestApproved || sr.Status == media.RequestCompleted {
			continue
		}
		if err := s.store.UpdateSeasonRequestStatus(sr.ID, media.RequestApproved); err != nil {
			return err
		}
		sr.Status = media.RequestApproved
	}

	if m.StatusFor(tier) == media.StatusAvailable {
		s.log.Warn("media became available before request was approved, skipping notification",
			"request_id", req.ID, "media_id", m.ID)
		return nil
	}
	kind := events.NotifyMediaApproved
	if auto {
		kind = events.NotifyMediaAutoApproved
	}
	s.notify(ctx, kind, m, req, actorID)
	if auto && req.IsAutoRequest {
		s.notify(ctx, events.NotifyMediaAutoRequested, m, req, actorID)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, kind events.NotificationKind, m *media.Media, req *media.Request, actorID *int64) {
	if s.events == nil {
		return
	}
	n := events.Notification{
		Kind:      kind,
		MediaID:   m.ID,
		MediaType: string(m.Type),
		TMDBID:    m.TMDBID,
	}
	if req != nil {
		n.Is4K = req.Is4K
		n.RequestID = &req.ID
		n.RequestedByID = &req.RequestedByID
	}
	n.ActorID = actorID
	s.events.Notify(ctx, n)
}
