package media

import (
	"fmt"
	"time"
)

const requestColumns = `id, media_id, requested_by_id, modified_by_id, media_type, is_4k, status,
	server_id, profile_id, root_folder, language_profile_id, tags, is_auto_request,
	created_at, updated_at`

func scanRequest(row scanner) (*Request, error) {
	r := &Request{}
	var tags *string
	err := row.Scan(
		&r.ID, &r.MediaID, &r.RequestedByID, &r.ModifiedByID, &r.Type, &r.Is4K, &r.Status,
		&r.ServerID, &r.ProfileID, &r.RootFolder, &r.LanguageProfileID, &tags, &r.IsAutoRequest,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Tags = decodeTags(tags)
	return r, nil
}

func addRequest(q querier, r *Request) error {
	if r.Status == "" {
		r.Status = RequestPending
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media_request (media_id, requested_by_id, modified_by_id, media_type, is_4k, status,
			server_id, profile_id, root_folder, language_profile_id, tags, is_auto_request,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MediaID, r.RequestedByID, r.ModifiedByID, r.Type, r.Is4K, r.Status,
		r.ServerID, r.ProfileID, r.RootFolder, r.LanguageProfileID, encodeTags(r.Tags), r.IsAutoRequest,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now

	for i := range r.Seasons {
		sr := &r.Seasons[i]
		sr.RequestID = r.ID
		if sr.Status == "" {
			sr.Status = r.Status
		}
		if err := addSeasonRequest(q, sr); err != nil {
			return err
		}
	}
	return nil
}

// AddRequest inserts a request and its season requests in one transaction.
// Season requests without a status inherit the request status.
func (s *Store) AddRequest(r *Request) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	if err := tx.AddRequest(r); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// AddRequest inserts a request and its season requests within a transaction.
func (t *Tx) AddRequest(r *Request) error { return addRequest(t.tx, r) }

func getRequest(q querier, id int64) (*Request, error) {
	r, err := scanRequest(q.QueryRow(`SELECT `+requestColumns+` FROM media_request WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, mapSQLiteError(err))
	}
	seasons, err := listSeasonRequests(q, r.ID)
	if err != nil {
		return nil, err
	}
	r.Seasons = seasons
	return r, nil
}

// GetRequest retrieves a request with its season requests.
// Returns ErrNotFound if the request does not exist.
func (s *Store) GetRequest(id int64) (*Request, error) { return getRequest(s.db, id) }

// GetRequest retrieves a request within a transaction.
func (t *Tx) GetRequest(id int64) (*Request, error) { return getRequest(t.tx, id) }

func listRequests(q querier, where string, arg any) ([]*Request, error) {
	rows, err := q.Query(`SELECT `+requestColumns+` FROM media_request WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	var requests []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Season requests are loaded after the cursor is closed; a single
	// connection (":memory:" in tests) cannot serve two open result sets.
	for _, r := range requests {
		seasons, err := listSeasonRequests(q, r.ID)
		if err != nil {
			return nil, err
		}
		r.Seasons = seasons
	}
	return requests, nil
}

// ListRequestsForMedia returns every request of a media row, both tiers.
func (s *Store) ListRequestsForMedia(mediaID int64) ([]*Request, error) {
	return listRequests(s.db, "media_id = ?", mediaID)
}

// ListRequestsForMedia returns every request of a media row within a transaction.
func (t *Tx) ListRequestsForMedia(mediaID int64) ([]*Request, error) {
	return listRequests(t.tx, "media_id = ?", mediaID)
}

// ListRequestsByUser returns every request owned by a user.
func (s *Store) ListRequestsByUser(userID int64) ([]*Request, error) {
	return listRequests(s.db, "requested_by_id = ?", userID)
}

func updateRequestStatus(q querier, id int64, status RequestStatus, modifiedBy *int64) error {
	result, err := q.Exec(`
		UPDATE media_request SET status = ?, modified_by_id = COALESCE(?, modified_by_id), updated_at = ?
		WHERE id = ?`,
		status, modifiedBy, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update request %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRequestStatus sets the status of a request. A nil modifiedBy keeps
// the previous modifier.
func (s *Store) UpdateRequestStatus(id int64, status RequestStatus, modifiedBy *int64) error {
	return updateRequestStatus(s.db, id, status, modifiedBy)
}

// UpdateRequestStatus sets the status of a request within a transaction.
func (t *Tx) UpdateRequestStatus(id int64, status RequestStatus, modifiedBy *int64) error {
	return updateRequestStatus(t.tx, id, status, modifiedBy)
}

func deleteRequest(q querier, id int64) error {
	if _, err := q.Exec(`DELETE FROM season_request WHERE request_id = ?`, id); err != nil {
		return fmt.Errorf("delete season requests of %d: %w", id, mapSQLiteError(err))
	}
	result, err := q.Exec(`DELETE FROM media_request WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete request %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequest removes a request and its season requests.
func (s *Store) DeleteRequest(id int64) error { return deleteRequest(s.db, id) }

// DeleteRequest removes a request within a transaction.
func (t *Tx) DeleteRequest(id int64) error { return deleteRequest(t.tx, id) }

func addSeasonRequest(q querier, sr *SeasonRequest) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO season_request (request_id, season_number, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		sr.RequestID, sr.SeasonNumber, sr.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert season request: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	sr.ID = id
	sr.CreatedAt = now
	sr.UpdatedAt = now
	return nil
}

func listSeasonRequests(q querier, requestID int64) ([]SeasonRequest, error) {
	rows, err := q.Query(`
		SELECT id, request_id, season_number, status, created_at, updated_at
		FROM season_request WHERE request_id = ? ORDER BY season_number`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list season requests for request %d: %w", requestID, err)
	}
	defer rows.Close()

	var seasons []SeasonRequest
	for rows.Next() {
		var sr SeasonRequest
		if err := rows.Scan(&sr.ID, &sr.RequestID, &sr.SeasonNumber, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan season request: %w", err)
		}
		seasons = append(seasons, sr)
	}
	return seasons, rows.Err()
}

func getSeasonRequest(q querier, id int64) (*SeasonRequest, error) {
	sr := &SeasonRequest{}
	err := q.QueryRow(`
		SELECT id, request_id, season_number, status, created_at, updated_at
		FROM season_request WHERE id = ?`, id,
	).Scan(&sr.ID, &sr.RequestID, &sr.SeasonNumber, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get season request %d: %w", id, mapSQLiteError(err))
	}
	return sr, nil
}

// GetSeasonRequest retrieves a single season request.
func (s *Store) GetSeasonRequest(id int64) (*SeasonRequest, error) { return getSeasonRequest(s.db, id) }

func updateSeasonRequestStatus(q querier, id int64, status RequestStatus) error {
	result, err := q.Exec(`UPDATE season_request SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update season request %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSeasonRequestStatus sets the status of one season request.
func (s *Store) UpdateSeasonRequestStatus(id int64, status RequestStatus) error {
	return updateSeasonRequestStatus(s.db, id, status)
}

// UpdateSeasonRequestStatus sets the status of one season request within a transaction.
func (t *Tx) UpdateSeasonRequestStatus(id int64, status RequestStatus) error {
	return updateSeasonRequestStatus(t.tx, id, status)
}

func deleteSeasonRequest(q querier, id int64) error {
	if _, err := q.Exec(`DELETE FROM season_request WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete season request %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteSeasonRequest removes one season request.
func (s *Store) DeleteSeasonRequest(id int64) error { return deleteSeasonRequest(s.db, id) }

// DeleteSeasonRequest removes one season request within a transaction.
func (t *Tx) DeleteSeasonRequest(id int64) error { return deleteSeasonRequest(t.tx, id) }

// ListSeasonRequestsForMedia returns the season requests for one season of a
// media row, limited to requests of the given tier.
func (s *Store) ListSeasonRequestsForMedia(mediaID int64, seasonNumber int, tier Tier) ([]SeasonRequest, error) {
	rows, err := s.db.Query(`
		SELECT sr.id, sr.request_id, sr.season_number, sr.status, sr.created_at, sr.updated_at
		FROM season_request sr
		JOIN media_request r ON r.id = sr.request_id
		WHERE r.media_id = ? AND sr.season_number = ? AND r.is_4k = ?
		ORDER BY sr.id`, mediaID, seasonNumber, tier.Is4K())
	if err != nil {
		return nil, fmt.Errorf("list season requests for media %d season %d: %w", mediaID, seasonNumber, err)
	}
	defer rows.Close()

	var seasons []SeasonRequest
	for rows.Next() {
		var sr SeasonRequest
		if err := rows.Scan(&sr.ID, &sr.RequestID, &sr.SeasonNumber, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan season request: %w", err)
		}
		seasons = append(seasons, sr)
	}
	return seasons, rows.Err()
}

// DeleteSeasonRequests removes the season requests for one season of a media
// row at the given tier and returns the ids of the parent requests that were
// touched, so callers can drop requests left without seasons.
func (s *Store) DeleteSeasonRequests(mediaID int64, seasonNumber int, tier Tier) ([]int64, error) {
	seasons, err := s.ListSeasonRequestsForMedia(mediaID, seasonNumber, tier)
	if err != nil {
		return nil, err
	}
	var parents []int64
	seen := make(map[int64]bool)
	for _, sr := range seasons {
		if err := s.DeleteSeasonRequest(sr.ID); err != nil {
			return parents, err
		}
		if !seen[sr.RequestID] {
			seen[sr.RequestID] = true
			parents = append(parents, sr.RequestID)
		}
	}
	return parents, nil
}
