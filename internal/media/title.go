package media

import (
	"fmt"
	"time"
)

const mediaColumns = `id, media_type, tmdb_id, tvdb_id, imdb_id, status, status_4k,
	service_id, service_id_4k, external_service_id, external_service_id_4k,
	external_service_slug, external_service_slug_4k, rating_key, rating_key_4k,
	media_added_at, last_season_change, created_at, updated_at`

func scanMedia(row scanner) (*Media, error) {
	m := &Media{}
	err := row.Scan(
		&m.ID, &m.Type, &m.TMDBID, &m.TVDBID, &m.IMDBID, &m.Status, &m.Status4K,
		&m.Standard.ServiceID, &m.FourK.ServiceID,
		&m.Standard.ExternalServiceID, &m.FourK.ExternalServiceID,
		&m.Standard.ExternalServiceSlug, &m.FourK.ExternalServiceSlug,
		&m.Standard.RatingKey, &m.FourK.RatingKey,
		&m.MediaAddedAt, &m.LastSeasonChange, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func addMedia(q querier, m *Media) error {
	if m.Status == "" {
		m.Status = StatusUnknown
	}
	if m.Status4K == "" {
		m.Status4K = StatusUnknown
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media (media_type, tmdb_id, tvdb_id, imdb_id, status, status_4k,
			service_id, service_id_4k, external_service_id, external_service_id_4k,
			external_service_slug, external_service_slug_4k, rating_key, rating_key_4k,
			media_added_at, last_season_change, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Type, m.TMDBID, m.TVDBID, m.IMDBID, m.Status, m.Status4K,
		m.Standard.ServiceID, m.FourK.ServiceID,
		m.Standard.ExternalServiceID, m.FourK.ExternalServiceID,
		m.Standard.ExternalServiceSlug, m.FourK.ExternalServiceSlug,
		m.Standard.RatingKey, m.FourK.RatingKey,
		m.MediaAddedAt, m.LastSeasonChange, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// AddMedia inserts a new media row. Sets ID, CreatedAt, and UpdatedAt.
// Empty statuses default to StatusUnknown.
func (s *Store) AddMedia(m *Media) error { return addMedia(s.db, m) }

// AddMedia inserts a new media row within a transaction.
func (t *Tx) AddMedia(m *Media) error { return addMedia(t.tx, m) }

func getMedia(q querier, id int64) (*Media, error) {
	m, err := scanMedia(q.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// GetMedia retrieves a media row by ID.
// Returns ErrNotFound if the media does not exist.
func (s *Store) GetMedia(id int64) (*Media, error) { return getMedia(s.db, id) }

// GetMedia retrieves a media row by ID within a transaction.
func (t *Tx) GetMedia(id int64) (*Media, error) { return getMedia(t.tx, id) }

func getMediaByTMDB(q querier, tmdbID int64, typ Type) (*Media, error) {
	m, err := scanMedia(q.QueryRow(
		`SELECT `+mediaColumns+` FROM media WHERE tmdb_id = ? AND media_type = ?`, tmdbID, typ))
	if err != nil {
		return nil, fmt.Errorf("get media tmdb %d: %w", tmdbID, mapSQLiteError(err))
	}
	return m, nil
}

// GetMediaByTMDB finds media by TMDB id and type.
// Returns ErrNotFound if no row matches.
func (s *Store) GetMediaByTMDB(tmdbID int64, typ Type) (*Media, error) {
	return getMediaByTMDB(s.db, tmdbID, typ)
}

// GetMediaByTMDB finds media by TMDB id and type within a transaction.
func (t *Tx) GetMediaByTMDB(tmdbID int64, typ Type) (*Media, error) {
	return getMediaByTMDB(t.tx, tmdbID, typ)
}

func updateMedia(q querier, m *Media) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE media SET media_type = ?, tmdb_id = ?, tvdb_id = ?, imdb_id = ?, status = ?, status_4k = ?,
			service_id = ?, service_id_4k = ?, external_service_id = ?, external_service_id_4k = ?,
			external_service_slug = ?, external_service_slug_4k = ?, rating_key = ?, rating_key_4k = ?,
			media_added_at = ?, last_season_change = ?, updated_at = ?
		WHERE id = ?`,
		m.Type, m.TMDBID, m.TVDBID, m.IMDBID, m.Status, m.Status4K,
		m.Standard.ServiceID, m.FourK.ServiceID,
		m.Standard.ExternalServiceID, m.FourK.ExternalServiceID,
		m.Standard.ExternalServiceSlug, m.FourK.ExternalServiceSlug,
		m.Standard.RatingKey, m.FourK.RatingKey,
		m.MediaAddedAt, m.LastSeasonChange, now, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update media %d: %w", m.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	m.UpdatedAt = now
	return nil
}

// UpdateMedia writes every column of m.
func (s *Store) UpdateMedia(m *Media) error { return updateMedia(s.db, m) }

// UpdateMedia writes every column of m within a transaction.
func (t *Tx) UpdateMedia(m *Media) error { return updateMedia(t.tx, m) }

func listAvailableMedia(q querier, afterID int64, limit int) ([]*Media, error) {
	rows, err := q.Query(`
		SELECT `+mediaColumns+` FROM media
		WHERE id > ?
		  AND (status IN (?, ?) OR status_4k IN (?, ?))
		ORDER BY id
		LIMIT ?`,
		afterID,
		StatusAvailable, StatusPartiallyAvailable,
		StatusAvailable, StatusPartiallyAvailable,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list available media: %w", err)
	}
	defer rows.Close()

	var out []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAvailableMedia returns up to limit media rows with id > afterID whose
// standard or 4K status is available or partially available, ordered by id.
// Callers page by passing the last id they saw.
func (s *Store) ListAvailableMedia(afterID int64, limit int) ([]*Media, error) {
	return listAvailableMedia(s.db, afterID, limit)
}
