package media

import (
	"fmt"
	"time"
)

func addSeason(q querier, s *Season) error {
	if s.Status == "" {
		s.Status = StatusUnknown
	}
	if s.Status4K == "" {
		s.Status4K = StatusUnknown
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO season (media_id, season_number, status, status_4k, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.MediaID, s.SeasonNumber, s.Status, s.Status4K, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert season: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// AddSeason inserts a season for an existing media row.
func (s *Store) AddSeason(season *Season) error { return addSeason(s.db, season) }

// AddSeason inserts a season within a transaction.
func (t *Tx) AddSeason(season *Season) error { return addSeason(t.tx, season) }

func listSeasons(q querier, mediaID int64) ([]*Season, error) {
	rows, err := q.Query(`
		SELECT id, media_id, season_number, status, status_4k, created_at, updated_at
		FROM season WHERE media_id = ? ORDER BY season_number`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list seasons for media %d: %w", mediaID, err)
	}
	defer rows.Close()

	var seasons []*Season
	for rows.Next() {
		s := &Season{}
		if err := rows.Scan(&s.ID, &s.MediaID, &s.SeasonNumber, &s.Status, &s.Status4K, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// ListSeasons returns the seasons of a media row ordered by season number.
func (s *Store) ListSeasons(mediaID int64) ([]*Season, error) { return listSeasons(s.db, mediaID) }

// ListSeasons returns the seasons of a media row within a transaction.
func (t *Tx) ListSeasons(mediaID int64) ([]*Season, error) { return listSeasons(t.tx, mediaID) }

func updateSeason(q querier, s *Season) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE season SET status = ?, status_4k = ?, updated_at = ?
		WHERE id = ?`,
		s.Status, s.Status4K, now, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update season %d: %w", s.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.UpdatedAt = now
	return nil
}

// UpdateSeason writes the statuses of an existing season.
func (s *Store) UpdateSeason(season *Season) error { return updateSeason(s.db, season) }

// UpdateSeason writes the statuses of an existing season within a transaction.
func (t *Tx) UpdateSeason(season *Season) error { return updateSeason(t.tx, season) }

func upsertSeason(q querier, s *Season) error {
	if s.Status == "" {
		s.Status = StatusUnknown
	}
	if s.Status4K == "" {
		s.Status4K = StatusUnknown
	}
	now := time.Now()
	_, err := q.Exec(`
		INSERT INTO season (media_id, season_number, status, status_4k, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(media_id, season_number) DO UPDATE SET
			status = excluded.status,
			status_4k = excluded.status_4k,
			updated_at = excluded.updated_at`,
		s.MediaID, s.SeasonNumber, s.Status, s.Status4K, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert season %d of media %d: %w", s.SeasonNumber, s.MediaID, mapSQLiteError(err))
	}
	err = q.QueryRow(`SELECT id, created_at FROM season WHERE media_id = ? AND season_number = ?`,
		s.MediaID, s.SeasonNumber).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("reload season: %w", mapSQLiteError(err))
	}
	s.UpdatedAt = now
	return nil
}

// UpsertSeason inserts the season or overwrites the statuses of the existing
// (media, season number) row. Sets ID.
func (s *Store) UpsertSeason(season *Season) error { return upsertSeason(s.db, season) }

// UpsertSeason inserts or updates a season within a transaction.
func (t *Tx) UpsertSeason(season *Season) error { return upsertSeason(t.tx, season) }
