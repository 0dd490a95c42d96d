package media

import (
	"fmt"
	"time"
)

func scanUser(row scanner) (*User, error) {
	u := &User{}
	var token *string
	if err := row.Scan(&u.ID, &u.DisplayName, &token, &u.Permissions, &u.CreatedAt); err != nil {
		return nil, err
	}
	if token != nil {
		u.PlexToken = *token
	}
	return u, nil
}

// AddUser inserts a user. Sets ID and CreatedAt.
func (s *Store) AddUser(u *User) error {
	now := time.Now()
	var token *string
	if u.PlexToken != "" {
		token = &u.PlexToken
	}
	result, err := s.db.Exec(`
		INSERT INTO users (display_name, plex_token, permissions, created_at)
		VALUES (?, ?, ?, ?)`,
		u.DisplayName, token, u.Permissions, now,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT id, display_name, plex_token, permissions, created_at
		FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapSQLiteError(err))
	}
	return u, nil
}

// AdminUser returns the owner account, the user with the lowest id.
// Its Plex token is the identity used for library scans and availability sync.
func (s *Store) AdminUser() (*User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT id, display_name, plex_token, permissions, created_at
		FROM users ORDER BY id LIMIT 1`))
	if err != nil {
		return nil, fmt.Errorf("get admin user: %w", mapSQLiteError(err))
	}
	return u, nil
}

// DeleteUser removes a user row. Callers remove the user's requests first so
// status cascades run; anything left is dropped by the foreign key.
func (s *Store) DeleteUser(id int64) error {
	result, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, mapSQLiteError(err))
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
