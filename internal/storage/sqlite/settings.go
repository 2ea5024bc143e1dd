package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// GetOrCreateDeviceID returns the stable device identity used in
// exports, generating and persisting it on first call.
func (s *Store) GetOrCreateDeviceID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM config WHERE key = 'device_id'").Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id = newUUID()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO config (key, value) VALUES ('device_id', ?)", id); err != nil {
		return "", fmt.Errorf("failed to store device id: %w", err)
	}
	return id, nil
}

// SetUserSetting upserts a key/value pair.
func (s *Store) SetUserSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, nowRFC3339())
	if err != nil {
		return fmt.Errorf("failed to set user setting: %w", err)
	}
	return nil
}

// GetUserSetting returns the value for key or ErrNotFound.
func (s *Store) GetUserSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM user_settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user setting: %w", err)
	}
	return value, nil
}

// DeleteUserSetting reports whether a row was removed.
func (s *Store) DeleteUserSetting(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_settings WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("failed to delete user setting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
