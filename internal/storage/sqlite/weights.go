package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/grubapp/grub/internal/storage"
)

const weightColumns = `id, uuid, date, weight_kg, source, notes, created_at, updated_at`

func scanWeight(row interface{ Scan(...any) error }) (*storage.WeightEntry, error) {
	var w storage.WeightEntry
	err := row.Scan(&w.ID, &w.UUID, &w.Date, &w.WeightKg, &w.Source, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpsertWeight writes the measurement for a date, replacing an existing
// one while keeping its uuid and created_at.
func (s *Store) UpsertWeight(ctx context.Context, e storage.NewWeightEntry) (*storage.WeightEntry, error) {
	now := nowRFC3339()
	source := e.Source
	if source == "" {
		source = "manual"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weight_entries (uuid, date, weight_kg, source, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			source = excluded.source,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, newUUID(), e.Date, e.WeightKg, source, e.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert weight entry: %w", err)
	}
	return s.GetWeight(ctx, e.Date)
}

func (s *Store) GetWeight(ctx context.Context, date string) (*storage.WeightEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+weightColumns+" FROM weight_entries WHERE date = ?", date)
	w, err := scanWeight(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight entry: %w", err)
	}
	return w, nil
}

// WeightHistory returns entries newest first, windowed to the optional
// start/end dates; limit <= 0 means no limit.
func (s *Store) WeightHistory(ctx context.Context, start, end string, limit int64) ([]storage.WeightEntry, error) {
	query := "SELECT " + weightColumns + " FROM weight_entries"
	where := []string{}
	args := []any{}
	if start != "" {
		where = append(where, "date >= ?")
		args = append(args, start)
	}
	if end != "" {
		where = append(where, "date <= ?")
		args = append(args, end)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list weight entries: %w", err)
	}
	defer rows.Close()

	entries := []storage.WeightEntry{}
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weight entry: %w", err)
		}
		entries = append(entries, *w)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteWeight(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM weight_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete weight entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
