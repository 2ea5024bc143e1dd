package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grubapp/grub/internal/storage"
)

// SetTarget upserts the target for one weekday (Monday=0 .. Sunday=6).
func (s *Store) SetTarget(ctx context.Context, t storage.ExportTarget) (*storage.DailyTarget, error) {
	updatedAt := nowRFC3339()
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO targets (day_of_week, calories, protein_pct, carbs_pct, fat_pct, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.DayOfWeek, t.Calories, t.ProteinPct, t.CarbsPct, t.FatPct, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set target: %w", err)
	}
	return s.GetTarget(ctx, t.DayOfWeek)
}

// GetTarget returns the weekday's target or ErrNotFound.
func (s *Store) GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT day_of_week, calories, protein_pct, carbs_pct, fat_pct
		FROM targets WHERE day_of_week = ?
	`, dayOfWeek)

	var day, calories int64
	var proteinPct, carbsPct, fatPct *int64
	err := row.Scan(&day, &calories, &proteinPct, &carbsPct, &fatPct)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}

	t := storage.NewDailyTarget(day, calories, proteinPct, carbsPct, fatPct)
	return &t, nil
}

// AllTargets returns the set weekdays in day order.
func (s *Store) AllTargets(ctx context.Context) ([]storage.DailyTarget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_of_week, calories, protein_pct, carbs_pct, fat_pct
		FROM targets ORDER BY day_of_week
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	targets := []storage.DailyTarget{}
	for rows.Next() {
		var day, calories int64
		var proteinPct, carbsPct, fatPct *int64
		if err := rows.Scan(&day, &calories, &proteinPct, &carbsPct, &fatPct); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, storage.NewDailyTarget(day, calories, proteinPct, carbsPct, fatPct))
	}
	return targets, rows.Err()
}

func (s *Store) ClearTarget(ctx context.Context, dayOfWeek int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM targets WHERE day_of_week = ?", dayOfWeek)
	if err != nil {
		return false, fmt.Errorf("failed to clear target: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ClearAllTargets(ctx context.Context) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM targets")
	if err != nil {
		return false, fmt.Errorf("failed to clear targets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
