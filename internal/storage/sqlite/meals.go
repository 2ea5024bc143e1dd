package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/grubapp/grub/internal/storage"
)

// mealEntryColumns projects the joined food name/brand and the macro
// amounts scaled to the logged serving.
const mealEntryColumns = `m.id, m.uuid, m.date, m.meal_type, m.food_id, m.serving_g,
	m.display_unit, m.display_quantity, m.created_at, COALESCE(m.updated_at, m.created_at),
	f.name, f.brand,
	f.calories_per_100g * m.serving_g / 100.0,
	f.protein_per_100g * m.serving_g / 100.0,
	f.carbs_per_100g * m.serving_g / 100.0,
	f.fat_per_100g * m.serving_g / 100.0`

func scanMealEntry(row interface{ Scan(...any) error }) (*storage.MealEntry, error) {
	var e storage.MealEntry
	err := row.Scan(
		&e.ID,
		&e.UUID,
		&e.Date,
		&e.MealType,
		&e.FoodID,
		&e.ServingG,
		&e.DisplayUnit,
		&e.DisplayQuantity,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.FoodName,
		&e.FoodBrand,
		&e.Calories,
		&e.Protein,
		&e.Carbs,
		&e.Fat,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) InsertMealEntry(ctx context.Context, e storage.NewMealEntry) (*storage.MealEntry, error) {
	now := nowRFC3339()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO meal_entries (date, meal_type, food_id, serving_g,
			display_unit, display_quantity, created_at, uuid, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Date, e.MealType, e.FoodID, e.ServingG, e.DisplayUnit, e.DisplayQuantity,
		now, newUUID(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meal entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read meal entry id: %w", err)
	}
	return s.GetMealEntry(ctx, id)
}

func (s *Store) GetMealEntry(ctx context.Context, id int64) (*storage.MealEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mealEntryColumns+` FROM meal_entries m
		JOIN foods f ON f.id = m.food_id
		WHERE m.id = ?
	`, id)

	e, err := scanMealEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal entry: %w", err)
	}
	return e, nil
}

// UpdateMealEntry patches only the provided fields and bumps
// updated_at. Returns ErrNotFound when the entry does not exist.
func (s *Store) UpdateMealEntry(ctx context.Context, id int64, upd storage.UpdateMealEntry) (*storage.MealEntry, error) {
	sets := []string{}
	args := []any{}

	if upd.ServingG != nil {
		sets = append(sets, "serving_g = ?")
		args = append(args, *upd.ServingG)
	}
	if upd.MealType != nil {
		sets = append(sets, "meal_type = ?")
		args = append(args, *upd.MealType)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *upd.Date)
	}
	if upd.SetDisplayUnit {
		sets = append(sets, "display_unit = ?")
		args = append(args, upd.DisplayUnit)
	}
	if upd.SetDisplayQuantity {
		sets = append(sets, "display_quantity = ?")
		args = append(args, upd.DisplayQuantity)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, nowRFC3339())
		args = append(args, id)

		res, err := s.db.ExecContext(ctx,
			"UPDATE meal_entries SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update meal entry: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetMealEntry(ctx, id)
}

// DeleteMealEntry removes the entry, recording a tombstone in the same
// transaction so the deletion propagates on sync.
func (s *Store) DeleteMealEntry(ctx context.Context, id int64) (bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var uuid string
	err = tx.QueryRowContext(ctx, "SELECT uuid FROM meal_entries WHERE id = ?", id).Scan(&uuid)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up meal entry: %w", err)
	}

	tombstone := storage.Tombstone{UUID: uuid, TableName: "meal_entries", DeletedAt: nowRFC3339()}
	if err := recordTombstone(ctx, tx, tombstone); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meal_entries WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete meal entry: %w", err)
	}
	return true, tx.Commit()
}

// EntriesForDate returns the day's entries in insertion order.
func (s *Store) EntriesForDate(ctx context.Context, date string) ([]storage.MealEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mealEntryColumns+` FROM meal_entries m
		JOIN foods f ON f.id = m.food_id
		WHERE m.date = ?
		ORDER BY m.id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal entries: %w", err)
	}
	defer rows.Close()

	entries := []storage.MealEntry{}
	for rows.Next() {
		e, err := scanMealEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
