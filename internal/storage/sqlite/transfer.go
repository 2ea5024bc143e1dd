package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grubapp/grub/internal/storage"
)

// MergeImport applies a version >= 2 export document with the same
// last-writer-wins semantics as a sync push. A legacy singleton target
// is expanded to every weekday first.
func (s *Store) MergeImport(ctx context.Context, data *storage.ExportData) (*storage.ImportSummary, error) {
	targets := data.Targets
	if len(targets) == 0 && data.Target != nil {
		for day := int64(0); day < 7; day++ {
			targets = append(targets, storage.ExportTarget{
				DayOfWeek:  day,
				Calories:   data.Target.Calories,
				ProteinPct: data.Target.ProteinPct,
				CarbsPct:   data.Target.CarbsPct,
				FatPct:     data.Target.FatPct,
				UpdatedAt:  data.Target.UpdatedAt,
			})
		}
	}

	return s.merge(ctx, mergeInput{
		foods:             data.Foods,
		mealEntries:       data.MealEntries,
		recipes:           data.Recipes,
		recipeIngredients: data.RecipeIngredients,
		targets:           targets,
		weightEntries:     data.WeightEntries,
		tombstones:        data.Tombstones,
	})
}

// ImportV1 restores a version 1 export. Version 1 predates sync, so
// rows are matched by their original numeric ids instead of uuids.
func (s *Store) ImportV1(ctx context.Context, data *storage.ExportData) (*storage.ImportSummary, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	summary := &storage.ImportSummary{}
	now := nowRFC3339()

	for _, f := range data.Foods {
		applied, err := importV1Food(ctx, tx, f, now)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.FoodsImported++
		}
	}

	for _, e := range data.MealEntries {
		id := e.UUID
		if id == "" {
			id = newUUID()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO meal_entries (id, date, meal_type, food_id, serving_g,
				display_unit, display_quantity, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.Date, e.MealType, e.FoodID, e.ServingG, e.DisplayUnit, e.DisplayQuantity,
			e.CreatedAt, id, now)
		if err != nil {
			return nil, fmt.Errorf("failed to import meal entry: %w", err)
		}
		summary.MealEntriesImported++
	}

	for _, r := range data.Recipes {
		id := r.UUID
		if id == "" {
			id = newUUID()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO recipes (id, food_id, portions, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.ID, r.FoodID, r.Portions, r.CreatedAt, id, now)
		if err != nil {
			return nil, fmt.Errorf("failed to import recipe: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM recipe_ingredients WHERE recipe_id = ?", r.ID); err != nil {
			return nil, fmt.Errorf("failed to clear imported recipe ingredients: %w", err)
		}
		summary.RecipesImported++
	}

	for _, ing := range data.RecipeIngredients {
		id := ing.UUID
		if id == "" {
			id = newUUID()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO recipe_ingredients (id, recipe_id, food_id, quantity_g, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ing.ID, ing.RecipeID, ing.FoodID, ing.QuantityG, id, now)
		if err != nil {
			return nil, fmt.Errorf("failed to import recipe ingredient: %w", err)
		}
		summary.RecipeIngredientsImported++
	}

	targets := data.Targets
	if len(targets) == 0 && data.Target != nil {
		for day := int64(0); day < 7; day++ {
			targets = append(targets, storage.ExportTarget{
				DayOfWeek:  day,
				Calories:   data.Target.Calories,
				ProteinPct: data.Target.ProteinPct,
				CarbsPct:   data.Target.CarbsPct,
				FatPct:     data.Target.FatPct,
				UpdatedAt:  data.Target.UpdatedAt,
			})
		}
	}
	for _, t := range targets {
		updatedAt := now
		if t.UpdatedAt != nil {
			updatedAt = *t.UpdatedAt
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO targets (day_of_week, calories, protein_pct, carbs_pct, fat_pct, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, t.DayOfWeek, t.Calories, t.ProteinPct, t.CarbsPct, t.FatPct, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to import target: %w", err)
		}
		summary.TargetsImported++
	}

	for _, w := range data.WeightEntries {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO weight_entries (uuid, date, weight_kg, source, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.UUID, w.Date, w.WeightKg, w.Source, w.Notes, w.CreatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("failed to import weight entry: %w", err)
		}
		summary.WeightEntriesImported++
	}

	// Recipe foods may have arrived with stale macros.
	rows, err := tx.QueryContext(ctx, "SELECT id FROM recipes")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for recompute: %w", err)
	}
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := recomputeRecipeFood(ctx, tx, id); err != nil && err != ErrNotFound {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}

// importV1Food updates an existing food by id or inserts it with the
// original id. Foods whose barcode already belongs to another row are
// skipped.
func importV1Food(ctx context.Context, q dbtx, f storage.Food, now string) (bool, error) {
	if f.Barcode != nil && *f.Barcode != "" {
		var existingID int64
		err := q.QueryRowContext(ctx,
			"SELECT id FROM foods WHERE barcode = ? AND id != ?",
			*f.Barcode, f.ID).Scan(&existingID)
		if err == nil {
			return false, nil
		}
		if err != sql.ErrNoRows {
			return false, fmt.Errorf("failed to check barcode conflict: %w", err)
		}
	}

	_, err := getFoodByID(ctx, q, f.ID)
	if err != nil && err != ErrNotFound {
		return false, err
	}

	if err == ErrNotFound {
		id := f.UUID
		if id == "" {
			id = newUUID()
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO foods (id, name, brand, barcode, calories_per_100g, protein_per_100g,
				carbs_per_100g, fat_per_100g, default_serving_g, source, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, f.Name, f.Brand, f.Barcode, f.CaloriesPer100g, f.ProteinPer100g,
			f.CarbsPer100g, f.FatPer100g, f.DefaultServingG, f.Source, f.CreatedAt, id, now)
		if err != nil {
			return false, fmt.Errorf("failed to import food: %w", err)
		}
		return true, nil
	}

	_, err = q.ExecContext(ctx, `
		UPDATE foods SET name = ?, brand = ?, barcode = ?, calories_per_100g = ?,
			protein_per_100g = ?, carbs_per_100g = ?, fat_per_100g = ?,
			default_serving_g = ?, source = ?, updated_at = ?
		WHERE id = ?
	`, f.Name, f.Brand, f.Barcode, f.CaloriesPer100g, f.ProteinPer100g,
		f.CarbsPer100g, f.FatPer100g, f.DefaultServingG, f.Source, now, f.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update imported food: %w", err)
	}
	return true, nil
}
