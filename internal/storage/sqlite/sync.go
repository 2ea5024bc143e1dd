package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grubapp/grub/internal/storage"
)

// sinceClause builds the delta filter; a nil since means a full dump.
func sinceClause(column string, since *string) (string, []any) {
	if since == nil {
		return "", nil
	}
	return " WHERE COALESCE(" + column + ", '') > ?", []any{*since}
}

// FoodsSince returns foods changed after since (all foods when nil).
func (s *Store) FoodsSince(ctx context.Context, since *string) ([]storage.Food, error) {
	where, args := sinceClause("updated_at", since)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+foodColumns+" FROM foods"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods for sync: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

func (s *Store) MealEntriesSince(ctx context.Context, since *string) ([]storage.ExportMealEntry, error) {
	where, args := sinceClause("m.updated_at", since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.uuid, m.date, m.meal_type, m.food_id, m.serving_g,
			m.display_unit, m.display_quantity, m.created_at,
			COALESCE(m.updated_at, m.created_at), f.uuid
		FROM meal_entries m
		JOIN foods f ON f.id = m.food_id`+where+" ORDER BY m.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal entries for sync: %w", err)
	}
	defer rows.Close()

	entries := []storage.ExportMealEntry{}
	for rows.Next() {
		var e storage.ExportMealEntry
		err := rows.Scan(&e.ID, &e.UUID, &e.Date, &e.MealType, &e.FoodID, &e.ServingG,
			&e.DisplayUnit, &e.DisplayQuantity, &e.CreatedAt, &e.UpdatedAt, &e.FoodUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal entry for sync: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) RecipesSince(ctx context.Context, since *string) ([]storage.ExportRecipe, error) {
	where, args := sinceClause("r.updated_at", since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.uuid, r.food_id, r.portions, r.created_at,
			COALESCE(r.updated_at, r.created_at), f.uuid
		FROM recipes r
		JOIN foods f ON f.id = r.food_id`+where+" ORDER BY r.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for sync: %w", err)
	}
	defer rows.Close()

	recipes := []storage.ExportRecipe{}
	for rows.Next() {
		var r storage.ExportRecipe
		err := rows.Scan(&r.ID, &r.UUID, &r.FoodID, &r.Portions, &r.CreatedAt, &r.UpdatedAt, &r.FoodUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe for sync: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *Store) RecipeIngredientsSince(ctx context.Context, since *string) ([]storage.ExportRecipeIngredient, error) {
	where, args := sinceClause("i.updated_at", since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.uuid, i.recipe_id, i.food_id, i.quantity_g, r.uuid, f.uuid
		FROM recipe_ingredients i
		JOIN recipes r ON r.id = i.recipe_id
		JOIN foods f ON f.id = i.food_id`+where+" ORDER BY i.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients for sync: %w", err)
	}
	defer rows.Close()

	ingredients := []storage.ExportRecipeIngredient{}
	for rows.Next() {
		var ing storage.ExportRecipeIngredient
		err := rows.Scan(&ing.ID, &ing.UUID, &ing.RecipeID, &ing.FoodID, &ing.QuantityG,
			&ing.RecipeUUID, &ing.FoodUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient for sync: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (s *Store) TargetsSince(ctx context.Context, since *string) ([]storage.ExportTarget, error) {
	where, args := sinceClause("updated_at", since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_of_week, calories, protein_pct, carbs_pct, fat_pct, updated_at
		FROM targets`+where+" ORDER BY day_of_week", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets for sync: %w", err)
	}
	defer rows.Close()

	targets := []storage.ExportTarget{}
	for rows.Next() {
		var t storage.ExportTarget
		err := rows.Scan(&t.DayOfWeek, &t.Calories, &t.ProteinPct, &t.CarbsPct, &t.FatPct, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan target for sync: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *Store) WeightEntriesSince(ctx context.Context, since *string) ([]storage.ExportWeightEntry, error) {
	where, args := sinceClause("updated_at", since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT uuid, date, weight_kg, source, notes, created_at, updated_at
		FROM weight_entries`+where+" ORDER BY date", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list weight entries for sync: %w", err)
	}
	defer rows.Close()

	entries := []storage.ExportWeightEntry{}
	for rows.Next() {
		var e storage.ExportWeightEntry
		err := rows.Scan(&e.UUID, &e.Date, &e.WeightKg, &e.Source, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weight entry for sync: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) TombstonesSince(ctx context.Context, since *string) ([]storage.Tombstone, error) {
	query := "SELECT uuid, table_name, deleted_at FROM sync_tombstones"
	args := []any{}
	if since != nil {
		query += " WHERE deleted_at > ?"
		args = append(args, *since)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}
	defer rows.Close()

	tombstones := []storage.Tombstone{}
	for rows.Next() {
		var t storage.Tombstone
		if err := rows.Scan(&t.UUID, &t.TableName, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tombstone: %w", err)
		}
		tombstones = append(tombstones, t)
	}
	return tombstones, rows.Err()
}

// recordTombstone stores a deletion marker for sync propagation.
func recordTombstone(ctx context.Context, q dbtx, t storage.Tombstone) error {
	var exists int64
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sync_tombstones WHERE uuid = ? AND table_name = ?",
		t.UUID, t.TableName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check tombstone: %w", err)
	}
	if exists > 0 {
		return nil
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO sync_tombstones (uuid, table_name, deleted_at) VALUES (?, ?, ?)",
		t.UUID, t.TableName, t.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to record tombstone: %w", err)
	}
	return nil
}

// ChangesSince assembles the delta payload stamped with the server
// clock.
func (s *Store) ChangesSince(ctx context.Context, since *string) (*storage.SyncPayload, error) {
	payload := &storage.SyncPayload{ServerTimestamp: nowRFC3339()}

	var err error
	if payload.Foods, err = s.FoodsSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.MealEntries, err = s.MealEntriesSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.Recipes, err = s.RecipesSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.RecipeIngredients, err = s.RecipeIngredientsSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.Targets, err = s.TargetsSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.WeightEntries, err = s.WeightEntriesSince(ctx, since); err != nil {
		return nil, err
	}
	if payload.Tombstones, err = s.TombstonesSince(ctx, since); err != nil {
		return nil, err
	}
	return payload, nil
}

// mergeInput is the common shape behind sync pushes and merge imports.
type mergeInput struct {
	foods             []storage.Food
	mealEntries       []storage.ExportMealEntry
	recipes           []storage.ExportRecipe
	recipeIngredients []storage.ExportRecipeIngredient
	targets           []storage.ExportTarget
	weightEntries     []storage.ExportWeightEntry
	tombstones        []storage.Tombstone
}

// ApplyRemoteChanges merges a pushed payload using last-writer-wins on
// updated_at, resolving foreign keys through uuids.
func (s *Store) ApplyRemoteChanges(ctx context.Context, payload *storage.SyncPayload) error {
	_, err := s.merge(ctx, mergeInput{
		foods:             payload.Foods,
		mealEntries:       payload.MealEntries,
		recipes:           payload.Recipes,
		recipeIngredients: payload.RecipeIngredients,
		targets:           payload.Targets,
		weightEntries:     payload.WeightEntries,
		tombstones:        payload.Tombstones,
	})
	return err
}

func (s *Store) merge(ctx context.Context, in mergeInput) (*storage.ImportSummary, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	summary := &storage.ImportSummary{}

	// Step 1: foods. Remember the uuid -> local id mapping for foreign
	// key resolution below.
	foodIDs := map[string]int64{}
	for _, f := range in.foods {
		id, applied, err := mergeFood(ctx, tx, f)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			foodIDs[f.UUID] = id
		}
		if applied {
			summary.FoodsImported++
		}
	}

	resolveFood := func(uuid string) (int64, bool, error) {
		if id, ok := foodIDs[uuid]; ok {
			return id, true, nil
		}
		f, err := getFoodBy(ctx, tx, "uuid = ?", uuid)
		if err == ErrNotFound {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		foodIDs[uuid] = f.ID
		return f.ID, true, nil
	}

	// Step 2: meal entries. Entries whose food uuid cannot be resolved
	// are skipped rather than failing the whole merge.
	for _, e := range in.mealEntries {
		foodID, ok, err := resolveFood(e.FoodUUID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		applied, err := mergeMealEntry(ctx, tx, e, foodID)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.MealEntriesImported++
		}
	}

	// Step 3: recipes.
	recipeIDs := map[string]int64{}
	for _, r := range in.recipes {
		foodID, ok, err := resolveFood(r.FoodUUID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		id, applied, err := mergeRecipe(ctx, tx, r, foodID)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			recipeIDs[r.UUID] = id
		}
		if applied {
			summary.RecipesImported++
		}
	}

	resolveRecipe := func(uuid string) (int64, bool, error) {
		if id, ok := recipeIDs[uuid]; ok {
			return id, true, nil
		}
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM recipes WHERE uuid = ?", uuid).Scan(&id)
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("failed to resolve recipe uuid: %w", err)
		}
		recipeIDs[uuid] = id
		return id, true, nil
	}

	// Step 4: ingredients carry no timestamps worth comparing; the
	// incoming row always wins. Affected recipes are recomputed after.
	recompute := map[int64]bool{}
	for _, ing := range in.recipeIngredients {
		recipeID, ok, err := resolveRecipe(ing.RecipeUUID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		foodID, ok, err := resolveFood(ing.FoodUUID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		applied, err := mergeRecipeIngredient(ctx, tx, ing, recipeID, foodID)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.RecipeIngredientsImported++
		}
		recompute[recipeID] = true
	}
	for recipeID := range recompute {
		if err := recomputeRecipeFood(ctx, tx, recipeID); err != nil && err != ErrNotFound {
			return nil, err
		}
	}

	// Step 5: targets, last writer wins per weekday. A missing incoming
	// timestamp wins and is stamped with now.
	for _, t := range in.targets {
		applied, err := mergeTarget(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.TargetsImported++
		}
	}

	// Step 6: tombstones are applied, then stored for propagation even
	// when they deleted nothing locally.
	tombstoneRecompute := map[int64]bool{}
	for _, ts := range in.tombstones {
		applied, err := applyTombstone(ctx, tx, ts, tombstoneRecompute)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.TombstonesProcessed++
		}
		if err := recordTombstone(ctx, tx, ts); err != nil {
			return nil, err
		}
	}
	for recipeID := range tombstoneRecompute {
		if err := recomputeRecipeFood(ctx, tx, recipeID); err != nil && err != ErrNotFound {
			return nil, err
		}
	}

	// Step 7: weight entries, last writer wins per date.
	for _, w := range in.weightEntries {
		applied, err := mergeWeightEntry(ctx, tx, w)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.WeightEntriesImported++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit merge: %w", err)
	}
	return summary, nil
}

func mergeFood(ctx context.Context, q dbtx, f storage.Food) (int64, bool, error) {
	local, err := getFoodBy(ctx, q, "uuid = ?", f.UUID)
	if err != nil && err != ErrNotFound {
		return 0, false, err
	}

	if err == ErrNotFound {
		res, err := q.ExecContext(ctx, `
			INSERT INTO foods (name, brand, barcode, calories_per_100g, protein_per_100g,
				carbs_per_100g, fat_per_100g, default_serving_g, source, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.Name, f.Brand, f.Barcode, f.CaloriesPer100g, f.ProteinPer100g,
			f.CarbsPer100g, f.FatPer100g, f.DefaultServingG, f.Source,
			f.CreatedAt, f.UUID, f.UpdatedAt)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert synced food: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read synced food id: %w", err)
		}
		return id, true, nil
	}

	if f.UpdatedAt > local.UpdatedAt {
		_, err := q.ExecContext(ctx, `
			UPDATE foods SET name = ?, brand = ?, barcode = ?, calories_per_100g = ?,
				protein_per_100g = ?, carbs_per_100g = ?, fat_per_100g = ?,
				default_serving_g = ?, source = ?, updated_at = ?
			WHERE id = ?
		`, f.Name, f.Brand, f.Barcode, f.CaloriesPer100g, f.ProteinPer100g,
			f.CarbsPer100g, f.FatPer100g, f.DefaultServingG, f.Source, f.UpdatedAt, local.ID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to update synced food: %w", err)
		}
		return local.ID, true, nil
	}
	return local.ID, false, nil
}

func mergeMealEntry(ctx context.Context, q dbtx, e storage.ExportMealEntry, foodID int64) (bool, error) {
	var localID int64
	var localUpdated string
	err := q.QueryRowContext(ctx,
		"SELECT id, COALESCE(updated_at, '') FROM meal_entries WHERE uuid = ?",
		e.UUID).Scan(&localID, &localUpdated)
	if err == sql.ErrNoRows {
		_, err := q.ExecContext(ctx, `
			INSERT INTO meal_entries (date, meal_type, food_id, serving_g,
				display_unit, display_quantity, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.Date, e.MealType, foodID, e.ServingG, e.DisplayUnit, e.DisplayQuantity,
			e.CreatedAt, e.UUID, e.UpdatedAt)
		if err != nil {
			return false, fmt.Errorf("failed to insert synced meal entry: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up synced meal entry: %w", err)
	}

	if e.UpdatedAt > localUpdated {
		_, err := q.ExecContext(ctx, `
			UPDATE meal_entries SET date = ?, meal_type = ?, food_id = ?, serving_g = ?,
				display_unit = ?, display_quantity = ?, updated_at = ?
			WHERE id = ?
		`, e.Date, e.MealType, foodID, e.ServingG, e.DisplayUnit, e.DisplayQuantity,
			e.UpdatedAt, localID)
		if err != nil {
			return false, fmt.Errorf("failed to update synced meal entry: %w", err)
		}
		return true, nil
	}
	return false, nil
}

func mergeRecipe(ctx context.Context, q dbtx, r storage.ExportRecipe, foodID int64) (int64, bool, error) {
	var localID int64
	var localUpdated string
	err := q.QueryRowContext(ctx,
		"SELECT id, COALESCE(updated_at, '') FROM recipes WHERE uuid = ?",
		r.UUID).Scan(&localID, &localUpdated)
	if err == sql.ErrNoRows {
		res, err := q.ExecContext(ctx, `
			INSERT INTO recipes (food_id, portions, created_at, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, foodID, r.Portions, r.CreatedAt, r.UUID, r.UpdatedAt)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert synced recipe: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read synced recipe id: %w", err)
		}
		return id, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up synced recipe: %w", err)
	}

	if r.UpdatedAt > localUpdated {
		_, err := q.ExecContext(ctx,
			"UPDATE recipes SET food_id = ?, portions = ?, updated_at = ? WHERE id = ?",
			foodID, r.Portions, r.UpdatedAt, localID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to update synced recipe: %w", err)
		}
		return localID, true, nil
	}
	return localID, false, nil
}

func mergeRecipeIngredient(ctx context.Context, q dbtx, ing storage.ExportRecipeIngredient, recipeID, foodID int64) (bool, error) {
	var localID int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM recipe_ingredients WHERE uuid = ?", ing.UUID).Scan(&localID)
	if err == sql.ErrNoRows {
		_, err := q.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, food_id, quantity_g, uuid, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, recipeID, foodID, ing.QuantityG, ing.UUID, nowRFC3339())
		if err != nil {
			return false, fmt.Errorf("failed to insert synced recipe ingredient: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up synced recipe ingredient: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE recipe_ingredients SET recipe_id = ?, food_id = ?, quantity_g = ?, updated_at = ?
		WHERE id = ?
	`, recipeID, foodID, ing.QuantityG, nowRFC3339(), localID)
	if err != nil {
		return false, fmt.Errorf("failed to update synced recipe ingredient: %w", err)
	}
	return true, nil
}

func mergeTarget(ctx context.Context, q dbtx, t storage.ExportTarget) (bool, error) {
	var localUpdated *string
	err := q.QueryRowContext(ctx,
		"SELECT updated_at FROM targets WHERE day_of_week = ?", t.DayOfWeek).Scan(&localUpdated)
	exists := true
	if err == sql.ErrNoRows {
		exists = false
	} else if err != nil {
		return false, fmt.Errorf("failed to look up target: %w", err)
	}

	shouldWrite := !exists || localUpdated == nil || t.UpdatedAt == nil ||
		*t.UpdatedAt > *localUpdated
	if !shouldWrite {
		return false, nil
	}

	updatedAt := nowRFC3339()
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}
	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO targets (day_of_week, calories, protein_pct, carbs_pct, fat_pct, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.DayOfWeek, t.Calories, t.ProteinPct, t.CarbsPct, t.FatPct, updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to write synced target: %w", err)
	}
	return true, nil
}

func mergeWeightEntry(ctx context.Context, q dbtx, w storage.ExportWeightEntry) (bool, error) {
	var localID int64
	var localUpdated string
	err := q.QueryRowContext(ctx,
		"SELECT id, updated_at FROM weight_entries WHERE date = ?", w.Date).Scan(&localID, &localUpdated)
	if err == sql.ErrNoRows {
		_, err := q.ExecContext(ctx, `
			INSERT INTO weight_entries (uuid, date, weight_kg, source, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.UUID, w.Date, w.WeightKg, w.Source, w.Notes, w.CreatedAt, w.UpdatedAt)
		if err != nil {
			return false, fmt.Errorf("failed to insert synced weight entry: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up synced weight entry: %w", err)
	}

	if w.UpdatedAt > localUpdated {
		_, err := q.ExecContext(ctx, `
			UPDATE weight_entries SET uuid = ?, weight_kg = ?, source = ?, notes = ?, updated_at = ?
			WHERE id = ?
		`, w.UUID, w.WeightKg, w.Source, w.Notes, w.UpdatedAt, localID)
		if err != nil {
			return false, fmt.Errorf("failed to update synced weight entry: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// applyTombstone deletes the referenced row when the tombstone is newer
// than the local copy. Deleted recipe ingredients queue their recipe
// for recomputation. Unknown tables are ignored.
func applyTombstone(ctx context.Context, q dbtx, ts storage.Tombstone, recompute map[int64]bool) (bool, error) {
	switch ts.TableName {
	case "foods":
		food, err := getFoodBy(ctx, q, "uuid = ?", ts.UUID)
		if err == ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if food.UpdatedAt >= ts.DeletedAt {
			return false, nil
		}
		if _, err := q.ExecContext(ctx, "DELETE FROM foods WHERE id = ?", food.ID); err != nil {
			return false, fmt.Errorf("failed to apply food tombstone: %w", err)
		}
		return true, nil

	case "meal_entries":
		var id int64
		var updated string
		err := q.QueryRowContext(ctx,
			"SELECT id, COALESCE(updated_at, '') FROM meal_entries WHERE uuid = ?",
			ts.UUID).Scan(&id, &updated)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to look up meal entry for tombstone: %w", err)
		}
		if updated >= ts.DeletedAt {
			return false, nil
		}
		if _, err := q.ExecContext(ctx, "DELETE FROM meal_entries WHERE id = ?", id); err != nil {
			return false, fmt.Errorf("failed to apply meal entry tombstone: %w", err)
		}
		return true, nil

	case "recipes":
		var id int64
		var updated string
		err := q.QueryRowContext(ctx,
			"SELECT id, COALESCE(updated_at, '') FROM recipes WHERE uuid = ?",
			ts.UUID).Scan(&id, &updated)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to look up recipe for tombstone: %w", err)
		}
		if updated >= ts.DeletedAt {
			return false, nil
		}
		return deleteRecipe(ctx, q, id)

	case "recipe_ingredients":
		var id, recipeID int64
		var updated string
		err := q.QueryRowContext(ctx,
			"SELECT id, recipe_id, COALESCE(updated_at, '') FROM recipe_ingredients WHERE uuid = ?",
			ts.UUID).Scan(&id, &recipeID, &updated)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to look up recipe ingredient for tombstone: %w", err)
		}
		if updated >= ts.DeletedAt {
			return false, nil
		}
		if _, err := q.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE id = ?", id); err != nil {
			return false, fmt.Errorf("failed to apply recipe ingredient tombstone: %w", err)
		}
		recompute[recipeID] = true
		return true, nil
	}
	return false, nil
}
