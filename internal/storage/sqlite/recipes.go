package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grubapp/grub/internal/storage"
)

const recipeColumns = `id, uuid, food_id, portions, created_at, COALESCE(updated_at, created_at)`

func scanRecipe(row interface{ Scan(...any) error }) (*storage.Recipe, error) {
	var r storage.Recipe
	err := row.Scan(&r.ID, &r.UUID, &r.FoodID, &r.Portions, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe inserts the recipe together with its virtual food. The
// food starts with zero macros and is recomputed as ingredients arrive.
func (s *Store) CreateRecipe(ctx context.Context, name string, portions float64) (*storage.RecipeDetail, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := nowRFC3339()
	zero := 0.0
	res, err := tx.ExecContext(ctx, `
		INSERT INTO foods (name, calories_per_100g, protein_per_100g, carbs_per_100g,
			fat_per_100g, default_serving_g, source, created_at, uuid, updated_at)
		VALUES (?, 0, 0, 0, 0, ?, 'recipe', ?, ?, ?)
	`, name, zero, now, newUUID(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe food: %w", err)
	}
	foodID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe food id: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO recipes (food_id, portions, created_at, uuid, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, foodID, portions, now, newUUID(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	recipeID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe id: %w", err)
	}

	detail, err := getRecipeDetail(ctx, tx, recipeID)
	if err != nil {
		return nil, err
	}
	return detail, tx.Commit()
}

func getRecipeByID(ctx context.Context, q dbtx, id int64) (*storage.Recipe, error) {
	row := q.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *Store) GetRecipeDetail(ctx context.Context, id int64) (*storage.RecipeDetail, error) {
	return getRecipeDetail(ctx, s.db, id)
}

func getRecipeDetail(ctx context.Context, q dbtx, id int64) (*storage.RecipeDetail, error) {
	recipe, err := getRecipeByID(ctx, q, id)
	if err != nil {
		return nil, err
	}

	food, err := getFoodByID(ctx, q, recipe.FoodID)
	if err != nil {
		return nil, err
	}

	ingredients, err := recipeIngredients(ctx, q, id)
	if err != nil {
		return nil, err
	}

	detail := &storage.RecipeDetail{
		ID:          recipe.ID,
		UUID:        recipe.UUID,
		FoodID:      recipe.FoodID,
		Name:        food.Name,
		Portions:    recipe.Portions,
		Ingredients: ingredients,
	}

	var totalCal, totalProtein, totalCarbs, totalFat float64
	for _, ing := range ingredients {
		detail.TotalWeightG += ing.QuantityG
		if ing.Calories != nil {
			totalCal += *ing.Calories
		}
		if ing.Protein != nil {
			totalProtein += *ing.Protein
		}
		if ing.Carbs != nil {
			totalCarbs += *ing.Carbs
		}
		if ing.Fat != nil {
			totalFat += *ing.Fat
		}
	}
	if recipe.Portions > 0 {
		detail.PerPortionG = detail.TotalWeightG / recipe.Portions
		detail.PerPortionCalories = totalCal / recipe.Portions
		detail.PerPortionProtein = totalProtein / recipe.Portions
		detail.PerPortionCarbs = totalCarbs / recipe.Portions
		detail.PerPortionFat = totalFat / recipe.Portions
	}
	detail.CaloriesPer100g = food.CaloriesPer100g
	if food.ProteinPer100g != nil {
		detail.ProteinPer100g = *food.ProteinPer100g
	}
	if food.CarbsPer100g != nil {
		detail.CarbsPer100g = *food.CarbsPer100g
	}
	if food.FatPer100g != nil {
		detail.FatPer100g = *food.FatPer100g
	}
	return detail, nil
}

func (s *Store) ListRecipes(ctx context.Context) ([]storage.RecipeDetail, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM recipes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := []storage.RecipeDetail{}
	for _, id := range ids {
		d, err := getRecipeDetail(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func recipeIngredients(ctx context.Context, q dbtx, recipeID int64) ([]storage.RecipeIngredient, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.id, i.uuid, i.recipe_id, i.food_id, i.quantity_g,
			f.name, f.brand,
			f.calories_per_100g * i.quantity_g / 100.0,
			f.protein_per_100g * i.quantity_g / 100.0,
			f.carbs_per_100g * i.quantity_g / 100.0,
			f.fat_per_100g * i.quantity_g / 100.0
		FROM recipe_ingredients i
		JOIN foods f ON f.id = i.food_id
		WHERE i.recipe_id = ?
		ORDER BY i.id
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []storage.RecipeIngredient{}
	for rows.Next() {
		var ing storage.RecipeIngredient
		err := rows.Scan(&ing.ID, &ing.UUID, &ing.RecipeID, &ing.FoodID, &ing.QuantityG,
			&ing.FoodName, &ing.FoodBrand, &ing.Calories, &ing.Protein, &ing.Carbs, &ing.Fat)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func insertRecipeIngredient(ctx context.Context, q dbtx, recipeID int64, ing storage.NewRecipeIngredient) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, food_id, quantity_g, uuid, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, recipeID, ing.FoodID, ing.QuantityG, newUUID(), nowRFC3339())
	if err != nil {
		return fmt.Errorf("failed to insert recipe ingredient: %w", err)
	}
	return nil
}

// ReplaceRecipeIngredients swaps the full ingredient list and
// recomputes the virtual food.
func (s *Store) ReplaceRecipeIngredients(ctx context.Context, recipeID int64, ingredients []storage.NewRecipeIngredient) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = ?", recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}
	for _, ing := range ingredients {
		if err := insertRecipeIngredient(ctx, tx, recipeID, ing); err != nil {
			return err
		}
	}
	if err := recomputeRecipeFood(ctx, tx, recipeID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SetRecipePortions(ctx context.Context, recipeID int64, portions float64) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE recipes SET portions = ?, updated_at = ? WHERE id = ?",
		portions, nowRFC3339(), recipeID)
	if err != nil {
		return fmt.Errorf("failed to update recipe portions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := recomputeRecipeFood(ctx, tx, recipeID); err != nil {
		return err
	}
	return tx.Commit()
}

// RenameRecipe updates the virtual food's name.
func (s *Store) RenameRecipe(ctx context.Context, recipeID int64, name string) error {
	recipe, err := getRecipeByID(ctx, s.db, recipeID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE foods SET name = ?, updated_at = ? WHERE id = ?",
		name, nowRFC3339(), recipe.FoodID)
	if err != nil {
		return fmt.Errorf("failed to rename recipe: %w", err)
	}
	return nil
}

// DeleteRecipe removes the ingredients, the recipe row and its virtual
// food, recording tombstones for all of them so the deletion propagates
// on sync.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) (bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	recipe, err := getRecipeByID(ctx, tx, id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := nowRFC3339()
	tombstones := []storage.Tombstone{
		{UUID: recipe.UUID, TableName: "recipes", DeletedAt: now},
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT uuid FROM recipe_ingredients WHERE recipe_id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to list recipe ingredient uuids: %w", err)
	}
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan recipe ingredient uuid: %w", err)
		}
		tombstones = append(tombstones, storage.Tombstone{
			UUID: uuid, TableName: "recipe_ingredients", DeletedAt: now,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	food, err := getFoodByID(ctx, tx, recipe.FoodID)
	if err != nil && err != ErrNotFound {
		return false, err
	}
	if err == nil {
		tombstones = append(tombstones, storage.Tombstone{
			UUID: food.UUID, TableName: "foods", DeletedAt: now,
		})
	}
	for _, ts := range tombstones {
		if err := recordTombstone(ctx, tx, ts); err != nil {
			return false, err
		}
	}

	deleted, err := deleteRecipe(ctx, tx, id)
	if err != nil {
		return false, err
	}
	return deleted, tx.Commit()
}

func deleteRecipe(ctx context.Context, q dbtx, id int64) (bool, error) {
	recipe, err := getRecipeByID(ctx, q, id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete recipe ingredients: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM foods WHERE id = ?", recipe.FoodID); err != nil {
		return false, fmt.Errorf("failed to delete recipe food: %w", err)
	}
	return true, nil
}

// recomputeRecipeFood refreshes the virtual food's per-100g macros and
// default serving from the current ingredient list. With no ingredients
// everything goes to zero.
func recomputeRecipeFood(ctx context.Context, q dbtx, recipeID int64) error {
	recipe, err := getRecipeByID(ctx, q, recipeID)
	if err != nil {
		return err
	}

	ingredients, err := recipeIngredients(ctx, q, recipeID)
	if err != nil {
		return err
	}

	var totalWeight, totalCal, totalProtein, totalCarbs, totalFat float64
	for _, ing := range ingredients {
		totalWeight += ing.QuantityG
		if ing.Calories != nil {
			totalCal += *ing.Calories
		}
		if ing.Protein != nil {
			totalProtein += *ing.Protein
		}
		if ing.Carbs != nil {
			totalCarbs += *ing.Carbs
		}
		if ing.Fat != nil {
			totalFat += *ing.Fat
		}
	}

	var calPer100, proteinPer100, carbsPer100, fatPer100, servingG float64
	if totalWeight > 0 {
		calPer100 = totalCal * 100.0 / totalWeight
		proteinPer100 = totalProtein * 100.0 / totalWeight
		carbsPer100 = totalCarbs * 100.0 / totalWeight
		fatPer100 = totalFat * 100.0 / totalWeight
		if recipe.Portions > 0 {
			servingG = totalWeight / recipe.Portions
		}
	}

	_, err = q.ExecContext(ctx, `
		UPDATE foods SET calories_per_100g = ?, protein_per_100g = ?, carbs_per_100g = ?,
			fat_per_100g = ?, default_serving_g = ?, updated_at = ?
		WHERE id = ?
	`, calPer100, proteinPer100, carbsPer100, fatPer100, servingG, nowRFC3339(), recipe.FoodID)
	if err != nil {
		return fmt.Errorf("failed to recompute recipe food: %w", err)
	}
	return nil
}
