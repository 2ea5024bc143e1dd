package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/grubapp/grub/internal/storage"
)

const foodColumns = `id, name, brand, barcode, calories_per_100g, protein_per_100g,
	carbs_per_100g, fat_per_100g, default_serving_g, source, created_at, uuid, updated_at`

func scanFood(row interface{ Scan(...any) error }) (*storage.Food, error) {
	var f storage.Food
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Brand,
		&f.Barcode,
		&f.CaloriesPer100g,
		&f.ProteinPer100g,
		&f.CarbsPer100g,
		&f.FatPer100g,
		&f.DefaultServingG,
		&f.Source,
		&f.CreatedAt,
		&f.UUID,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) InsertFood(ctx context.Context, f storage.NewFood) (*storage.Food, error) {
	return insertFood(ctx, s.db, f)
}

func insertFood(ctx context.Context, q dbtx, f storage.NewFood) (*storage.Food, error) {
	now := nowRFC3339()
	id := newUUID()
	source := f.Source
	if source == "" {
		source = "manual"
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO foods (name, brand, barcode, calories_per_100g, protein_per_100g,
			carbs_per_100g, fat_per_100g, default_serving_g, source, created_at, uuid, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Name, f.Brand, f.Barcode, f.CaloriesPer100g, f.ProteinPer100g,
		f.CarbsPer100g, f.FatPer100g, f.DefaultServingG, source, now, id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert food: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read food id: %w", err)
	}
	return getFoodByID(ctx, q, rowID)
}

// UpsertFoodByBarcode inserts the food unless a row with the same
// barcode already exists, in which case the existing row is returned
// untouched. Foods without a barcode are always inserted.
func (s *Store) UpsertFoodByBarcode(ctx context.Context, f storage.NewFood) (*storage.Food, error) {
	if f.Barcode != nil && *f.Barcode != "" {
		existing, err := getFoodBy(ctx, s.db, "barcode = ?", *f.Barcode)
		if err == nil {
			return existing, nil
		}
		if err != ErrNotFound {
			return nil, err
		}
	}
	return insertFood(ctx, s.db, f)
}

func (s *Store) GetFoodByID(ctx context.Context, id int64) (*storage.Food, error) {
	return getFoodByID(ctx, s.db, id)
}

func getFoodByID(ctx context.Context, q dbtx, id int64) (*storage.Food, error) {
	return getFoodBy(ctx, q, "id = ?", id)
}

func (s *Store) GetFoodByBarcode(ctx context.Context, barcode string) (*storage.Food, error) {
	return getFoodBy(ctx, s.db, "barcode = ?", barcode)
}

func (s *Store) GetFoodByUUID(ctx context.Context, id string) (*storage.Food, error) {
	return getFoodBy(ctx, s.db, "uuid = ?", id)
}

func getFoodBy(ctx context.Context, q dbtx, where string, args ...any) (*storage.Food, error) {
	row := q.QueryRowContext(ctx, "SELECT "+foodColumns+" FROM foods WHERE "+where, args...)
	f, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return f, nil
}

// SearchFoods matches the query as a substring of name or brand,
// escaping LIKE metacharacters in the input.
func (s *Store) SearchFoods(ctx context.Context, query string) ([]storage.Food, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	pattern := "%" + escaped + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foodColumns+` FROM foods
		WHERE name LIKE ?1 ESCAPE '\' OR brand LIKE ?1 ESCAPE '\'
		ORDER BY name LIMIT 20
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

func collectFoods(rows *sql.Rows) ([]storage.Food, error) {
	foods := []storage.Food{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}
