package sqlite

import (
	"context"
	"fmt"

	"github.com/grubapp/grub/internal/storage"
)

// DistinctEntryDates returns every date with at least one entry, newest
// first. Used for streak computation.
func (s *Store) DistinctEntryDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT date FROM meal_entries ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan entry date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CalorieAverage averages the per-day calorie totals between startDate
// and endDate inclusive, counting only days with entries. Zero when no
// day has data.
func (s *Store) CalorieAverage(ctx context.Context, startDate, endDate string) (float64, error) {
	var avg *float64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(day_total) FROM (
			SELECT SUM(f.calories_per_100g * m.serving_g / 100.0) AS day_total
			FROM meal_entries m
			JOIN foods f ON f.id = m.food_id
			WHERE m.date BETWEEN ? AND ?
			GROUP BY m.date
		)
	`, startDate, endDate).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to compute calorie average: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// DayTotals sums the day's macros and counts its entries.
func (s *Store) DayTotals(ctx context.Context, date string) (calories, protein, carbs, fat float64, mealCount int64, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(f.calories_per_100g * m.serving_g / 100.0), 0),
			COALESCE(SUM(f.protein_per_100g * m.serving_g / 100.0), 0),
			COALESCE(SUM(f.carbs_per_100g * m.serving_g / 100.0), 0),
			COALESCE(SUM(f.fat_per_100g * m.serving_g / 100.0), 0),
			COUNT(*)
		FROM meal_entries m
		JOIN foods f ON f.id = m.food_id
		WHERE m.date = ?
	`, date).Scan(&calories, &protein, &carbs, &fat, &mealCount)
	if err != nil {
		err = fmt.Errorf("failed to compute day totals: %w", err)
	}
	return
}

// RecentFoods lists recently logged foods with their logging history,
// most recently logged first, ties broken by log count.
func (s *Store) RecentFoods(ctx context.Context, limit int64) ([]storage.RecentFood, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.brand, f.barcode, f.calories_per_100g, f.protein_per_100g,
			f.carbs_per_100g, f.fat_per_100g, f.default_serving_g, f.source, f.created_at,
			f.uuid, COALESCE(f.updated_at, f.created_at),
			last.serving_g, last.meal_type, stats.log_count, stats.last_date
		FROM (
			SELECT food_id, COUNT(*) AS log_count, MAX(date) AS last_date
			FROM meal_entries
			GROUP BY food_id
		) stats
		JOIN foods f ON f.id = stats.food_id
		JOIN meal_entries last ON last.id = (
			SELECT MAX(id) FROM meal_entries
			WHERE food_id = stats.food_id AND date = stats.last_date
		)
		ORDER BY stats.last_date DESC, stats.log_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent foods: %w", err)
	}
	defer rows.Close()

	recent := []storage.RecentFood{}
	for rows.Next() {
		var r storage.RecentFood
		err := rows.Scan(
			&r.Food.ID, &r.Food.Name, &r.Food.Brand, &r.Food.Barcode,
			&r.Food.CaloriesPer100g, &r.Food.ProteinPer100g, &r.Food.CarbsPer100g,
			&r.Food.FatPer100g, &r.Food.DefaultServingG, &r.Food.Source,
			&r.Food.CreatedAt, &r.Food.UUID, &r.Food.UpdatedAt,
			&r.LastServingG, &r.LastMealType, &r.LogCount, &r.LastLogged,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent food: %w", err)
		}
		recent = append(recent, r)
	}
	return recent, rows.Err()
}

// WatchRecentFoods is the compact variant: one row per food, the most
// recent entry wins.
func (s *Store) WatchRecentFoods(ctx context.Context, limit int64) ([]storage.WatchRecentFood, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT food_id, name, brand, calories_per_100g, serving_g, meal_type FROM (
			SELECT m.food_id, f.name, f.brand, f.calories_per_100g, m.serving_g,
				m.meal_type, m.created_at, m.id,
				ROW_NUMBER() OVER (PARTITION BY m.food_id ORDER BY m.created_at DESC, m.id DESC) AS rn
			FROM meal_entries m
			JOIN foods f ON f.id = m.food_id
		)
		WHERE rn = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch recent foods: %w", err)
	}
	defer rows.Close()

	recent := []storage.WatchRecentFood{}
	for rows.Next() {
		var r storage.WatchRecentFood
		err := rows.Scan(&r.FoodID, &r.Name, &r.Brand, &r.CaloriesPer100g, &r.LastServingG, &r.LastMealType)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch recent food: %w", err)
		}
		r.LastCalories = r.CaloriesPer100g * r.LastServingG / 100.0
		recent = append(recent, r)
	}
	return recent, rows.Err()
}
