package summary

import (
	"context"
	"errors"
	"time"

	"github.com/grubapp/grub/internal/storage"
)

// Storage defines the aggregation queries the service needs.
type Storage interface {
	EntriesForDate(ctx context.Context, date string) ([]storage.MealEntry, error)
	GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error)
	DistinctEntryDates(ctx context.Context) ([]string, error)
	CalorieAverage(ctx context.Context, startDate, endDate string) (float64, error)
}

// Service assembles day summaries and logging statistics.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Daily groups the day's entries by meal in canonical order, attaching
// the weekday's target when one is set. Meals without entries are
// omitted.
func (s *Service) Daily(ctx context.Context, date string) (*storage.DailySummary, error) {
	entries, err := s.storage.EntriesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	byMeal := map[string][]storage.MealEntry{}
	for _, e := range entries {
		byMeal[e.MealType] = append(byMeal[e.MealType], e)
	}

	result := &storage.DailySummary{Date: date, Meals: []storage.MealGroup{}}
	for _, mealType := range storage.MealTypes {
		group := storage.MealGroup{MealType: mealType, Entries: byMeal[mealType]}
		if len(group.Entries) == 0 {
			continue
		}
		for _, e := range group.Entries {
			if e.Calories != nil {
				group.SubtotalCalories += *e.Calories
			}
			if e.Protein != nil {
				group.SubtotalProtein += *e.Protein
			}
			if e.Carbs != nil {
				group.SubtotalCarbs += *e.Carbs
			}
			if e.Fat != nil {
				group.SubtotalFat += *e.Fat
			}
		}
		result.TotalCalories += group.SubtotalCalories
		result.TotalProtein += group.SubtotalProtein
		result.TotalCarbs += group.SubtotalCarbs
		result.TotalFat += group.SubtotalFat
		result.Meals = append(result.Meals, group)
	}

	if day, err := time.Parse("2006-01-02", date); err == nil {
		target, err := s.storage.GetTarget(ctx, storage.Weekday(day))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		result.Target = target
	}
	return result, nil
}

// Streak counts consecutive logged days ending today or yesterday.
func (s *Service) Streak(ctx context.Context, now time.Time) (int64, error) {
	dates, err := s.storage.DistinctEntryDates(ctx)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	var start time.Time
	switch dates[0] {
	case today:
		start = now
	case yesterday:
		start = now.AddDate(0, 0, -1)
	default:
		return 0, nil
	}

	var streak int64
	expected := start
	for _, d := range dates {
		if d != expected.Format("2006-01-02") {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak, nil
}

// CalorieAverage averages daily calorie totals over the trailing days
// window, counting only days with entries.
func (s *Service) CalorieAverage(ctx context.Context, now time.Time, days int64) (float64, error) {
	if days <= 0 {
		days = 7
	}
	start := now.AddDate(0, 0, -int(days-1)).Format("2006-01-02")
	end := now.Format("2006-01-02")
	return s.storage.CalorieAverage(ctx, start, end)
}
