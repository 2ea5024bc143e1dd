package watch

import (
	"context"
	"errors"
	"time"

	"github.com/grubapp/grub/internal/meals"
	"github.com/grubapp/grub/internal/storage"
)

// Storage defines the compact queries behind the watch endpoints.
type Storage interface {
	DayTotals(ctx context.Context, date string) (calories, protein, carbs, fat float64, mealCount int64, err error)
	GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error)
	WatchRecentFoods(ctx context.Context, limit int64) ([]storage.WatchRecentFood, error)
}

// Streaks is satisfied by the summary service.
type Streaks interface {
	Streak(ctx context.Context, now time.Time) (int64, error)
}

// Logger is satisfied by the meals service; quick-log reuses its
// validation.
type Logger interface {
	LogMeal(ctx context.Context, req meals.LogMealRequest) (*storage.MealEntry, error)
}

// Service serves the compact watch surface.
type Service struct {
	storage Storage
	streaks Streaks
	logger  Logger
}

func NewService(storage Storage, streaks Streaks, logger Logger) *Service {
	return &Service{storage: storage, streaks: streaks, logger: logger}
}

// Glance summarizes a day for complications: totals, target, remaining
// and the logging streak.
func (s *Service) Glance(ctx context.Context, date string) (*storage.WatchGlance, error) {
	calories, protein, carbs, fat, mealCount, err := s.storage.DayTotals(ctx, date)
	if err != nil {
		return nil, err
	}

	glance := &storage.WatchGlance{
		Date:          date,
		CaloriesEaten: calories,
		ProteinG:      protein,
		CarbsG:        carbs,
		FatG:          fat,
		MealCount:     mealCount,
	}

	if day, err := time.Parse("2006-01-02", date); err == nil {
		target, err := s.storage.GetTarget(ctx, storage.Weekday(day))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if target != nil {
			glance.CaloriesTarget = &target.Calories
			remaining := float64(target.Calories) - calories
			glance.CaloriesRemaining = &remaining
			glance.ProteinTargetG = target.ProteinG
			glance.CarbsTargetG = target.CarbsG
			glance.FatTargetG = target.FatG
		}
	}

	streak, err := s.streaks.Streak(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	glance.LoggingStreak = streak
	return glance, nil
}

// Recent returns the compact recent-food list.
func (s *Service) Recent(ctx context.Context, limit int64) ([]storage.WatchRecentFood, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.storage.WatchRecentFoods(ctx, limit)
}

// QuickLog logs a meal through the regular pipeline.
func (s *Service) QuickLog(ctx context.Context, req QuickLogRequest) (*storage.MealEntry, error) {
	return s.logger.LogMeal(ctx, meals.LogMealRequest{
		FoodID:   req.FoodID,
		Date:     req.Date,
		MealType: req.MealType,
		ServingG: &req.ServingG,
	})
}
