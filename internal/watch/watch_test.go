package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grubapp/grub/internal/meals"
	"github.com/grubapp/grub/internal/storage"
)

// mockStorage implements Storage for testing
type mockStorage struct {
	calories, protein, carbs, fat float64
	mealCount                     int64
	targets                       map[int64]storage.DailyTarget
	recent                        []storage.WatchRecentFood
}

func newMockStorage() *mockStorage {
	return &mockStorage{targets: make(map[int64]storage.DailyTarget)}
}

func (m *mockStorage) DayTotals(ctx context.Context, date string) (float64, float64, float64, float64, int64, error) {
	return m.calories, m.protein, m.carbs, m.fat, m.mealCount, nil
}

func (m *mockStorage) GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error) {
	t, ok := m.targets[dayOfWeek]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (m *mockStorage) WatchRecentFoods(ctx context.Context, limit int64) ([]storage.WatchRecentFood, error) {
	if limit < int64(len(m.recent)) {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

// mockStreaks implements Streaks for testing
type mockStreaks struct {
	streak int64
}

func (m *mockStreaks) Streak(ctx context.Context, now time.Time) (int64, error) {
	return m.streak, nil
}

// mockLogger implements Logger for testing
type mockLogger struct {
	lastReq meals.LogMealRequest
	entry   *storage.MealEntry
	err     error
}

func (m *mockLogger) LogMeal(ctx context.Context, req meals.LogMealRequest) (*storage.MealEntry, error) {
	m.lastReq = req
	return m.entry, m.err
}

func TestGlanceComputesRemaining(t *testing.T) {
	store := newMockStorage()
	store.calories = 1450
	store.protein = 80
	store.mealCount = 3
	// Monday target.
	p, c, f := int64(30), int64(40), int64(30)
	store.targets[0] = storage.NewDailyTarget(0, 2000, &p, &c, &f)

	service := NewService(store, &mockStreaks{streak: 5}, &mockLogger{})

	glance, err := service.Glance(context.Background(), "2026-08-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if glance.CaloriesTarget == nil || *glance.CaloriesTarget != 2000 {
		t.Fatalf("expected target 2000, got %v", glance.CaloriesTarget)
	}
	if glance.CaloriesRemaining == nil || *glance.CaloriesRemaining != 550 {
		t.Errorf("expected 550 remaining, got %v", glance.CaloriesRemaining)
	}
	if glance.ProteinTargetG == nil || *glance.ProteinTargetG != 150 {
		t.Errorf("expected protein target 150 g, got %v", glance.ProteinTargetG)
	}
	if glance.LoggingStreak != 5 {
		t.Errorf("expected streak 5, got %d", glance.LoggingStreak)
	}
	if glance.MealCount != 3 {
		t.Errorf("expected 3 meals, got %d", glance.MealCount)
	}
}

func TestGlanceWithoutTarget(t *testing.T) {
	store := newMockStorage()
	store.calories = 600
	service := NewService(store, &mockStreaks{}, &mockLogger{})

	glance, err := service.Glance(context.Background(), "2026-08-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if glance.CaloriesTarget != nil || glance.CaloriesRemaining != nil {
		t.Error("expected nil target fields without a target")
	}
	if glance.CaloriesEaten != 600 {
		t.Errorf("expected 600 eaten, got %v", glance.CaloriesEaten)
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	store := newMockStorage()
	for i := 0; i < 15; i++ {
		store.recent = append(store.recent, storage.WatchRecentFood{FoodID: int64(i + 1)})
	}
	service := NewService(store, &mockStreaks{}, &mockLogger{})

	recent, err := service.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 10 {
		t.Errorf("expected default limit of 10, got %d", len(recent))
	}
}

func TestQuickLogDelegatesToMeals(t *testing.T) {
	logger := &mockLogger{entry: &storage.MealEntry{ID: 7, MealType: "lunch", ServingG: 120}}
	service := NewService(newMockStorage(), &mockStreaks{}, logger)

	body := `{"food_id":3,"serving_g":120,"meal_type":"lunch"}`
	req := httptest.NewRequest(http.MethodPost, "/api/watch/quick-log", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	HandleQuickLog(service)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if logger.lastReq.FoodID != 3 {
		t.Errorf("expected food id 3 passed through, got %d", logger.lastReq.FoodID)
	}
	if logger.lastReq.ServingG == nil || *logger.lastReq.ServingG != 120 {
		t.Error("expected serving passed through")
	}
}

func TestHandleQuickLogFoodNotFound(t *testing.T) {
	logger := &mockLogger{err: meals.ErrFoodNotFound}
	service := NewService(newMockStorage(), &mockStreaks{}, logger)

	body := `{"food_id":9,"serving_g":50,"meal_type":"snack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/watch/quick-log", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	HandleQuickLog(service)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "Food with id 9 not found" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestHandleGlanceRejectsBadDate(t *testing.T) {
	service := NewService(newMockStorage(), &mockStreaks{}, &mockLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/watch/glance/garbage", nil)
	req.SetPathValue("date", "garbage")
	rec := httptest.NewRecorder()
	HandleGlance(service)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
