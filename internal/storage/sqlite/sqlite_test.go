package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/grubapp/grub/internal/dbmigrate"
	"github.com/grubapp/grub/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := dbmigrate.Run("up", path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptrS(s string) *string   { return &s }
func ptrF(f float64) *float64 { return &f }
func ptrI(i int64) *int64     { return &i }

func TestFoodInsertAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food, err := store.InsertFood(ctx, storage.NewFood{
		Name:            "Peanut Butter",
		Brand:           ptrS("Nutsy"),
		Barcode:         ptrS("5901234123457"),
		CaloriesPer100g: 588,
		ProteinPer100g:  ptrF(25),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if food.ID == 0 {
		t.Error("expected a row id")
	}
	if food.UUID == "" {
		t.Error("expected a generated uuid")
	}
	if food.Source != "manual" {
		t.Errorf("expected manual source default, got %q", food.Source)
	}

	byID, err := store.GetFoodByID(ctx, food.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID.Name != "Peanut Butter" {
		t.Errorf("unexpected name %q", byID.Name)
	}

	byBarcode, err := store.GetFoodByBarcode(ctx, "5901234123457")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byBarcode.ID != food.ID {
		t.Errorf("expected food %d, got %d", food.ID, byBarcode.ID)
	}

	byUUID, err := store.GetFoodByUUID(ctx, food.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byUUID.ID != food.ID {
		t.Errorf("expected food %d, got %d", food.ID, byUUID.ID)
	}

	if _, err := store.GetFoodByBarcode(ctx, "0000000000000"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertFoodByBarcodeReturnsExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertFoodByBarcode(ctx, storage.NewFood{
		Name:            "Oat Milk",
		Barcode:         ptrS("4000000000001"),
		CaloriesPer100g: 46,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := store.UpsertFoodByBarcode(ctx, storage.NewFood{
		Name:            "Oat Milk Renamed",
		Barcode:         ptrS("4000000000001"),
		CaloriesPer100g: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected existing row %d, got %d", first.ID, second.ID)
	}
	if second.Name != "Oat Milk" {
		t.Errorf("expected existing row untouched, got name %q", second.Name)
	}
}

func TestSearchFoodsEscapesLikePattern(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertFood(ctx, storage.NewFood{Name: "100% Whey", CaloriesPer100g: 380}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.InsertFood(ctx, storage.NewFood{Name: "Rolled Oats", Brand: ptrS("Alpro"), CaloriesPer100g: 389}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := store.SearchFoods(ctx, "100%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "100% Whey" {
		t.Errorf("expected literal percent match, got %+v", results)
	}

	byBrand, err := store.SearchFoods(ctx, "alpro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byBrand) != 1 || byBrand[0].Name != "Rolled Oats" {
		t.Errorf("expected brand match, got %+v", byBrand)
	}
}

func TestMealEntryLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food, err := store.InsertFood(ctx, storage.NewFood{
		Name:            "Chicken Breast",
		CaloriesPer100g: 250,
		ProteinPer100g:  ptrF(20),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := store.InsertMealEntry(ctx, storage.NewMealEntry{
		Date:            "2026-08-20",
		MealType:        "lunch",
		FoodID:          food.ID,
		ServingG:        200,
		DisplayUnit:     ptrS("oz"),
		DisplayQuantity: ptrF(7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Calories == nil || *entry.Calories != 500 {
		t.Errorf("expected 500 projected calories, got %v", entry.Calories)
	}
	if entry.Protein == nil || *entry.Protein != 40 {
		t.Errorf("expected 40 projected protein, got %v", entry.Protein)
	}
	if entry.FoodName == nil || *entry.FoodName != "Chicken Breast" {
		t.Errorf("expected joined food name, got %v", entry.FoodName)
	}

	updated, err := store.UpdateMealEntry(ctx, entry.ID, storage.UpdateMealEntry{
		ServingG:           ptrF(100),
		SetDisplayUnit:     true,
		SetDisplayQuantity: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Calories == nil || *updated.Calories != 250 {
		t.Errorf("expected recomputed calories, got %v", updated.Calories)
	}
	if updated.DisplayUnit != nil || updated.DisplayQuantity != nil {
		t.Error("expected display pair cleared")
	}

	entries, err := store.EntriesForDate(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	deleted, err := store.DeleteMealEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}
	deleted, err = store.DeleteMealEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report false")
	}
	if _, err := store.GetMealEntry(ctx, entry.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	tombstones, err := store.TombstonesSince(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tombstones) != 1 {
		t.Fatalf("expected 1 tombstone, got %d", len(tombstones))
	}
	if tombstones[0].UUID != entry.UUID || tombstones[0].TableName != "meal_entries" {
		t.Errorf("unexpected tombstone %+v", tombstones[0])
	}
}

func TestDayTotalsAndCalorieAverage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food, err := store.InsertFood(ctx, storage.NewFood{
		Name:            "Rice",
		CaloriesPer100g: 130,
		ProteinPer100g:  ptrF(2.7),
		CarbsPer100g:    ptrF(28),
		FatPer100g:      ptrF(0.3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, serving := range []float64{100, 200} {
		_, err := store.InsertMealEntry(ctx, storage.NewMealEntry{
			Date: "2026-08-19", MealType: "dinner", FoodID: food.ID, ServingG: serving,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	calories, _, carbs, _, count, err := store.DayTotals(ctx, "2026-08-19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calories != 390 {
		t.Errorf("expected 390 calories, got %v", calories)
	}
	if carbs != 84 {
		t.Errorf("expected 84 carbs, got %v", carbs)
	}
	if count != 2 {
		t.Errorf("expected 2 entries, got %d", count)
	}

	avg, err := store.CalorieAverage(ctx, "2026-08-13", "2026-08-19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 390 {
		t.Errorf("expected single logged day average 390, got %v", avg)
	}

	empty, err := store.CalorieAverage(ctx, "2025-01-01", "2025-01-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty != 0 {
		t.Errorf("expected 0 for empty range, got %v", empty)
	}
}

func TestRecipeLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oats, err := store.InsertFood(ctx, storage.NewFood{Name: "Oats", CaloriesPer100g: 100, ProteinPer100g: ptrF(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	milk, err := store.InsertFood(ctx, storage.NewFood{Name: "Milk", CaloriesPer100g: 50, ProteinPer100g: ptrF(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recipe, err := store.CreateRecipe(ctx, "Porridge", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Name != "Porridge" {
		t.Errorf("unexpected name %q", recipe.Name)
	}

	err = store.ReplaceRecipeIngredients(ctx, recipe.ID, []storage.NewRecipeIngredient{
		{FoodID: oats.ID, QuantityG: 200},
		{FoodID: milk.ID, QuantityG: 200},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detail, err := store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.TotalWeightG != 400 {
		t.Errorf("expected total weight 400, got %v", detail.TotalWeightG)
	}
	if detail.PerPortionCalories != 150 {
		t.Errorf("expected 150 kcal per portion, got %v", detail.PerPortionCalories)
	}
	if detail.PerPortionG != 200 {
		t.Errorf("expected 200 g per portion, got %v", detail.PerPortionG)
	}
	if detail.CaloriesPer100g != 75 {
		t.Errorf("expected recomputed 75 kcal per 100g, got %v", detail.CaloriesPer100g)
	}

	virtual, err := store.GetFoodByID(ctx, recipe.FoodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if virtual.CaloriesPer100g != 75 {
		t.Errorf("expected virtual food recomputed, got %v", virtual.CaloriesPer100g)
	}
	if virtual.DefaultServingG == nil || *virtual.DefaultServingG != 200 {
		t.Errorf("expected default serving of one portion, got %v", virtual.DefaultServingG)
	}

	if err := store.SetRecipePortions(ctx, recipe.ID, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail, err = store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.PerPortionCalories != 75 {
		t.Errorf("expected 75 kcal per portion after split, got %v", detail.PerPortionCalories)
	}

	if err := store.RenameRecipe(ctx, recipe.ID, "Overnight Oats"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail, err = store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Name != "Overnight Oats" {
		t.Errorf("expected renamed recipe, got %q", detail.Name)
	}

	deleted, err := store.DeleteRecipe(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}
	if _, err := store.GetFoodByID(ctx, recipe.FoodID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected virtual food removed, got %v", err)
	}

	// Recipe, two ingredients and the virtual food all leave tombstones.
	tombstones, err := store.TombstonesSince(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tombstones) != 4 {
		t.Errorf("expected 4 tombstones, got %d", len(tombstones))
	}
}

func TestTargetsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SetTarget(ctx, storage.ExportTarget{
		DayOfWeek:  0,
		Calories:   2000,
		ProteinPct: ptrI(30),
		CarbsPct:   ptrI(40),
		FatPct:     ptrI(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, err := store.GetTarget(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ProteinG == nil || *target.ProteinG != 150 {
		t.Errorf("expected 150g protein, got %v", target.ProteinG)
	}
	if target.CarbsG == nil || *target.CarbsG != 200 {
		t.Errorf("expected 200g carbs, got %v", target.CarbsG)
	}

	if _, err := store.GetTarget(ctx, 3); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset day, got %v", err)
	}

	all, err := store.AllTargets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 target, got %d", len(all))
	}

	cleared, err := store.ClearTarget(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cleared {
		t.Error("expected clear to report true")
	}
	cleared, err = store.ClearAllTargets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared {
		t.Error("expected nothing left to clear")
	}
}

func TestWeightUpsertKeepsRowPerDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertWeight(ctx, storage.NewWeightEntry{Date: "2026-08-01", WeightKg: 80.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Source != "manual" {
		t.Errorf("expected manual source default, got %q", first.Source)
	}

	second, err := store.UpsertWeight(ctx, storage.NewWeightEntry{
		Date: "2026-08-01", WeightKg: 80.0, Notes: ptrS("after run"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same row %d, got %d", first.ID, second.ID)
	}
	if second.UUID != first.UUID {
		t.Error("expected uuid preserved on upsert")
	}
	if second.WeightKg != 80.0 {
		t.Errorf("expected updated weight, got %v", second.WeightKg)
	}
	if second.Notes == nil || *second.Notes != "after run" {
		t.Errorf("expected notes updated, got %v", second.Notes)
	}

	if _, err := store.UpsertWeight(ctx, storage.NewWeightEntry{Date: "2026-08-02", WeightKg: 80.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history, err := store.WeightHistory(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 || history[0].Date != "2026-08-02" {
		t.Errorf("expected newest first, got %+v", history)
	}

	if err := store.DeleteWeight(ctx, first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.DeleteWeight(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWeightHistoryWindowsBeforeLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2026-08-01", "2026-08-02", "2026-08-03", "2026-08-04"} {
		if _, err := store.UpsertWeight(ctx, storage.NewWeightEntry{Date: d, WeightKg: 80}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The window selects older rows than the limit alone would keep.
	history, err := store.WeightHistory(ctx, "2026-08-01", "2026-08-02", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 in-range entries, got %d", len(history))
	}
	if history[0].Date != "2026-08-02" || history[1].Date != "2026-08-01" {
		t.Errorf("expected windowed entries newest first, got %+v", history)
	}

	history, err = store.WeightHistory(ctx, "2026-08-03", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || history[0].Date != "2026-08-04" {
		t.Errorf("expected limit applied within the window, got %+v", history)
	}
}

func TestMergeFoodLastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	push := func(f storage.Food) {
		t.Helper()
		err := store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Foods: []storage.Food{f}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	push(storage.Food{
		UUID: "f-1", Name: "Remote", CaloriesPer100g: 100,
		CreatedAt: "2030-01-01T00:00:00Z", UpdatedAt: "2030-01-01T00:00:00Z",
	})
	food, err := store.GetFoodByUUID(ctx, "f-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if food.Name != "Remote" {
		t.Errorf("unexpected name %q", food.Name)
	}

	// An older remote copy loses.
	push(storage.Food{
		UUID: "f-1", Name: "Stale", CaloriesPer100g: 90,
		CreatedAt: "2029-01-01T00:00:00Z", UpdatedAt: "2029-01-01T00:00:00Z",
	})
	food, err = store.GetFoodByUUID(ctx, "f-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if food.Name != "Remote" {
		t.Errorf("expected stale update ignored, got %q", food.Name)
	}

	// A newer one wins.
	push(storage.Food{
		UUID: "f-1", Name: "Fresh", CaloriesPer100g: 110,
		CreatedAt: "2030-01-01T00:00:00Z", UpdatedAt: "2031-01-01T00:00:00Z",
	})
	food, err = store.GetFoodByUUID(ctx, "f-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if food.Name != "Fresh" || food.CaloriesPer100g != 110 {
		t.Errorf("expected newer update applied, got %+v", food)
	}
}

func TestMergeMealEntrySkipsUnknownFood(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ApplyRemoteChanges(ctx, &storage.SyncPayload{
		MealEntries: []storage.ExportMealEntry{{
			UUID: "m-1", Date: "2026-08-20", MealType: "lunch",
			ServingG: 100, FoodUUID: "no-such-food",
			CreatedAt: "2026-08-20T12:00:00Z", UpdatedAt: "2026-08-20T12:00:00Z",
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := store.EntriesForDate(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected unresolvable entry skipped, got %d entries", len(entries))
	}
}

func TestTombstoneDeletesOlderRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Foods: []storage.Food{
		{UUID: "f-old", Name: "Old", CaloriesPer100g: 10,
			CreatedAt: "2020-01-01T00:00:00Z", UpdatedAt: "2020-01-01T00:00:00Z"},
		{UUID: "f-new", Name: "New", CaloriesPer100g: 10,
			CreatedAt: "2030-01-01T00:00:00Z", UpdatedAt: "2030-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Tombstones: []storage.Tombstone{
		{UUID: "f-old", TableName: "foods", DeletedAt: "2021-01-01T00:00:00Z"},
		{UUID: "f-new", TableName: "foods", DeletedAt: "2021-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.GetFoodByUUID(ctx, "f-old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected tombstoned food deleted, got %v", err)
	}
	// The locally newer row survives a stale tombstone.
	if _, err := store.GetFoodByUUID(ctx, "f-new"); err != nil {
		t.Errorf("expected newer food kept: %v", err)
	}

	tombstones, err := store.TombstonesSince(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tombstones) != 2 {
		t.Errorf("expected both tombstones stored for propagation, got %d", len(tombstones))
	}
}

func TestRecipeTombstoneLastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oats, err := store.InsertFood(ctx, storage.NewFood{Name: "Oats", CaloriesPer100g: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recipe, err := store.CreateRecipe(ctx, "Porridge", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = store.ReplaceRecipeIngredients(ctx, recipe.ID, []storage.NewRecipeIngredient{
		{FoodID: oats.ID, QuantityG: 200},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail, err := store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stale tombstones lose against the locally newer rows.
	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Tombstones: []storage.Tombstone{
		{UUID: detail.UUID, TableName: "recipes", DeletedAt: "2000-01-01T00:00:00Z"},
		{UUID: detail.Ingredients[0].UUID, TableName: "recipe_ingredients", DeletedAt: "2000-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail, err = store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("expected recipe to survive stale tombstone: %v", err)
	}
	if len(detail.Ingredients) != 1 {
		t.Fatalf("expected ingredient to survive stale tombstone, got %d", len(detail.Ingredients))
	}

	// A newer ingredient tombstone deletes the row and triggers a
	// recompute.
	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Tombstones: []storage.Tombstone{
		{UUID: detail.Ingredients[0].UUID, TableName: "recipe_ingredients", DeletedAt: "2100-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail, err = store.GetRecipeDetail(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Ingredients) != 0 {
		t.Errorf("expected ingredient deleted, got %d", len(detail.Ingredients))
	}
	if detail.CaloriesPer100g != 0 {
		t.Errorf("expected recomputed empty recipe, got %v kcal per 100g", detail.CaloriesPer100g)
	}

	// A newer recipe tombstone removes the recipe and its virtual food.
	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Tombstones: []storage.Tombstone{
		{UUID: detail.UUID, TableName: "recipes", DeletedAt: "2100-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetRecipeDetail(ctx, recipe.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected recipe deleted, got %v", err)
	}
	if _, err := store.GetFoodByID(ctx, recipe.FoodID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected virtual food deleted, got %v", err)
	}
}

func TestMergeTargetMissingTimestampWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Targets: []storage.ExportTarget{
		{DayOfWeek: 0, Calories: 2000, UpdatedAt: ptrS("2030-01-01T00:00:00Z")},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A timestampless incoming target overrides even a newer local row
	// and gets stamped with the current time.
	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Targets: []storage.ExportTarget{
		{DayOfWeek: 0, Calories: 1800},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, err := store.GetTarget(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Calories != 1800 {
		t.Errorf("expected timestampless target applied, got %d calories", target.Calories)
	}
}

func TestChangesSinceDelta(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food, err := store.InsertFood(ctx, storage.NewFood{Name: "Banana", CaloriesPer100g: 89})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full, err := store.ChangesSince(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full.Foods) != 1 {
		t.Errorf("expected full dump with 1 food, got %d", len(full.Foods))
	}
	if full.ServerTimestamp == "" {
		t.Error("expected a server timestamp")
	}

	// Rows stamped exactly at the cursor are excluded.
	since := food.UpdatedAt
	delta, err := store.ChangesSince(ctx, &since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta.Foods) != 0 {
		t.Errorf("expected empty delta, got %d foods", len(delta.Foods))
	}

	err = store.ApplyRemoteChanges(ctx, &storage.SyncPayload{Foods: []storage.Food{
		{UUID: "f-later", Name: "Later", CaloriesPer100g: 1,
			CreatedAt: "2031-01-01T00:00:00Z", UpdatedAt: "2031-01-01T00:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	delta, err = store.ChangesSince(ctx, &since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta.Foods) != 1 || delta.Foods[0].UUID != "f-later" {
		t.Errorf("expected only the later food, got %+v", delta.Foods)
	}
}

func TestImportV1PreservesIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existing, err := store.InsertFood(ctx, storage.NewFood{
		Name: "Already Here", Barcode: ptrS("111"), CaloriesPer100g: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := store.ImportV1(ctx, &storage.ExportData{
		Version: 1,
		Foods: []storage.Food{
			{ID: 42, Name: "Legacy Food", CaloriesPer100g: 100,
				CreatedAt: "2024-01-01T00:00:00Z"},
			{ID: 43, Name: "Conflicting", Barcode: ptrS("111"), CaloriesPer100g: 2,
				CreatedAt: "2024-01-01T00:00:00Z"},
		},
		MealEntries: []storage.ExportMealEntry{
			{ID: 7, Date: "2024-06-01", MealType: "breakfast", FoodID: 42, ServingG: 150,
				CreatedAt: "2024-06-01T08:00:00Z"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FoodsImported != 1 {
		t.Errorf("expected 1 food imported, got %d", summary.FoodsImported)
	}
	if summary.MealEntriesImported != 1 {
		t.Errorf("expected 1 meal entry imported, got %d", summary.MealEntriesImported)
	}

	food, err := store.GetFoodByID(ctx, 42)
	if err != nil {
		t.Fatalf("expected food restored under its original id: %v", err)
	}
	if food.Name != "Legacy Food" {
		t.Errorf("unexpected name %q", food.Name)
	}
	if food.UUID == "" {
		t.Error("expected a uuid assigned to the imported food")
	}

	// The barcode conflict is skipped, not clobbered.
	if _, err := store.GetFoodByID(ctx, 43); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected conflicting food skipped, got %v", err)
	}
	kept, err := store.GetFoodByBarcode(ctx, "111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kept.ID != existing.ID {
		t.Errorf("expected existing barcode owner kept, got %d", kept.ID)
	}

	entry, err := store.GetMealEntry(ctx, 7)
	if err != nil {
		t.Fatalf("expected meal entry restored under its original id: %v", err)
	}
	if entry.Calories == nil || *entry.Calories != 150 {
		t.Errorf("expected projected calories, got %v", entry.Calories)
	}
}

func TestMergeImportExpandsLegacyTarget(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	summary, err := store.MergeImport(ctx, &storage.ExportData{
		Version: 2,
		Target:  &storage.LegacyTarget{Calories: 1800, ProteinPct: ptrI(30)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TargetsImported != 7 {
		t.Errorf("expected 7 targets from legacy singleton, got %d", summary.TargetsImported)
	}

	all, err := store.AllTargets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected a target for every weekday, got %d", len(all))
	}
	for _, target := range all {
		if target.Calories != 1800 {
			t.Errorf("day %d: expected 1800 calories, got %d", target.DayOfWeek, target.Calories)
		}
	}
}

func TestUserSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetUserSetting(ctx, "theme"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.SetUserSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetUserSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := store.GetUserSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "light" {
		t.Errorf("expected upserted value, got %q", value)
	}

	deleted, err := store.DeleteUserSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}
	deleted, err = store.DeleteUserSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected nothing left to delete")
	}
}

func TestGetOrCreateDeviceIDStable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreateDeviceID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("expected a device id")
	}
	second, err := store.GetOrCreateDeviceID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Errorf("expected stable device id, got %q then %q", first, second)
	}
}
