// Package storage defines the row types shared between the SQLite store
// and the domain services, plus the sync/export wire structures.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups that match no row.
var ErrNotFound = errors.New("row not found")

// Canonical meal order used for summaries and validation.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// Tables that may appear in a sync tombstone.
var ValidTombstoneTables = []string{"foods", "meal_entries", "recipes", "recipe_ingredients"}

// Weekday returns the day-of-week index used by targets: Monday=0 .. Sunday=6.
func Weekday(t time.Time) int64 {
	return int64((int(t.Weekday()) + 6) % 7)
}

// Food is a catalog entry. Macro values are per 100 g.
type Food struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name" validate:"required"`
	Brand           *string  `json:"brand"`
	Barcode         *string  `json:"barcode"`
	CaloriesPer100g float64  `json:"calories_per_100g" validate:"gte=0"`
	ProteinPer100g  *float64 `json:"protein_per_100g" validate:"omitempty,gte=0"`
	CarbsPer100g    *float64 `json:"carbs_per_100g" validate:"omitempty,gte=0"`
	FatPer100g      *float64 `json:"fat_per_100g" validate:"omitempty,gte=0"`
	DefaultServingG *float64 `json:"default_serving_g"`
	Source          string   `json:"source"`
	CreatedAt       string   `json:"created_at"`
	UUID            string   `json:"uuid"`
	UpdatedAt       string   `json:"updated_at"`
}

// NewFood is the insert payload for a food.
type NewFood struct {
	Name            string
	Brand           *string
	Barcode         *string
	CaloriesPer100g float64
	ProteinPer100g  *float64
	CarbsPer100g    *float64
	FatPer100g      *float64
	DefaultServingG *float64
	Source          string
}

// MealEntry is a logged food at a date and meal. The Food* and macro
// fields are projected from the joined food row; calories etc. are
// derived as per-100g values scaled by serving/100.
type MealEntry struct {
	ID              int64    `json:"id"`
	UUID            string   `json:"uuid"`
	Date            string   `json:"date"`
	MealType        string   `json:"meal_type"`
	FoodID          int64    `json:"food_id"`
	ServingG        float64  `json:"serving_g"`
	DisplayUnit     *string  `json:"display_unit,omitempty"`
	DisplayQuantity *float64 `json:"display_quantity,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	FoodName        *string  `json:"food_name,omitempty"`
	FoodBrand       *string  `json:"food_brand,omitempty"`
	Calories        *float64 `json:"calories,omitempty"`
	Protein         *float64 `json:"protein,omitempty"`
	Carbs           *float64 `json:"carbs,omitempty"`
	Fat             *float64 `json:"fat,omitempty"`
}

// NewMealEntry is the insert payload for a meal entry.
type NewMealEntry struct {
	Date            string
	MealType        string
	FoodID          int64
	ServingG        float64
	DisplayUnit     *string
	DisplayQuantity *float64
}

// UpdateMealEntry patches a meal entry. Nil fields are left untouched.
// DisplayUnit/DisplayQuantity can be cleared to NULL: the Set* flags say
// whether the field was present in the request at all.
type UpdateMealEntry struct {
	ServingG           *float64
	MealType           *string
	Date               *string
	SetDisplayUnit     bool
	DisplayUnit        *string
	SetDisplayQuantity bool
	DisplayQuantity    *float64
}

// Recipe is the stored recipe row; its nutrition lives on the linked
// virtual food.
type Recipe struct {
	ID        int64   `json:"id"`
	UUID      string  `json:"uuid"`
	FoodID    int64   `json:"food_id"`
	Portions  float64 `json:"portions"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// RecipeIngredient projects the ingredient food and its contribution
// for the stored quantity.
type RecipeIngredient struct {
	ID        int64    `json:"id"`
	UUID      string   `json:"uuid"`
	RecipeID  int64    `json:"recipe_id"`
	FoodID    int64    `json:"food_id"`
	QuantityG float64  `json:"quantity_g"`
	FoodName  *string  `json:"food_name,omitempty"`
	FoodBrand *string  `json:"food_brand,omitempty"`
	Calories  *float64 `json:"calories,omitempty"`
	Protein   *float64 `json:"protein,omitempty"`
	Carbs     *float64 `json:"carbs,omitempty"`
	Fat       *float64 `json:"fat,omitempty"`
}

// NewRecipeIngredient is the payload for adding or replacing
// ingredients.
type NewRecipeIngredient struct {
	FoodID    int64
	QuantityG float64
}

// RecipeDetail is the full recipe projection returned by the API.
type RecipeDetail struct {
	ID                 int64              `json:"id"`
	UUID               string             `json:"uuid"`
	FoodID             int64              `json:"food_id"`
	Name               string             `json:"name"`
	Portions           float64            `json:"portions"`
	TotalWeightG       float64            `json:"total_weight_g"`
	PerPortionG        float64            `json:"per_portion_g"`
	Ingredients        []RecipeIngredient `json:"ingredients"`
	PerPortionCalories float64            `json:"per_portion_calories"`
	PerPortionProtein  float64            `json:"per_portion_protein"`
	PerPortionCarbs    float64            `json:"per_portion_carbs"`
	PerPortionFat      float64            `json:"per_portion_fat"`
	CaloriesPer100g    float64            `json:"calories_per_100g"`
	ProteinPer100g     float64            `json:"protein_per_100g"`
	CarbsPer100g       float64            `json:"carbs_per_100g"`
	FatPer100g         float64            `json:"fat_per_100g"`
}

// DailyTarget is the per-weekday calorie target. Gram figures are
// derived from the macro percentages (4 kcal/g for protein and carbs,
// 9 kcal/g for fat).
type DailyTarget struct {
	DayOfWeek  int64    `json:"day_of_week"`
	Calories   int64    `json:"calories"`
	ProteinPct *int64   `json:"protein_pct"`
	CarbsPct   *int64   `json:"carbs_pct"`
	FatPct     *int64   `json:"fat_pct"`
	ProteinG   *float64 `json:"protein_g"`
	CarbsG     *float64 `json:"carbs_g"`
	FatG       *float64 `json:"fat_g"`
}

// NewDailyTarget builds a DailyTarget with derived gram values.
func NewDailyTarget(dayOfWeek, calories int64, proteinPct, carbsPct, fatPct *int64) DailyTarget {
	t := DailyTarget{
		DayOfWeek:  dayOfWeek,
		Calories:   calories,
		ProteinPct: proteinPct,
		CarbsPct:   carbsPct,
		FatPct:     fatPct,
	}
	cal := float64(calories)
	if proteinPct != nil {
		g := cal * float64(*proteinPct) / 100.0 / 4.0
		t.ProteinG = &g
	}
	if carbsPct != nil {
		g := cal * float64(*carbsPct) / 100.0 / 4.0
		t.CarbsG = &g
	}
	if fatPct != nil {
		g := cal * float64(*fatPct) / 100.0 / 9.0
		t.FatG = &g
	}
	return t
}

// WeightEntry is a body-weight measurement, unique per date.
type WeightEntry struct {
	ID        int64   `json:"id"`
	UUID      string  `json:"uuid"`
	Date      string  `json:"date"`
	WeightKg  float64 `json:"weight_kg"`
	Source    string  `json:"source"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// NewWeightEntry is the upsert payload for a weight entry.
type NewWeightEntry struct {
	Date     string
	WeightKg float64
	Source   string
	Notes    *string
}

// MealGroup is one meal's slice of a daily summary.
type MealGroup struct {
	MealType         string      `json:"meal_type"`
	Entries          []MealEntry `json:"entries"`
	SubtotalCalories float64     `json:"subtotal_calories"`
	SubtotalProtein  float64     `json:"subtotal_protein"`
	SubtotalCarbs    float64     `json:"subtotal_carbs"`
	SubtotalFat      float64     `json:"subtotal_fat"`
}

// DailySummary groups a day's entries by meal in canonical order.
type DailySummary struct {
	Date          string       `json:"date"`
	Meals         []MealGroup  `json:"meals"`
	TotalCalories float64      `json:"total_calories"`
	TotalProtein  float64      `json:"total_protein"`
	TotalCarbs    float64      `json:"total_carbs"`
	TotalFat      float64      `json:"total_fat"`
	Target        *DailyTarget `json:"target"`
}

// RecentFood is a food plus its logging history, for quick re-logging.
type RecentFood struct {
	Food         Food    `json:"food"`
	LastServingG float64 `json:"last_serving_g"`
	LastMealType string  `json:"last_meal_type"`
	LogCount     int64   `json:"log_count"`
	LastLogged   string  `json:"last_logged"`
}

// WatchGlance is the compact day status for watch complications.
type WatchGlance struct {
	Date              string   `json:"date"`
	CaloriesEaten     float64  `json:"calories_eaten"`
	CaloriesTarget    *int64   `json:"calories_target"`
	CaloriesRemaining *float64 `json:"calories_remaining"`
	ProteinG          float64  `json:"protein_g"`
	CarbsG            float64  `json:"carbs_g"`
	FatG              float64  `json:"fat_g"`
	ProteinTargetG    *float64 `json:"protein_target_g"`
	CarbsTargetG      *float64 `json:"carbs_target_g"`
	FatTargetG        *float64 `json:"fat_target_g"`
	MealCount         int64    `json:"meal_count"`
	LoggingStreak     int64    `json:"logging_streak"`
}

// WatchRecentFood is the compact recent-food row for watch UIs.
type WatchRecentFood struct {
	FoodID          int64   `json:"food_id"`
	Name            string  `json:"name"`
	Brand           *string `json:"brand"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	LastServingG    float64 `json:"last_serving_g"`
	LastMealType    string  `json:"last_meal_type"`
	LastCalories    float64 `json:"last_calories"`
}

// Tombstone marks a row deleted for sync propagation.
type Tombstone struct {
	UUID      string `json:"uuid" validate:"required"`
	TableName string `json:"table_name" validate:"required"`
	DeletedAt string `json:"deleted_at" validate:"required"`
}

// ExportMealEntry carries the food's uuid so remote sides can remap
// local food ids.
type ExportMealEntry struct {
	ID              int64    `json:"id"`
	UUID            string   `json:"uuid" validate:"required"`
	Date            string   `json:"date" validate:"required"`
	MealType        string   `json:"meal_type" validate:"required"`
	FoodID          int64    `json:"food_id"`
	ServingG        float64  `json:"serving_g" validate:"gt=0"`
	DisplayUnit     *string  `json:"display_unit"`
	DisplayQuantity *float64 `json:"display_quantity"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	FoodUUID        string   `json:"food_uuid"`
}

type ExportRecipe struct {
	ID        int64   `json:"id"`
	UUID      string  `json:"uuid" validate:"required"`
	FoodID    int64   `json:"food_id"`
	Portions  float64 `json:"portions" validate:"gt=0"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	FoodUUID  string  `json:"food_uuid"`
}

type ExportRecipeIngredient struct {
	ID         int64   `json:"id"`
	UUID       string  `json:"uuid" validate:"required"`
	RecipeID   int64   `json:"recipe_id"`
	FoodID     int64   `json:"food_id"`
	QuantityG  float64 `json:"quantity_g" validate:"gt=0"`
	RecipeUUID string  `json:"recipe_uuid"`
	FoodUUID   string  `json:"food_uuid"`
}

type ExportTarget struct {
	DayOfWeek  int64   `json:"day_of_week" validate:"gte=0,lte=6"`
	Calories   int64   `json:"calories" validate:"gt=0"`
	ProteinPct *int64  `json:"protein_pct"`
	CarbsPct   *int64  `json:"carbs_pct"`
	FatPct     *int64  `json:"fat_pct"`
	UpdatedAt  *string `json:"updated_at"`
}

type ExportWeightEntry struct {
	UUID      string  `json:"uuid" validate:"required"`
	Date      string  `json:"date" validate:"required"`
	WeightKg  float64 `json:"weight_kg" validate:"gt=0"`
	Source    string  `json:"source"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// LegacyTarget is the version-1 export's singleton target, before
// targets became per-weekday.
type LegacyTarget struct {
	Calories   int64   `json:"calories"`
	ProteinPct *int64  `json:"protein_pct"`
	CarbsPct   *int64  `json:"carbs_pct"`
	FatPct     *int64  `json:"fat_pct"`
	UpdatedAt  *string `json:"updated_at"`
}

// SyncPayload is a delta (or full dump) of everything changed since a
// given timestamp, stamped with the server clock.
type SyncPayload struct {
	Foods             []Food                   `json:"foods"`
	MealEntries       []ExportMealEntry        `json:"meal_entries"`
	Recipes           []ExportRecipe           `json:"recipes"`
	RecipeIngredients []ExportRecipeIngredient `json:"recipe_ingredients"`
	Targets           []ExportTarget           `json:"targets"`
	WeightEntries     []ExportWeightEntry      `json:"weight_entries"`
	Tombstones        []Tombstone              `json:"tombstones"`
	ServerTimestamp   string                   `json:"server_timestamp"`
}

// ExportData is the full-database export document (version 3).
type ExportData struct {
	Version           int64                    `json:"version"`
	ExportedAt        string                   `json:"exported_at"`
	DeviceID          *string                  `json:"device_id,omitempty"`
	Foods             []Food                   `json:"foods"`
	MealEntries       []ExportMealEntry        `json:"meal_entries"`
	Recipes           []ExportRecipe           `json:"recipes"`
	RecipeIngredients []ExportRecipeIngredient `json:"recipe_ingredients"`
	Target            *LegacyTarget            `json:"target,omitempty"`
	Targets           []ExportTarget           `json:"targets"`
	WeightEntries     []ExportWeightEntry      `json:"weight_entries"`
	Tombstones        []Tombstone              `json:"tombstones,omitempty"`
}

// ImportSummary reports what an import touched.
type ImportSummary struct {
	FoodsImported             int64 `json:"foods_imported"`
	MealEntriesImported       int64 `json:"meal_entries_imported"`
	RecipesImported           int64 `json:"recipes_imported"`
	RecipeIngredientsImported int64 `json:"recipe_ingredients_imported"`
	TargetsImported           int64 `json:"targets_imported"`
	WeightEntriesImported     int64 `json:"weight_entries_imported"`
	TombstonesProcessed       int64 `json:"tombstones_processed"`
}
