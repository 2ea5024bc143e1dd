// Package validate checks user-supplied and synced rows, producing the
// exact error messages the API contract promises. Struct-tag rules run
// through go-playground/validator; cross-field rules are checked by
// hand.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/grubapp/grub/internal/storage"
)

// Error is a user-facing validation failure. Handlers map it to 400
// with the message verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a validation Error.
func Errorf(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether err is a validation failure.
func IsError(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

var vld = validator.New()

// fieldMessages maps a struct field and failed tag to the wire message.
var fieldMessages = map[string]string{
	"UUID/required":       "uuid must not be empty",
	"Name/required":       "name must not be empty",
	"Date/required":       "date must not be empty",
	"MealType/required":   "meal_type must not be empty",
	"TableName/required":  "table_name must not be empty",
	"DeletedAt/required":  "deleted_at must not be empty",
	"ServingG/gt":         "serving_g must be greater than 0",
	"Portions/gt":         "portions must be greater than 0",
	"Calories/gt":         "calories must be greater than 0",
	"WeightKg/gt":         "weight_kg must be greater than 0",
	"DayOfWeek/gte":       "day must be between 0 (Monday) and 6 (Sunday)",
	"DayOfWeek/lte":       "day must be between 0 (Monday) and 6 (Sunday)",
	"CaloriesPer100g/gte": "calories_per_100g must not be negative",
	"ProteinPer100g/gte":  "protein_per_100g must not be negative",
	"CarbsPer100g/gte":    "carbs_per_100g must not be negative",
	"FatPer100g/gte":      "fat_per_100g must not be negative",
}

func structErr(v any) error {
	err := vld.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.StructField()+"/"+fe.Tag()]; ok {
		return &Error{Message: msg}
	}
	return Errorf("invalid value for %s", fe.StructField())
}

// MealType lowercases and checks the meal type, returning the
// normalized value.
func MealType(mealType string) (string, error) {
	m := strings.ToLower(mealType)
	for _, valid := range storage.MealTypes {
		if m == valid {
			return m, nil
		}
	}
	return "", Errorf("Invalid meal type '%s'. Must be one of: %s",
		mealType, strings.Join(storage.MealTypes, ", "))
}

// Date requires the YYYY-MM-DD form.
func Date(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Errorf("Invalid date '%s'. Use YYYY-MM-DD", date)
	}
	return nil
}

// MacroSplit requires each percentage in 0..100 and a sum of exactly
// 100.
func MacroSplit(proteinPct, carbsPct, fatPct int64) error {
	for _, pct := range []int64{proteinPct, carbsPct, fatPct} {
		if pct < 0 || pct > 100 {
			return Errorf("Macro percentages must be between 0 and 100")
		}
	}
	if sum := proteinPct + carbsPct + fatPct; sum != 100 {
		return Errorf("Macro percentages must sum to 100 (got %d)", sum)
	}
	return nil
}

// Food checks an insert payload.
func Food(f *storage.NewFood) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return Errorf("name must not be empty")
	}
	if f.CaloriesPer100g < 0 {
		return Errorf("calories_per_100g must not be negative")
	}
	for name, v := range map[string]*float64{
		"protein_per_100g": f.ProteinPer100g,
		"carbs_per_100g":   f.CarbsPer100g,
		"fat_per_100g":     f.FatPer100g,
	} {
		if v != nil && *v < 0 {
			return Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// ExportFood checks a synced food row.
func ExportFood(f *storage.Food) error {
	if f.UUID == "" {
		return Errorf("uuid must not be empty")
	}
	return structErr(f)
}

// ExportMealEntry checks a synced meal entry row.
func ExportMealEntry(e *storage.ExportMealEntry) error {
	if err := structErr(e); err != nil {
		return err
	}
	if _, err := MealType(e.MealType); err != nil {
		return err
	}
	return Date(e.Date)
}

func ExportRecipe(r *storage.ExportRecipe) error {
	return structErr(r)
}

func ExportRecipeIngredient(ing *storage.ExportRecipeIngredient) error {
	if ing.UUID == "" {
		return Errorf("uuid must not be empty")
	}
	if ing.QuantityG <= 0 {
		return Errorf("ingredient quantity_g must be greater than 0")
	}
	return nil
}

// ExportTarget checks day range, calories and the all-or-none macro
// triple.
func ExportTarget(t *storage.ExportTarget) error {
	if err := structErr(t); err != nil {
		return err
	}
	set := 0
	for _, pct := range []*int64{t.ProteinPct, t.CarbsPct, t.FatPct} {
		if pct != nil {
			set++
		}
	}
	if set != 0 && set != 3 {
		return Errorf("If setting macro percentages, all three (protein_pct, carbs_pct, fat_pct) must be provided")
	}
	if set == 3 {
		return MacroSplit(*t.ProteinPct, *t.CarbsPct, *t.FatPct)
	}
	return nil
}

func ExportWeightEntry(w *storage.ExportWeightEntry) error {
	if err := structErr(w); err != nil {
		return err
	}
	return Date(w.Date)
}

// Tombstone checks the table whitelist and the deleted_at timestamp,
// clamping future timestamps to now.
func Tombstone(t *storage.Tombstone) error {
	if err := structErr(t); err != nil {
		return err
	}
	valid := false
	for _, table := range storage.ValidTombstoneTables {
		if t.TableName == table {
			valid = true
			break
		}
	}
	if !valid {
		return Errorf("Invalid tombstone table '%s'", t.TableName)
	}
	deletedAt, err := time.Parse(time.RFC3339, t.DeletedAt)
	if err != nil {
		return Errorf("Invalid tombstone deleted_at '%s'", t.DeletedAt)
	}
	if now := time.Now().UTC(); deletedAt.After(now) {
		t.DeletedAt = now.Format(time.RFC3339)
	}
	return nil
}
