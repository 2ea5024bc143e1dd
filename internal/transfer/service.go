// Package transfer implements full-database export and import.
package transfer

import (
	"context"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

const exportVersion = 3

// Storage defines the dump and restore operations the service needs.
type Storage interface {
	FoodsSince(ctx context.Context, since *string) ([]storage.Food, error)
	MealEntriesSince(ctx context.Context, since *string) ([]storage.ExportMealEntry, error)
	RecipesSince(ctx context.Context, since *string) ([]storage.ExportRecipe, error)
	RecipeIngredientsSince(ctx context.Context, since *string) ([]storage.ExportRecipeIngredient, error)
	TargetsSince(ctx context.Context, since *string) ([]storage.ExportTarget, error)
	WeightEntriesSince(ctx context.Context, since *string) ([]storage.ExportWeightEntry, error)
	TombstonesSince(ctx context.Context, since *string) ([]storage.Tombstone, error)
	GetOrCreateDeviceID(ctx context.Context) (string, error)
	MergeImport(ctx context.Context, data *storage.ExportData) (*storage.ImportSummary, error)
	ImportV1(ctx context.Context, data *storage.ExportData) (*storage.ImportSummary, error)
}

// Service handles export and import of the whole database.
type Service struct {
	storage Storage
	now     func() string
}

func NewService(storage Storage, now func() string) *Service {
	return &Service{storage: storage, now: now}
}

// Export dumps everything as a version 3 document, including
// tombstones and the device identity.
func (s *Service) Export(ctx context.Context) (*storage.ExportData, error) {
	data := &storage.ExportData{
		Version:    exportVersion,
		ExportedAt: s.now(),
	}

	deviceID, err := s.storage.GetOrCreateDeviceID(ctx)
	if err != nil {
		return nil, err
	}
	data.DeviceID = &deviceID

	if data.Foods, err = s.storage.FoodsSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.MealEntries, err = s.storage.MealEntriesSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.Recipes, err = s.storage.RecipesSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.RecipeIngredients, err = s.storage.RecipeIngredientsSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.Targets, err = s.storage.TargetsSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.WeightEntries, err = s.storage.WeightEntriesSince(ctx, nil); err != nil {
		return nil, err
	}
	if data.Tombstones, err = s.storage.TombstonesSince(ctx, nil); err != nil {
		return nil, err
	}
	return data, nil
}

// Import restores a document: version >= 2 merges with
// last-writer-wins, version 1 restores by original ids.
func (s *Service) Import(ctx context.Context, data *storage.ExportData) (*storage.ImportSummary, error) {
	switch {
	case data.Version >= 2:
		if err := validateExport(data); err != nil {
			return nil, err
		}
		return s.storage.MergeImport(ctx, data)
	case data.Version == 1:
		return s.storage.ImportV1(ctx, data)
	default:
		return nil, validate.Errorf("Unsupported export version %d", data.Version)
	}
}

func validateExport(data *storage.ExportData) error {
	for i := range data.Foods {
		if err := validate.ExportFood(&data.Foods[i]); err != nil {
			return err
		}
	}
	for i := range data.MealEntries {
		if err := validate.ExportMealEntry(&data.MealEntries[i]); err != nil {
			return err
		}
	}
	for i := range data.Recipes {
		if err := validate.ExportRecipe(&data.Recipes[i]); err != nil {
			return err
		}
	}
	for i := range data.RecipeIngredients {
		if err := validate.ExportRecipeIngredient(&data.RecipeIngredients[i]); err != nil {
			return err
		}
	}
	for i := range data.Targets {
		if err := validate.ExportTarget(&data.Targets[i]); err != nil {
			return err
		}
	}
	for i := range data.WeightEntries {
		if err := validate.ExportWeightEntry(&data.WeightEntries[i]); err != nil {
			return err
		}
	}
	for i := range data.Tombstones {
		if err := validate.Tombstone(&data.Tombstones[i]); err != nil {
			return err
		}
	}
	return nil
}
