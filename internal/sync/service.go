// Package sync implements delta synchronization between devices and
// this server.
package sync

import (
	"context"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

// Storage defines the sync operations the service needs.
type Storage interface {
	ChangesSince(ctx context.Context, since *string) (*storage.SyncPayload, error)
	ApplyRemoteChanges(ctx context.Context, payload *storage.SyncPayload) error
}

// Service handles pull and push sync.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Pull returns everything changed after since (everything when nil),
// stamped with the server clock.
func (s *Service) Pull(ctx context.Context, since *string) (*storage.SyncPayload, error) {
	return s.storage.ChangesSince(ctx, since)
}

// Push validates and merges the pushed changes, returning the delta
// the client is missing. The delta is snapshotted before the merge so
// the pushed rows are not echoed back.
func (s *Service) Push(ctx context.Context, since *string, payload *storage.SyncPayload) (*storage.SyncPayload, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	delta, err := s.storage.ChangesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	if err := s.storage.ApplyRemoteChanges(ctx, payload); err != nil {
		return nil, err
	}
	return delta, nil
}

// validatePayload checks every incoming row before anything is
// written. Tombstone validation clamps future deleted_at values in
// place.
func validatePayload(payload *storage.SyncPayload) error {
	for i := range payload.Foods {
		if err := validate.ExportFood(&payload.Foods[i]); err != nil {
			return err
		}
	}
	for i := range payload.MealEntries {
		if err := validate.ExportMealEntry(&payload.MealEntries[i]); err != nil {
			return err
		}
	}
	for i := range payload.Recipes {
		if err := validate.ExportRecipe(&payload.Recipes[i]); err != nil {
			return err
		}
	}
	for i := range payload.RecipeIngredients {
		if err := validate.ExportRecipeIngredient(&payload.RecipeIngredients[i]); err != nil {
			return err
		}
	}
	for i := range payload.Targets {
		if err := validate.ExportTarget(&payload.Targets[i]); err != nil {
			return err
		}
	}
	for i := range payload.WeightEntries {
		if err := validate.ExportWeightEntry(&payload.WeightEntries[i]); err != nil {
			return err
		}
	}
	for i := range payload.Tombstones {
		if err := validate.Tombstone(&payload.Tombstones[i]); err != nil {
			return err
		}
	}
	return nil
}
