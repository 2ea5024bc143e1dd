package meals

import (
	"context"
	"errors"
	"time"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

var (
	ErrEntryNotFound = errors.New("meal entry not found")
	ErrFoodNotFound  = errors.New("food not found")
)

// Storage defines the meal entry operations the service needs.
type Storage interface {
	GetFoodByID(ctx context.Context, id int64) (*storage.Food, error)
	InsertMealEntry(ctx context.Context, e storage.NewMealEntry) (*storage.MealEntry, error)
	UpdateMealEntry(ctx context.Context, id int64, upd storage.UpdateMealEntry) (*storage.MealEntry, error)
	DeleteMealEntry(ctx context.Context, id int64) (bool, error)
}

// Service handles meal logging.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// LogMeal validates the request and inserts the entry. The serving is
// taken from serving_g, or converted from quantity+unit with the pair
// stored for display.
func (s *Service) LogMeal(ctx context.Context, req LogMealRequest) (*storage.MealEntry, error) {
	mealType, err := validate.MealType(req.MealType)
	if err != nil {
		return nil, err
	}

	date := time.Now().Format("2006-01-02")
	if req.Date != nil {
		if err := validate.Date(*req.Date); err != nil {
			return nil, err
		}
		date = *req.Date
	}

	entry := storage.NewMealEntry{
		Date:     date,
		MealType: mealType,
		FoodID:   req.FoodID,
	}

	switch {
	case req.ServingG != nil:
		entry.ServingG = *req.ServingG
		entry.DisplayUnit = req.Unit
		entry.DisplayQuantity = req.Quantity
	case req.Quantity != nil && req.Unit != nil:
		grams, _, ok := convertToGrams(*req.Quantity, *req.Unit)
		if !ok {
			return nil, validate.Errorf("Unknown unit '%s'", *req.Unit)
		}
		entry.ServingG = grams
		entry.DisplayUnit = req.Unit
		entry.DisplayQuantity = req.Quantity
	default:
		return nil, validate.Errorf("Either serving_g or quantity and unit must be provided")
	}

	if entry.ServingG <= 0 {
		return nil, validate.Errorf("serving_g must be greater than 0")
	}

	if _, err := s.storage.GetFoodByID(ctx, req.FoodID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}

	return s.storage.InsertMealEntry(ctx, entry)
}

// UpdateEntry patches the provided fields.
func (s *Service) UpdateEntry(ctx context.Context, id int64, req UpdateMealRequest) (*storage.MealEntry, error) {
	if req.ServingG == nil && req.MealType == nil && req.Date == nil &&
		!req.DisplayUnit.Set && !req.DisplayQuantity.Set {
		return nil, validate.Errorf("At least one field must be provided")
	}

	upd := storage.UpdateMealEntry{
		ServingG:           req.ServingG,
		Date:               req.Date,
		SetDisplayUnit:     req.DisplayUnit.Set,
		DisplayUnit:        req.DisplayUnit.Value,
		SetDisplayQuantity: req.DisplayQuantity.Set,
		DisplayQuantity:    req.DisplayQuantity.Value,
	}

	if req.ServingG != nil && *req.ServingG <= 0 {
		return nil, validate.Errorf("serving_g must be greater than 0")
	}
	if req.MealType != nil {
		mealType, err := validate.MealType(*req.MealType)
		if err != nil {
			return nil, err
		}
		upd.MealType = &mealType
	}
	if req.Date != nil {
		if err := validate.Date(*req.Date); err != nil {
			return nil, err
		}
	}

	entry, err := s.storage.UpdateMealEntry(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes the entry.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	deleted, err := s.storage.DeleteMealEntry(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	return nil
}
