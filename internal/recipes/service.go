package recipes

import (
	"context"
	"errors"
	"strings"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrFoodNotFound   = errors.New("ingredient food not found")
)

// Storage defines the recipe operations the service needs.
type Storage interface {
	CreateRecipe(ctx context.Context, name string, portions float64) (*storage.RecipeDetail, error)
	GetRecipeDetail(ctx context.Context, id int64) (*storage.RecipeDetail, error)
	ListRecipes(ctx context.Context) ([]storage.RecipeDetail, error)
	ReplaceRecipeIngredients(ctx context.Context, recipeID int64, ingredients []storage.NewRecipeIngredient) error
	SetRecipePortions(ctx context.Context, recipeID int64, portions float64) error
	RenameRecipe(ctx context.Context, recipeID int64, name string) error
	DeleteRecipe(ctx context.Context, id int64) (bool, error)
	GetFoodByID(ctx context.Context, id int64) (*storage.Food, error)
}

// Service handles recipes and their derived virtual foods.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Create builds the recipe with its ingredient list.
func (s *Service) Create(ctx context.Context, req CreateRecipeRequest) (*storage.RecipeDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validate.Errorf("name must not be empty")
	}

	portions := 1.0
	if req.Portions != nil {
		portions = *req.Portions
	}
	if portions <= 0 {
		return nil, validate.Errorf("portions must be greater than 0")
	}

	ingredients, err := s.convertIngredients(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}

	detail, err := s.storage.CreateRecipe(ctx, name, portions)
	if err != nil {
		return nil, err
	}
	if len(ingredients) > 0 {
		if err := s.storage.ReplaceRecipeIngredients(ctx, detail.ID, ingredients); err != nil {
			return nil, err
		}
		return s.storage.GetRecipeDetail(ctx, detail.ID)
	}
	return detail, nil
}

// Get returns the full detail projection.
func (s *Service) Get(ctx context.Context, id int64) (*storage.RecipeDetail, error) {
	detail, err := s.storage.GetRecipeDetail(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return detail, nil
}

// List returns every recipe's detail projection.
func (s *Service) List(ctx context.Context) ([]storage.RecipeDetail, error) {
	return s.storage.ListRecipes(ctx)
}

// Update applies name, portions and ingredient changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRecipeRequest) (*storage.RecipeDetail, error) {
	if req.Name == nil && req.Portions == nil && req.Ingredients == nil {
		return nil, validate.Errorf("At least one field must be provided")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validate.Errorf("name must not be empty")
		}
		if err := s.storage.RenameRecipe(ctx, id, name); err != nil {
			return nil, err
		}
	}
	if req.Portions != nil {
		if *req.Portions <= 0 {
			return nil, validate.Errorf("portions must be greater than 0")
		}
		if err := s.storage.SetRecipePortions(ctx, id, *req.Portions); err != nil {
			return nil, err
		}
	}
	if req.Ingredients != nil {
		ingredients, err := s.convertIngredients(ctx, *req.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.storage.ReplaceRecipeIngredients(ctx, id, ingredients); err != nil {
			return nil, err
		}
	}

	return s.storage.GetRecipeDetail(ctx, id)
}

// Delete removes the recipe, its ingredients and virtual food.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.storage.DeleteRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRecipeNotFound
	}
	return nil
}

func (s *Service) convertIngredients(ctx context.Context, reqs []IngredientRequest) ([]storage.NewRecipeIngredient, error) {
	ingredients := make([]storage.NewRecipeIngredient, 0, len(reqs))
	for _, ing := range reqs {
		if ing.QuantityG <= 0 {
			return nil, validate.Errorf("ingredient quantity_g must be greater than 0")
		}
		if _, err := s.storage.GetFoodByID(ctx, ing.FoodID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrFoodNotFound
			}
			return nil, err
		}
		ingredients = append(ingredients, storage.NewRecipeIngredient{
			FoodID:    ing.FoodID,
			QuantityG: ing.QuantityG,
		})
	}
	return ingredients, nil
}
