package foods

import (
	"context"
	"errors"
	"log"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

var ErrFoodNotFound = errors.New("food not found")

// Storage defines the food catalog operations the service needs.
type Storage interface {
	InsertFood(ctx context.Context, f storage.NewFood) (*storage.Food, error)
	UpsertFoodByBarcode(ctx context.Context, f storage.NewFood) (*storage.Food, error)
	GetFoodByBarcode(ctx context.Context, barcode string) (*storage.Food, error)
	SearchFoods(ctx context.Context, query string) ([]storage.Food, error)
	RecentFoods(ctx context.Context, limit int64) ([]storage.RecentFood, error)
}

// Provider resolves foods against a remote database. A nil provider
// disables remote lookup.
type Provider interface {
	Search(ctx context.Context, query string) ([]storage.NewFood, error)
	LookupBarcode(ctx context.Context, code string) (*storage.NewFood, error)
}

// Service handles food catalog logic.
type Service struct {
	storage  Storage
	provider Provider
}

func NewService(storage Storage, provider Provider) *Service {
	return &Service{storage: storage, provider: provider}
}

// CreateFood validates and inserts a manual food.
func (s *Service) CreateFood(ctx context.Context, req CreateFoodRequest) (*storage.Food, error) {
	f := storage.NewFood{
		Name:            req.Name,
		Brand:           req.Brand,
		Barcode:         req.Barcode,
		CaloriesPer100g: req.CaloriesPer100g,
		ProteinPer100g:  req.ProteinPer100g,
		CarbsPer100g:    req.CarbsPer100g,
		FatPer100g:      req.FatPer100g,
		DefaultServingG: req.DefaultServingG,
	}
	if req.Source != nil {
		f.Source = *req.Source
	}

	if err := validate.Food(&f); err != nil {
		return nil, err
	}
	return s.storage.InsertFood(ctx, f)
}

// Search combines local matches with remote results. Remote hits are
// cached locally so repeated searches stay offline; remote failures
// degrade to local-only results.
func (s *Service) Search(ctx context.Context, query string) ([]storage.Food, error) {
	local, err := s.storage.SearchFoods(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.provider == nil {
		return local, nil
	}

	remote, err := s.provider.Search(ctx, query)
	if err != nil {
		log.Printf("WARN food search: remote lookup failed: %v", err)
		return local, nil
	}

	seen := map[int64]bool{}
	for _, f := range local {
		seen[f.ID] = true
	}

	results := local
	for _, nf := range remote {
		cached, err := s.storage.UpsertFoodByBarcode(ctx, nf)
		if err != nil {
			// The barcode may be held by a conflicting row; cache the
			// result without it rather than dropping it.
			stripped := nf
			stripped.Barcode = nil
			cached, err = s.storage.InsertFood(ctx, stripped)
			if err != nil {
				log.Printf("WARN food search: failed to cache remote food: %v", err)
				continue
			}
		}
		if seen[cached.ID] {
			continue
		}
		seen[cached.ID] = true
		results = append(results, *cached)
	}
	return results, nil
}

// LookupBarcode returns the cached food for the barcode, falling back
// to the remote provider and caching its answer.
func (s *Service) LookupBarcode(ctx context.Context, code string) (*storage.Food, error) {
	food, err := s.storage.GetFoodByBarcode(ctx, code)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if s.provider == nil {
		return nil, ErrFoodNotFound
	}

	nf, err := s.provider.LookupBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	if nf == nil {
		return nil, ErrFoodNotFound
	}
	return s.storage.UpsertFoodByBarcode(ctx, *nf)
}

// RecentFoods lists recently logged foods for quick re-logging.
func (s *Service) RecentFoods(ctx context.Context, limit int64) ([]storage.RecentFood, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.storage.RecentFoods(ctx, limit)
}
