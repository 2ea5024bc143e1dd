package weights

import (
	"context"
	"errors"
	"time"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

var ErrWeightNotFound = errors.New("weight entry not found")

// Storage defines the weight log operations the service needs.
type Storage interface {
	UpsertWeight(ctx context.Context, e storage.NewWeightEntry) (*storage.WeightEntry, error)
	GetWeight(ctx context.Context, date string) (*storage.WeightEntry, error)
	WeightHistory(ctx context.Context, start, end string, limit int64) ([]storage.WeightEntry, error)
	DeleteWeight(ctx context.Context, id int64) error
}

// Service handles the body-weight log.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// LogWeight validates and upserts the day's measurement.
func (s *Service) LogWeight(ctx context.Context, req LogWeightRequest) (*storage.WeightEntry, error) {
	if req.WeightKg <= 0 {
		return nil, validate.Errorf("weight_kg must be greater than 0")
	}

	date := time.Now().Format("2006-01-02")
	if req.Date != nil {
		if err := validate.Date(*req.Date); err != nil {
			return nil, err
		}
		date = *req.Date
	}

	entry := storage.NewWeightEntry{
		Date:     date,
		WeightKg: req.WeightKg,
		Notes:    req.Notes,
	}
	if req.Source != nil {
		entry.Source = *req.Source
	}
	return s.storage.UpsertWeight(ctx, entry)
}

// GetWeight returns the measurement for a date.
func (s *Service) GetWeight(ctx context.Context, date string) (*storage.WeightEntry, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	entry, err := s.storage.GetWeight(ctx, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrWeightNotFound
		}
		return nil, err
	}
	return entry, nil
}

// History returns entries newest first, optionally windowed to a date
// range and capped.
func (s *Service) History(ctx context.Context, start, end string, limit int64) ([]storage.WeightEntry, error) {
	if start != "" {
		if err := validate.Date(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if err := validate.Date(end); err != nil {
			return nil, err
		}
	}

	return s.storage.WeightHistory(ctx, start, end, limit)
}

// DeleteEntry removes a measurement by id.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	err := s.storage.DeleteWeight(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrWeightNotFound
	}
	return err
}
