package targets

import (
	"context"
	"errors"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

var ErrTargetNotFound = errors.New("target not found")

// Storage defines the target operations the service needs.
type Storage interface {
	SetTarget(ctx context.Context, t storage.ExportTarget) (*storage.DailyTarget, error)
	GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error)
	AllTargets(ctx context.Context) ([]storage.DailyTarget, error)
	ClearTarget(ctx context.Context, dayOfWeek int64) (bool, error)
	ClearAllTargets(ctx context.Context) (bool, error)
}

// Service handles per-weekday calorie and macro targets.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// SetTarget validates and upserts the target for one weekday.
func (s *Service) SetTarget(ctx context.Context, dayOfWeek int64, req SetTargetRequest) (*storage.DailyTarget, error) {
	t := storage.ExportTarget{
		DayOfWeek:  dayOfWeek,
		Calories:   req.Calories,
		ProteinPct: req.ProteinPct,
		CarbsPct:   req.CarbsPct,
		FatPct:     req.FatPct,
	}
	if err := validate.ExportTarget(&t); err != nil {
		return nil, err
	}
	return s.storage.SetTarget(ctx, t)
}

// GetTarget returns the weekday's target.
func (s *Service) GetTarget(ctx context.Context, dayOfWeek int64) (*storage.DailyTarget, error) {
	t, err := s.storage.GetTarget(ctx, dayOfWeek)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return t, nil
}

// AllTargets returns every set weekday.
func (s *Service) AllTargets(ctx context.Context) ([]storage.DailyTarget, error) {
	return s.storage.AllTargets(ctx)
}

// ClearTarget removes one weekday's target, reporting whether anything
// was removed.
func (s *Service) ClearTarget(ctx context.Context, dayOfWeek int64) (bool, error) {
	return s.storage.ClearTarget(ctx, dayOfWeek)
}

// ClearAll removes every target.
func (s *Service) ClearAll(ctx context.Context) (bool, error) {
	return s.storage.ClearAllTargets(ctx)
}
