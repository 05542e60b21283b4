package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AreaService manages organizational areas. Route-level guards restrict all
// operations to SUPERADMIN.
type AreaService struct {
	areas   repository.AreaRepository
	users   repository.UserRepository
	tickets repository.TicketRepository
}

// AreaDependencies bundles repositories.
type AreaDependencies struct {
	AreaRepo   repository.AreaRepository
	UserRepo   repository.UserRepository
	TicketRepo repository.TicketRepository
}

// NewAreaService creates the service.
func NewAreaService(deps AreaDependencies) *AreaService {
	return &AreaService{
		areas:   deps.AreaRepo,
		users:   deps.UserRepo,
		tickets: deps.TicketRepo,
	}
}

// CreateArea creates an area with a unique name.
func (s *AreaService) CreateArea(ctx context.Context, name string) (*domain.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if _, err := s.areas.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("area name already in use")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	area := &domain.Area{Name: name}
	if err := s.areas.Create(ctx, area); err != nil {
		return nil, apperrors.MapError(err)
	}
	return area, nil
}

// UpdateArea renames an area, keeping names unique.
func (s *AreaService) UpdateArea(ctx context.Context, id, name string) (*domain.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	area, err := s.fetchArea(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing, err := s.areas.GetByName(ctx, name); err == nil && existing.ID != area.ID {
		return nil, apperrors.NewConflict("area name already in use")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	area.Name = name
	if err := s.areas.Update(ctx, area); err != nil {
		return nil, apperrors.MapError(err)
	}
	return area, nil
}

// DeleteArea removes an area unless any user or ticket still references it.
func (s *AreaService) DeleteArea(ctx context.Context, id string) error {
	area, err := s.fetchArea(ctx, id)
	if err != nil {
		return err
	}
	userCount, err := s.users.CountByArea(ctx, area.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	ticketCount, err := s.tickets.CountByArea(ctx, area.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if userCount > 0 || ticketCount > 0 {
		return apperrors.NewConflict("area is still referenced by users or tickets")
	}
	if err := s.areas.Delete(ctx, area.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetArea fetches one area.
func (s *AreaService) GetArea(ctx context.Context, id string) (*domain.Area, error) {
	return s.fetchArea(ctx, id)
}

// ListAreas returns all areas.
func (s *AreaService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return areas, nil
}

func (s *AreaService) fetchArea(ctx context.Context, id string) (*domain.Area, error) {
	area, err := s.areas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("area")
		}
		return nil, apperrors.MapError(err)
	}
	return area, nil
}
