package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// AreaRepository manages area persistence.
type AreaRepository interface {
	Create(ctx context.Context, area *domain.Area) error
	Update(ctx context.Context, area *domain.Area) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Area, error)
	GetByName(ctx context.Context, name string) (*domain.Area, error)
	List(ctx context.Context) ([]domain.Area, error)
}

type areaRepository struct {
	pool *pgxpool.Pool
}

// NewAreaRepository builds the repository.
func NewAreaRepository(pool *pgxpool.Pool) AreaRepository {
	return &areaRepository{pool: pool}
}

func (r *areaRepository) Create(ctx context.Context, area *domain.Area) error {
	const query = `
        INSERT INTO areas (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, area.Name).
		Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
}

func (r *areaRepository) Update(ctx context.Context, area *domain.Area) error {
	const query = `UPDATE areas SET name=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, area.Name, area.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *areaRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM areas WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *areaRepository) GetByID(ctx context.Context, id string) (*domain.Area, error) {
	const query = `SELECT id, name, created_at, updated_at FROM areas WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *areaRepository) GetByName(ctx context.Context, name string) (*domain.Area, error) {
	const query = `SELECT id, name, created_at, updated_at FROM areas WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *areaRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Area, error) {
	var area domain.Area
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&area.ID,
		&area.Name,
		&area.CreatedAt,
		&area.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) List(ctx context.Context) ([]domain.Area, error) {
	const query = `SELECT id, name, created_at, updated_at FROM areas ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Area
	for rows.Next() {
		var area domain.Area
		if err := rows.Scan(&area.ID, &area.Name, &area.CreatedAt, &area.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, area)
	}
	return result, rows.Err()
}
