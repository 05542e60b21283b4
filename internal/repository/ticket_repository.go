package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketFilter captures listing parameters. A nil AssigneeIDs means
// unrestricted; MatchNone short-circuits to an empty result.
type TicketFilter struct {
	AssigneeIDs []string
	AreaID      *string
	Status      *domain.TicketStatus
	MatchNone   bool
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByArea(ctx context.Context, areaID string) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, area_id, target_area_id, assigned_to_id, transfer_to_id, transfer_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, last_activity_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.AreaID,
		ticket.TargetAreaID,
		ticket.AssignedToID,
		ticket.TransferToID,
		ticket.TransferStatus,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.LastActivityAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, area_id=$4, target_area_id=$5,
            assigned_to_id=$6, transfer_to_id=$7, transfer_status=$8, last_activity_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.AreaID,
		ticket.TargetAreaID,
		ticket.AssignedToID,
		ticket.TransferToID,
		ticket.TransferStatus,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, area_id, target_area_id,
               assigned_to_id, transfer_to_id, transfer_status, created_at, last_activity_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.AreaID,
		&ticket.TargetAreaID,
		&ticket.AssignedToID,
		&ticket.TransferToID,
		&ticket.TransferStatus,
		&ticket.CreatedAt,
		&ticket.LastActivityAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, status, area_id, target_area_id,
                    assigned_to_id, transfer_to_id, transfer_status, created_at, last_activity_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.MatchNone {
		return []domain.Ticket{}, nil
	}
	if filter.AssigneeIDs != nil {
		if len(filter.AssigneeIDs) == 0 {
			return []domain.Ticket{}, nil
		}
		placeholders := make([]string, len(filter.AssigneeIDs))
		for i, id := range filter.AssigneeIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("assigned_to_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AreaID != nil {
		args = append(args, *filter.AreaID)
		clauses = append(clauses, fmt.Sprintf("area_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByArea(ctx context.Context, areaID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE area_id=$1 OR target_area_id=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, areaID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.AreaID,
			&ticket.TargetAreaID,
			&ticket.AssignedToID,
			&ticket.TransferToID,
			&ticket.TransferStatus,
			&ticket.CreatedAt,
			&ticket.LastActivityAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
