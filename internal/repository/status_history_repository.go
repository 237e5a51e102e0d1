package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashkhees/support-portal/internal/domain"
)

// StatusHistoryRepository stores the append-only status audit trail.
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusChange) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Append(ctx context.Context, entry *domain.StatusChange) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, status, changed_by, changed_at)
        VALUES ($1,$2,$3,COALESCE($4, NOW()))
        RETURNING id, changed_at`
	var changedAt any
	if !entry.ChangedAt.IsZero() {
		changedAt = entry.ChangedAt
	}
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.ChangedBy,
		changedAt,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error) {
	const query = `
        SELECT h.id, h.ticket_id, h.status, h.changed_by, u.name, h.changed_at
        FROM ticket_status_history h LEFT JOIN users u ON u.id = h.changed_by
        WHERE h.ticket_id=$1 ORDER BY h.changed_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusChange
	for rows.Next() {
		var entry domain.StatusChange
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Status,
			&entry.ChangedBy,
			&entry.ChangedByName,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
