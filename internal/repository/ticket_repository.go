package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashkhees/support-portal/internal/domain"
)

// TicketFilter captures listing parameters. UserEmail and AssignedTo act
// as the role scope; the rest are user-selected filters layered on top.
type TicketFilter struct {
	UserEmail  *string
	AssignedTo *string
	Unassigned bool
	Status     *domain.TicketStatus
	Product    *domain.Product
	Priority   *domain.TicketPriority
	Search     *string
}

// TicketStats aggregates per-status and per-priority counts over a scope.
type TicketStats struct {
	Total        int64
	ToDo         int64
	InProgress   int64
	InProgressQA int64
	Completed    int64
	Done         int64
	Unassigned   int64
	Critical     int64
	High         int64
	Medium       int64
	Low          int64
}

// DeveloperWorkload counts tickets on one developer's plate.
type DeveloperWorkload struct {
	Total      int64
	InProgress int64
	Completed  int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Touch(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Stats(ctx context.Context, scope TicketFilter) (TicketStats, error)
	Workload(ctx context.Context, developerID string) (DeveloperWorkload, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.ticket_code, t.user_id, t.user_name, t.user_email, t.product,
               t.subject, t.description, t.status, t.priority, t.assigned_to, u.name, u.email,
               t.attachment_path, t.created_at, t.updated_at`

const ticketBase = `SELECT ` + ticketColumns + `
             FROM tickets t LEFT JOIN users u ON u.id = t.assigned_to`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_code, user_id, user_name, user_email, product, subject, description, status, priority, attachment_path)
        VALUES ('TSK-' || LPAD(nextval('ticket_code_seq')::text, 4, '0'), $1,$2,LOWER($3),$4,$5,$6,$7,$8,$9)
        RETURNING id, ticket_code, user_email, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UserID,
		ticket.UserName,
		ticket.UserEmail,
		ticket.Product,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AttachmentPath,
	).Scan(&ticket.ID, &ticket.TicketCode, &ticket.UserEmail, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, assigned_to=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
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

// Touch bumps updated_at, used when a reply lands on the ticket.
func (r *ticketRepository) Touch(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := ticketBase + ` WHERE t.id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := ticketClauses(filter)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC`, ticketBase, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Stats computes dashboard counts over the role-scoped base set. Only the
// scope fields of the filter participate; user-selected filters do not
// narrow the stats.
func (r *ticketRepository) Stats(ctx context.Context, scope TicketFilter) (TicketStats, error) {
	clauses, args := ticketClauses(TicketFilter{
		UserEmail:  scope.UserEmail,
		AssignedTo: scope.AssignedTo,
	})
	query := fmt.Sprintf(`
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE t.status='TO DO'),
               COUNT(*) FILTER (WHERE t.status='In Progress'),
               COUNT(*) FILTER (WHERE t.status='In Progress QA'),
               COUNT(*) FILTER (WHERE t.status='Completed'),
               COUNT(*) FILTER (WHERE t.status='Done'),
               COUNT(*) FILTER (WHERE t.assigned_to IS NULL),
               COUNT(*) FILTER (WHERE t.priority='Critical'),
               COUNT(*) FILTER (WHERE t.priority='High'),
               COUNT(*) FILTER (WHERE t.priority='Medium'),
               COUNT(*) FILTER (WHERE t.priority='Low')
        FROM tickets t WHERE %s`, strings.Join(clauses, " AND "))

	var stats TicketStats
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.ToDo,
		&stats.InProgress,
		&stats.InProgressQA,
		&stats.Completed,
		&stats.Done,
		&stats.Unassigned,
		&stats.Critical,
		&stats.High,
		&stats.Medium,
		&stats.Low,
	)
	return stats, err
}

func (r *ticketRepository) Workload(ctx context.Context, developerID string) (DeveloperWorkload, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status IN ('In Progress', 'In Progress QA')),
               COUNT(*) FILTER (WHERE status IN ('Completed', 'Done'))
        FROM tickets WHERE assigned_to=$1`
	var load DeveloperWorkload
	err := r.pool.QueryRow(ctx, query, developerID).Scan(&load.Total, &load.InProgress, &load.Completed)
	return load, err
}

func ticketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserEmail != nil {
		args = append(args, *filter.UserEmail)
		clauses = append(clauses, fmt.Sprintf("LOWER(t.user_email)=LOWER($%d)", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	} else if filter.Unassigned {
		clauses = append(clauses, "t.assigned_to IS NULL")
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Product != nil {
		args = append(args, *filter.Product)
		clauses = append(clauses, fmt.Sprintf("t.product=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.ticket_code) LIKE %s OR LOWER(t.subject) LIKE %s OR LOWER(t.user_name) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.UserID,
		&ticket.UserName,
		&ticket.UserEmail,
		&ticket.Product,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.AssigneeName,
		&ticket.AssigneeEmail,
		&ticket.AttachmentPath,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
