package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashkhees/support-portal/internal/domain"
)

// NotificationRepository stores per-email notification inboxes.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, email string) (int64, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, email string) error
	DeleteOwned(ctx context.Context, id, email string) error
	DeleteAllForEmail(ctx context.Context, email string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, user_email, user_id, type, title, message, ticket_id, ticket_number, is_read, metadata, created_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	meta, err := json.Marshal(notification.Metadata)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO notifications (user_email, user_id, type, title, message, ticket_id, ticket_number, metadata)
        VALUES (LOWER($1),$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, user_email, is_read, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.UserEmail,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.TicketID,
		notification.TicketNumber,
		meta,
	).Scan(&notification.ID, &notification.UserEmail, &notification.IsRead, &notification.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1`
	var notification domain.Notification
	if err := scanNotification(r.pool.QueryRow(ctx, query, id), &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListByEmail(ctx context.Context, email string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + `
        FROM notifications WHERE LOWER(user_email)=LOWER($1)
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := scanNotification(rows, &notification); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE LOWER(user_email)=LOWER($1) AND NOT is_read`,
		email).Scan(&count)
	return count, err
}

// MarkRead is idempotent: re-reading an already read notification succeeds
// and returns the unchanged record.
func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	query := `UPDATE notifications SET is_read=TRUE WHERE id=$1 RETURNING ` + notificationColumns
	var notification domain.Notification
	if err := scanNotification(r.pool.QueryRow(ctx, query, id), &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE LOWER(user_email)=LOWER($1) AND NOT is_read`,
		email)
	return err
}

func (r *notificationRepository) DeleteOwned(ctx context.Context, id, email string) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id=$1 AND LOWER(user_email)=LOWER($2)`,
		id, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) DeleteAllForEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE LOWER(user_email)=LOWER($1)`, email)
	return err
}

func scanNotification(row pgx.Row, notification *domain.Notification) error {
	var meta []byte
	if err := row.Scan(
		&notification.ID,
		&notification.UserEmail,
		&notification.UserID,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&notification.TicketID,
		&notification.TicketNumber,
		&notification.IsRead,
		&meta,
		&notification.CreatedAt,
	); err != nil {
		return err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &notification.Metadata); err != nil {
			return err
		}
	}
	return nil
}
