package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/notification-gateway/internal/entity"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type notificationLogRepository struct {
	db *sql.DB
}

func NewNotificationLogRepository(db *sql.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

// CreatePending inserts the log row in 'pending' state and invokes enqueue
// before committing. If the insert hits the request_id unique constraint the
// enqueue is never attempted; if enqueue fails the row is rolled back.
func (r *notificationLogRepository) CreatePending(ctx context.Context, logEntry *entity.NotificationLog, enqueue func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO notification_logs (request_id, user_id, notification_type, status, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	logEntry.Status = entity.StatusPending
	err = tx.QueryRowContext(ctx, query,
		logEntry.RequestID,
		logEntry.UserID,
		logEntry.NotificationType,
		logEntry.Status,
		logEntry.ErrorMessage,
	).Scan(&logEntry.ID, &logEntry.CreatedAt, &logEntry.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entity.ErrDuplicateRequest
		}
		return fmt.Errorf("failed to insert notification log: %w", err)
	}

	if err := enqueue(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *notificationLogRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.NotificationLog, error) {
	query := `
		SELECT id, request_id, user_id, notification_type, status, error_message, created_at, updated_at
		FROM notification_logs
		WHERE request_id = $1
	`

	var logEntry entity.NotificationLog
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(
		&logEntry.ID,
		&logEntry.RequestID,
		&logEntry.UserID,
		&logEntry.NotificationType,
		&logEntry.Status,
		&logEntry.ErrorMessage,
		&logEntry.CreatedAt,
		&logEntry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}

	return &logEntry, nil
}

// UpdateStatus overwrites status and error_message unconditionally.
// Last write wins; out-of-order webhook deliveries are not sequenced.
func (r *notificationLogRepository) UpdateStatus(ctx context.Context, requestID, status string, errorMessage *string) (*entity.NotificationLog, error) {
	query := `
		UPDATE notification_logs
		SET status = $2, error_message = $3, updated_at = CURRENT_TIMESTAMP
		WHERE request_id = $1
		RETURNING id, request_id, user_id, notification_type, status, error_message, created_at, updated_at
	`

	var logEntry entity.NotificationLog
	err := r.db.QueryRowContext(ctx, query, requestID, status, errorMessage).Scan(
		&logEntry.ID,
		&logEntry.RequestID,
		&logEntry.UserID,
		&logEntry.NotificationType,
		&logEntry.Status,
		&logEntry.ErrorMessage,
		&logEntry.CreatedAt,
		&logEntry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to update notification status: %w", err)
	}

	return &logEntry, nil
}
