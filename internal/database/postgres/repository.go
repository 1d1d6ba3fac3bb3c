package repository

import (
	"context"

	"github.com/ds124wfegd/notification-gateway/internal/entity"
)

// NotificationLogRepository is the source of truth for a notification's
// lifecycle. CreatePending runs the insert and the enqueue callback inside one
// transaction: the pending row is committed only if enqueue returns nil.
type NotificationLogRepository interface {
	CreatePending(ctx context.Context, logEntry *entity.NotificationLog, enqueue func(ctx context.Context) error) error
	GetByRequestID(ctx context.Context, requestID string) (*entity.NotificationLog, error)
	UpdateStatus(ctx context.Context, requestID, status string, errorMessage *string) (*entity.NotificationLog, error)
}
