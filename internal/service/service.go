package service

import (
	"context"

	"github.com/ds124wfegd/notification-gateway/internal/entity"
)

// SubmitResult reports the outcome of an admitted request. Suppressed means
// the user opted out of the channel: the request succeeded but nothing was
// logged or published.
type SubmitResult struct {
	RequestID  string `json:"request_id"`
	Suppressed bool   `json:"suppressed,omitempty"`
}

type NotificationUseCase interface {
	SubmitNotification(ctx context.Context, clientIP, authToken string, req *entity.NotificationRequest) (*SubmitResult, error)
	GetStatus(ctx context.Context, requestID string) (*entity.NotificationLog, error)
	ApplyStatusUpdate(ctx context.Context, upd *entity.StatusUpdateRequest) (*entity.NotificationLog, error)
}
