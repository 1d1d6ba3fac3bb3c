package service

import (
	"context"

	repository "github.com/ds124wfegd/notification-gateway/internal/database/postgres"
	"github.com/ds124wfegd/notification-gateway/internal/database/redis"
	"github.com/ds124wfegd/notification-gateway/internal/entity"
	"github.com/ds124wfegd/notification-gateway/internal/rabbitMQ"
	"github.com/ds124wfegd/notification-gateway/internal/userService"

	"github.com/sirupsen/logrus"
)

type notificationUseCase struct {
	limiter   redis.RateLimiter
	prefCache redis.PreferenceCache
	users     userService.Client
	repo      repository.NotificationLogRepository
	queue     rabbitMQ.Queue
}

func NewNotificationUseCase(
	limiter redis.RateLimiter,
	prefCache redis.PreferenceCache,
	users userService.Client,
	repo repository.NotificationLogRepository,
	queue rabbitMQ.Queue,
) NotificationUseCase {
	return &notificationUseCase{
		limiter:   limiter,
		prefCache: prefCache,
		users:     users,
		repo:      repo,
		queue:     queue,
	}
}

// SubmitNotification runs the admission pipeline: rate limit, preference
// lookup, suppression, then the insert-pending + publish transaction. The
// pending row commits only if the broker accepted the message.
func (uc *notificationUseCase) SubmitNotification(ctx context.Context, clientIP, authToken string, req *entity.NotificationRequest) (*SubmitResult, error) {
	allowed, err := uc.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Fail closed: an unreachable limiter denies, never admits.
		logrus.Errorf("rate limiter error for %s: %s", clientIP, err.Error())
		return nil, entity.ErrRateLimiterDown
	}
	if !allowed {
		return nil, entity.ErrRateLimitExceeded
	}

	details, err := uc.getUserDetails(ctx, req.UserID, authToken)
	if err != nil {
		return nil, err
	}

	if !details.AllowsChannel(req.NotificationType) {
		logrus.WithFields(logrus.Fields{
			"request_id": req.RequestID,
			"user_id":    req.UserID,
			"type":       req.NotificationType,
		}).Info("notification suppressed by user preference")
		return &SubmitResult{RequestID: req.RequestID, Suppressed: true}, nil
	}

	logEntry := &entity.NotificationLog{
		RequestID:        req.RequestID,
		UserID:           req.UserID,
		NotificationType: req.NotificationType,
	}

	err = uc.repo.CreatePending(ctx, logEntry, func(ctx context.Context) error {
		return uc.queue.Publish(ctx, req.NotificationType, req)
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{RequestID: req.RequestID}, nil
}

// getUserDetails is the cache-aside read: cache errors degrade to the live
// fetch, and a failed write-back is logged but never fails the request.
func (uc *notificationUseCase) getUserDetails(ctx context.Context, userID, authToken string) (*entity.UserDetails, error) {
	cached, err := uc.prefCache.Get(ctx, userID)
	if err != nil {
		logrus.Warnf("preference cache read error, proceeding without cache: %s", err.Error())
	} else if cached != nil {
		return cached, nil
	}

	details, err := uc.users.GetUser(ctx, userID, authToken)
	if err != nil {
		return nil, err
	}

	if err := uc.prefCache.Set(ctx, userID, details); err != nil {
		logrus.Warnf("preference cache write error: %s", err.Error())
	}

	return details, nil
}

func (uc *notificationUseCase) GetStatus(ctx context.Context, requestID string) (*entity.NotificationLog, error) {
	return uc.repo.GetByRequestID(ctx, requestID)
}

// ApplyStatusUpdate transitions a log entry to the reported state. The
// overwrite is unconditional, so re-delivered webhooks are idempotent in
// effect.
func (uc *notificationUseCase) ApplyStatusUpdate(ctx context.Context, upd *entity.StatusUpdateRequest) (*entity.NotificationLog, error) {
	logEntry, err := uc.repo.UpdateStatus(ctx, upd.NotificationID, upd.Status, upd.Error)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": logEntry.RequestID,
		"status":     logEntry.Status,
	}).Info("notification status updated")

	return logEntry, nil
}
