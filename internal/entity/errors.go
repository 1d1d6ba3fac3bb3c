package entity

import "errors"

var (
	// Admission errors
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrRateLimiterDown      = errors.New("rate limiter unavailable")
	ErrDuplicateRequest     = errors.New("request_id already processed")
	ErrNotificationNotFound = errors.New("notification not found")

	// User-service errors
	ErrUserNotFound           = errors.New("user not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrUserServiceUnavailable = errors.New("user service unavailable")

	// Infrastructure errors
	ErrPublishFailed = errors.New("failed to publish notification")
)
