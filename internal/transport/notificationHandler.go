package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/notification-gateway/internal/entity"
	"github.com/ds124wfegd/notification-gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service service.NotificationUseCase
}

func NewNotificationHandler(service service.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) SubmitNotification(c *gin.Context) {
	authToken := c.GetHeader("Authorization")
	if authToken == "" {
		c.JSON(http.StatusUnauthorized, entity.Fail("Authorization header required", entity.ErrUnauthorized))
		return
	}

	clientIP := c.ClientIP()
	if clientIP == "" {
		c.JSON(http.StatusBadRequest, entity.Fail("Unable to determine client identity", nil))
		return
	}

	var req entity.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, entity.Fail("Invalid notification request", err))
		return
	}

	result, err := h.service.SubmitNotification(c.Request.Context(), clientIP, authToken, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	message := "Notification request accepted for processing."
	if result.Suppressed {
		message = "Notification suppressed by user preferences."
	}

	c.JSON(http.StatusAccepted, entity.OK(message, gin.H{"request_id": result.RequestID}))
}

func (h *NotificationHandler) GetNotificationStatus(c *gin.Context) {
	requestID := c.Param("request_id")
	// request_ids are always UUIDs, so a malformed one cannot exist.
	if _, err := uuid.Parse(requestID); err != nil {
		c.JSON(http.StatusNotFound, entity.Fail("Notification not found", entity.ErrNotificationNotFound))
		return
	}

	logEntry, err := h.service.GetStatus(c.Request.Context(), requestID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.OK("Notification status retrieved.", gin.H{
		"request_id":   logEntry.RequestID,
		"status":       logEntry.Status,
		"last_updated": logEntry.UpdatedAt,
		"error":        logEntry.ErrorMessage,
	}))
}

func (h *NotificationHandler) EmailStatusUpdate(c *gin.Context) {
	h.applyStatusUpdate(c, "Email status received.")
}

func (h *NotificationHandler) PushStatusUpdate(c *gin.Context) {
	h.applyStatusUpdate(c, "Push status received.")
}

func (h *NotificationHandler) applyStatusUpdate(c *gin.Context, message string) {
	var upd entity.StatusUpdateRequest
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusUnprocessableEntity, entity.Fail("Invalid status update", err))
		return
	}

	logEntry, err := h.service.ApplyStatusUpdate(c.Request.Context(), &upd)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.OK(message, gin.H{
		"request_id": logEntry.RequestID,
		"status":     logEntry.Status,
	}))
}

// abortWithError converts component errors to transport status codes. This is
// the only place the mapping happens; the pipeline itself returns error kinds.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, entity.Fail("Too many requests", err))
	case errors.Is(err, entity.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, entity.Fail("Authentication failed", err))
	case errors.Is(err, entity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, entity.Fail("User not found", err))
	case errors.Is(err, entity.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, entity.Fail("Notification not found", err))
	case errors.Is(err, entity.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, entity.Fail("Duplicate request_id", err))
	case errors.Is(err, entity.ErrRateLimiterDown), errors.Is(err, entity.ErrUserServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, entity.Fail("Dependency unavailable", err))
	default:
		c.JSON(http.StatusInternalServerError, entity.Fail("Internal server error", err))
	}
}
