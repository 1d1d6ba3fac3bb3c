package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/notification-gateway/internal/entity"
	"github.com/ds124wfegd/notification-gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUseCase struct {
	submitResult *service.SubmitResult
	submitErr    error
	statusLog    *entity.NotificationLog
	statusErr    error
	updateLog    *entity.NotificationLog
	updateErr    error
}

func (f *fakeUseCase) SubmitNotification(_ context.Context, _, _ string, _ *entity.NotificationRequest) (*service.SubmitResult, error) {
	return f.submitResult, f.submitErr
}

func (f *fakeUseCase) GetStatus(_ context.Context, _ string) (*entity.NotificationLog, error) {
	return f.statusLog, f.statusErr
}

func (f *fakeUseCase) ApplyStatusUpdate(_ context.Context, _ *entity.StatusUpdateRequest) (*entity.NotificationLog, error) {
	return f.updateLog, f.updateErr
}

type fakeQueue struct{ healthErr error }

func (q *fakeQueue) Publish(_ context.Context, _ string, _ interface{}) error { return nil }
func (q *fakeQueue) HealthCheck() error                                       { return q.healthErr }
func (q *fakeQueue) Close() error                                             { return nil }

func setupRouter(uc service.NotificationUseCase) *gin.Engine {
	return InitRoutes(uc, &fakeQueue{}, 30*time.Second)
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"notification_type": "email",
		"user_id":           "c4b4b4b4-b4b4-4b4b-b4b4-c4b4b4b4b4b4",
		"template_code":     "welcome_email",
		"variables": map[string]interface{}{
			"name": "Peter",
			"link": "http://example.com/verify",
		},
		"request_id": "a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1",
		"priority":   1,
	}
}

func postJSON(router *gin.Engine, path string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSubmitNotificationAccepted(t *testing.T) {
	uc := &fakeUseCase{submitResult: &service.SubmitResult{RequestID: "a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1"}}
	router := setupRouter(uc)

	w := postJSON(router, "/api/v1/notifications/", validPayload(), map[string]string{"Authorization": "Bearer token"})

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp entity.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1", data["request_id"])
}

func TestSubmitNotificationMissingAuth(t *testing.T) {
	router := setupRouter(&fakeUseCase{})

	w := postJSON(router, "/api/v1/notifications/", validPayload(), nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitNotificationValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p map[string]interface{})
	}{
		{name: "unknown type", mutate: func(p map[string]interface{}) { p["notification_type"] = "sms" }},
		{name: "missing request_id", mutate: func(p map[string]interface{}) { delete(p, "request_id") }},
		{name: "user_id not a uuid", mutate: func(p map[string]interface{}) { p["user_id"] = "42" }},
		{name: "variables missing name", mutate: func(p map[string]interface{}) {
			p["variables"] = map[string]interface{}{"link": "http://example.com"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeUseCase{})
			payload := validPayload()
			tt.mutate(payload)

			w := postJSON(router, "/api/v1/notifications/", payload, map[string]string{"Authorization": "Bearer token"})
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestSubmitNotificationErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "rate limited", err: entity.ErrRateLimitExceeded, want: http.StatusTooManyRequests},
		{name: "limiter down fails closed", err: entity.ErrRateLimiterDown, want: http.StatusServiceUnavailable},
		{name: "bad token", err: entity.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "unknown user", err: entity.ErrUserNotFound, want: http.StatusNotFound},
		{name: "duplicate request_id", err: entity.ErrDuplicateRequest, want: http.StatusConflict},
		{name: "user service down", err: entity.ErrUserServiceUnavailable, want: http.StatusServiceUnavailable},
		{name: "pipeline failure", err: entity.ErrPublishFailed, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeUseCase{submitErr: tt.err})

			w := postJSON(router, "/api/v1/notifications/", validPayload(), map[string]string{"Authorization": "Bearer token"})
			assert.Equal(t, tt.want, w.Code)

			var resp entity.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
		})
	}
}

func TestSubmitNotificationSuppressed(t *testing.T) {
	uc := &fakeUseCase{submitResult: &service.SubmitResult{RequestID: "a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1", Suppressed: true}}
	router := setupRouter(uc)

	w := postJSON(router, "/api/v1/notifications/", validPayload(), map[string]string{"Authorization": "Bearer token"})

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp entity.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "suppressed")
}

func TestGetNotificationStatus(t *testing.T) {
	uc := &fakeUseCase{statusLog: &entity.NotificationLog{
		RequestID: "a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1",
		Status:    entity.StatusDelivered,
	}}
	router := setupRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/a1b1b1b1-b1b1-1b1b-b1b1-a1b1b1b1b1b1/status/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "delivered", data["status"])
}

func TestGetNotificationStatusNotFound(t *testing.T) {
	router := setupRouter(&fakeUseCase{statusErr: entity.ErrNotificationNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/c4b4b4b4-b4b4-4b4b-b4b4-c4b4b4b4b4b4/status/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// A malformed request_id can never match a log row, so the handler answers
// 404 without consulting the store.
func TestGetNotificationStatusMalformedID(t *testing.T) {
	router := setupRouter(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/not-a-uuid/status/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp entity.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestStatusWebhooks(t *testing.T) {
	payload := map[string]interface{}{
		"notification_id": "req-1",
		"status":          "delivered",
	}

	for _, path := range []string{"/api/v1/email/status/", "/api/v1/push/status/"} {
		t.Run(path, func(t *testing.T) {
			uc := &fakeUseCase{updateLog: &entity.NotificationLog{RequestID: "req-1", Status: entity.StatusDelivered}}
			router := setupRouter(uc)

			w := postJSON(router, path, payload, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestStatusWebhookUnknownID(t *testing.T) {
	router := setupRouter(&fakeUseCase{updateErr: entity.ErrNotificationNotFound})

	w := postJSON(router, "/api/v1/email/status/", map[string]interface{}{
		"notification_id": "stale",
		"status":          "failed",
	}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusWebhookInvalidStatus(t *testing.T) {
	router := setupRouter(&fakeUseCase{})

	w := postJSON(router, "/api/v1/email/status/", map[string]interface{}{
		"notification_id": "req-1",
		"status":          "bounced",
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
