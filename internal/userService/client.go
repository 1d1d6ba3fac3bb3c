package userService

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ds124wfegd/notification-gateway/config"
	"github.com/ds124wfegd/notification-gateway/internal/entity"
)

// Client fetches authoritative user details from the user-service. The
// caller's bearer token is forwarded verbatim for authorization.
type Client interface {
	GetUser(ctx context.Context, userID, authToken string) (*entity.UserDetails, error)
}

type userEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *entity.UserDetails `json:"data"`
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.UserServiceConfig) Client {
	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GetUser distinguishes three failure classes: bad token, unknown user, and
// unreachable dependency. A response that does not carry the standard
// {success, data} envelope is treated as not-found.
func (c *client) GetUser(ctx context.Context, userID, authToken string) (*entity.UserDetails, error) {
	url := fmt.Sprintf("%s/api/v1/users/%s/", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network error, timeout, or connection refused.
		return nil, entity.ErrUserServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, entity.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, entity.ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, entity.ErrUserServiceUnavailable
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, entity.ErrUserNotFound
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, entity.ErrUserNotFound
	}

	return envelope.Data, nil
}
