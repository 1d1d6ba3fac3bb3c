package entity

import (
	"time"
)

const (
	TypeEmail = "email"
	TypePush  = "push"
)

const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// TemplateVariables is the payload rendered into the notification template.
// Meta carries forward-compatible extra fields that the gateway does not
// interpret.
type TemplateVariables struct {
	Name string                 `json:"name" binding:"required"`
	Link string                 `json:"link" binding:"required,url"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

type NotificationRequest struct {
	NotificationType string                 `json:"notification_type" binding:"required,oneof=email push"`
	UserID           string                 `json:"user_id" binding:"required,uuid"`
	TemplateCode     string                 `json:"template_code" binding:"required"`
	Variables        TemplateVariables      `json:"variables" binding:"required"`
	RequestID        string                 `json:"request_id" binding:"required,uuid"`
	Priority         int                    `json:"priority"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type NotificationLog struct {
	ID               int64     `json:"id"`
	RequestID        string    `json:"request_id"`
	UserID           string    `json:"user_id"`
	NotificationType string    `json:"notification_type"`
	Status           string    `json:"status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type StatusUpdateRequest struct {
	NotificationID string  `json:"notification_id" binding:"required"`
	Status         string  `json:"status" binding:"required,oneof=pending delivered failed"`
	Timestamp      *string `json:"timestamp,omitempty"`
	Error          *string `json:"error,omitempty"`
}

// UserPreferences mirrors the preference flags stored by the user-service.
// The flags are pointers so that an absent flag is distinguishable from an
// explicit false: absent means the channel stays allowed.
type UserPreferences struct {
	Email *bool `json:"email,omitempty"`
	Push  *bool `json:"push,omitempty"`
}

// UserDetails is the cached snapshot of a user as returned by the
// user-service. Preferences is a pointer so that "no preferences set at all"
// is distinguishable from "all channels disabled".
type UserDetails struct {
	UserID      string           `json:"user_id"`
	Name        string           `json:"name,omitempty"`
	Email       string           `json:"email,omitempty"`
	PushToken   string           `json:"push_token,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// AllowsChannel reports whether the user accepts the given notification type.
// Missing preferences, and missing per-channel flags, default to allow.
func (u *UserDetails) AllowsChannel(notificationType string) bool {
	if u == nil || u.Preferences == nil {
		return true
	}
	switch notificationType {
	case TypeEmail:
		return u.Preferences.Email == nil || *u.Preferences.Email
	case TypePush:
		return u.Preferences.Push == nil || *u.Preferences.Push
	}
	return false
}
