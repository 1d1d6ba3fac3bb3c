package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ds124wfegd/notification-gateway/internal/entity"

	"github.com/go-redis/redis/v8"
)

// PreferenceCache stores ephemeral snapshots of user details keyed by user id.
// Get returns (nil, nil) on a clean miss.
type PreferenceCache interface {
	Get(ctx context.Context, userID string) (*entity.UserDetails, error)
	Set(ctx context.Context, userID string, details *entity.UserDetails) error
}

type preferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreferenceCache(client *redis.Client, ttl time.Duration) PreferenceCache {
	return &preferenceCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *preferenceCache) Get(ctx context.Context, userID string) (*entity.UserDetails, error) {
	data, err := c.client.Get(ctx, "user_pref:"+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("preference cache get: %w", err)
	}

	var details entity.UserDetails
	if err := json.Unmarshal([]byte(data), &details); err != nil {
		return nil, fmt.Errorf("preference cache unmarshal: %w", err)
	}

	return &details, nil
}

func (c *preferenceCache) Set(ctx context.Context, userID string, details *entity.UserDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("preference cache marshal: %w", err)
	}

	return c.client.Set(ctx, "user_pref:"+userID, data, c.ttl).Err()
}
