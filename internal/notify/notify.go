// Package notify forwards goal status badge changes to external listeners
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// StatusChannel is the pub/sub channel badge changes are published on
const StatusChannel = "goal-status"

// Notifier delivers a badge change
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// Register subscribes n to badge change events on bus
func Register(bus *events.Bus, n Notifier) {
	bus.Subscribe(events.EventBadgeChanged, n.Notify)
}

// publisher is the subset of the redis client used for notifications
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis publishes badge changes as JSON on a redis channel
type Redis struct {
	client  publisher
	channel string
}

// NewRedis creates a Redis notifier publishing on StatusChannel
func NewRedis(client publisher) *Redis {
	return &Redis{client: client, channel: StatusChannel}
}

// NewRedisClient parses redisURL and verifies connectivity
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Notify implements Notifier
func (r *Redis) Notify(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	receivers, err := r.client.Publish(ctx, r.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", r.channel, err)
	}
	logger.DebugWithFields("Published status badge", map[string]interface{}{
		"goal_id":   event.GoalID,
		"badge":     event.Badge,
		"receivers": receivers,
	})
	return nil
}

// Log writes badge changes to the application log
type Log struct{}

// Notify implements Notifier
func (Log) Notify(_ context.Context, event events.Event) error {
	logger.InfoWithFields("Status badge changed", map[string]interface{}{
		"goal_id": event.GoalID,
		"job_id":  event.JobID,
		"badge":   event.Badge,
	})
	return nil
}
