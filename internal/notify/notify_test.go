package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
)

type fakePublisher struct {
	mu       sync.Mutex
	channels []string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	if b, ok := message.([]byte); ok {
		f.messages = append(f.messages, b)
	}
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestRedisNotify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedis(pub)

	event := events.Event{Type: events.EventBadgeChanged, GoalID: 12, Badge: models.BadgeCandidatesFound}
	require.NoError(t, n.Notify(context.Background(), event))

	require.Len(t, pub.messages, 1)
	assert.Equal(t, StatusChannel, pub.channels[0])
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.messages[0], &decoded))
	assert.Equal(t, "goal.badge_changed", decoded["type"])
	assert.EqualValues(t, 12, decoded["goalId"])
	assert.Equal(t, "candidates_found", decoded["statusBadge"])
}

func TestRedisNotifyError(t *testing.T) {
	n := NewRedis(&fakePublisher{err: errors.New("connection refused")})
	err := n.Notify(context.Background(), events.Event{GoalID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	pub := &fakePublisher{}
	bus := events.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)
	Register(bus, NewRedis(pub))

	bus.Publish(events.Event{Type: events.EventJobCompleted, GoalID: 1})
	bus.Publish(events.Event{Type: events.EventBadgeChanged, GoalID: 2, Badge: models.BadgeNotFound})

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.messages) == 1
	}, 2*time.Second, 10*time.Millisecond)
	bus.Wait()
	assert.NoError(t, Log{}.Notify(ctx, events.Event{GoalID: 2}))
}
