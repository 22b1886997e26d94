package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix namespaces notice channels.
const DefaultChannelPrefix = "taskhub"

// RedisPublisher publishes notices on per-project Redis channels.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher wraps an established client. The publisher owns the client from here on.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the channel notices for projectID go to.
func (p *RedisPublisher) Channel(projectID int64) string {
	return p.prefix + ":project:" + strconv.FormatInt(projectID, 10)
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, n Notice) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("events: marshal notice: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(n.ProjectID), body).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", n.Type, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
