package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/observability"
)

func TestRedisPublisherPublishesOnProjectChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pub := NewRedisPublisher(client, "")
	t.Cleanup(func() { _ = pub.Close() })

	ctx := context.Background()
	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(ctx, "taskhub:project:42")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := NewNotice(TaskCreated, 42, 7)
	n.TaskID = 9
	require.NoError(t, pub.Publish(ctx, n))

	select {
	case msg := <-sub.Channel():
		var got Notice
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, n.ID, got.ID)
		assert.Equal(t, TaskCreated, got.Type)
		assert.Equal(t, int64(9), got.TaskID)
	case <-time.After(2 * time.Second):
		t.Fatal("notice not delivered")
	}
}

func TestRedisPublisherChannelPrefix(t *testing.T) {
	pub := NewRedisPublisher(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "acme")
	assert.Equal(t, "acme:project:5", pub.Channel(5))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Notice) error { return errors.New("broker down") }

func TestObservedSwallowsAndCountsFailures(t *testing.T) {
	var logs bytes.Buffer
	metrics := observability.NewMetrics()
	pub := Observed{
		Next:    failingPublisher{},
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		Metrics: metrics,
	}

	require.NoError(t, pub.Publish(context.Background(), NewNotice(CommentCreated, 1, 2)))
	assert.Contains(t, logs.String(), "notice publish failed")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), `taskhub_notices_published_total{result="error",type="comment.created"} 1`)
}

func TestObservedWithoutNextIsNoop(t *testing.T) {
	assert.NoError(t, Observed{}.Publish(context.Background(), NewNotice(TaskDeleted, 1, 1)))
	assert.NoError(t, Nop{}.Publish(context.Background(), Notice{}))
}
