package live

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewPublisher(client, zap.NewNop().Sugar())
}

func TestPublishChangeRoundTrip(t *testing.T) {
	pub := newTestPublisher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, stop := pub.Subscribe(ctx, "list-1")
	defer stop()

	// The pub/sub subscription needs a moment to register.
	time.Sleep(100 * time.Millisecond)

	doc := map[string]any{"categories": []any{}}
	require.NoError(t, pub.PublishChange(ctx, "list-1", "ready", doc))

	select {
	case ev := <-events:
		assert.Equal(t, "list-1", ev.ListID)
		assert.Equal(t, "ready", ev.Status)
		assert.JSONEq(t, `{"categories":[]}`, string(ev.List))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishChangeWithoutDocument(t *testing.T) {
	pub := newTestPublisher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, stop := pub.Subscribe(ctx, "list-2")
	defer stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, pub.PublishChange(ctx, "list-2", "failed", nil))

	select {
	case ev := <-events:
		assert.Equal(t, "failed", ev.Status)
		assert.Empty(t, ev.List)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeIsScopedToOneList(t *testing.T) {
	pub := newTestPublisher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, stop := pub.Subscribe(ctx, "list-a")
	defer stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, pub.PublishChange(ctx, "list-b", "ready", nil))

	select {
	case ev := <-events:
		t.Fatalf("received event for another list: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
