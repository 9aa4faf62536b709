package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is a row-change notification for one shopping list. List carries the
// full document payload; subscribers overwrite local state wholesale.
type Event struct {
	ListID string          `json:"list_id"`
	Status string          `json:"status"`
	List   json.RawMessage `json:"shopping_list,omitempty"`
}

// ChannelFor returns the pub/sub channel name for a list.
func ChannelFor(listID string) string {
	return "list:" + listID
}

// Publisher pushes list-change events onto the live-update channel.
type Publisher struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewPublisher creates a Publisher on an existing Redis client.
func NewPublisher(client *redis.Client, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// PublishChange publishes an event for the given list. doc may be nil when
// the list has no document (pending or failed).
func (p *Publisher) PublishChange(ctx context.Context, listID, status string, doc any) error {
	ev := Event{ListID: listID, Status: status}

	if doc != nil {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
		ev.List = payload
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, ChannelFor(listID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens for events on one list's channel. The returned cancel
// function stops the subscription and closes the event channel.
func (p *Publisher) Subscribe(ctx context.Context, listID string) (<-chan Event, func()) {
	sub := p.client.Subscribe(ctx, ChannelFor(listID))
	events := make(chan Event)

	done := make(chan struct{})
	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					p.logger.Errorw("malformed live event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case events <- ev:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}
	return events, cancel
}
