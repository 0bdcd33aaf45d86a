// Package notifications provides real-time notification delivery over Redis
// pub/sub channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/redis/go-redis/v9"
)

// Event is the wire payload published when a notification is created.
type Event struct {
	ID              uint                    `json:"id"`
	Type            models.NotificationType `json:"type"`
	ActorUserID     uint                    `json:"actor_user_id"`
	ActorUsername   string                  `json:"actor_username,omitempty"`
	RecipientUserID uint                    `json:"recipient_user_id"`
	RelatedPostID   *uint                   `json:"related_post_id,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// Notifier provides helpers to publish notification events into Redis channels.
// All methods are nil-safe no-ops when no Redis client is configured, so the
// server degrades to store-only notifications.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	channel := fmt.Sprintf("notifications:user:%d", userID)
	return n.rdb.Publish(ctx, channel, string(payload)).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls
// onEvent for each incoming message. A panicking handler is logged and does
// not kill the subscriber loop.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onEvent func(userID uint, event Event),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := UserIDFromChannel(msg.Channel)
				if err != nil {
					continue
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(userID, event)
				}()
			}
		}
	}()

	return nil
}

// UserIDFromChannel extracts the user id from a notifications:user:<id> channel name.
func UserIDFromChannel(channel string) (uint, error) {
	idx := strings.LastIndex(channel, ":")
	if idx < 0 {
		return 0, fmt.Errorf("malformed channel %q", channel)
	}
	id, err := strconv.ParseUint(channel[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed channel %q: %w", channel, err)
	}
	return uint(id), nil
}
