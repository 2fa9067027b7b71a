// Package server provides the optional cross-instance broadcast bus. When a
// relay is scaled horizontally, room broadcasts published by one instance are
// delivered to the room's members on every other instance.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusMessage is a room broadcast crossing instance boundaries. Origin
// identifies the publishing instance so it can skip its own frames.
type BusMessage struct {
	RoomID  string          `json:"roomId"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Bus publishes room broadcasts to other relay instances and subscribes to
// theirs.
type Bus interface {
	Publish(ctx context.Context, roomID string, payload []byte) error
	Subscribe(ctx context.Context, fn func(BusMessage))
}

// RedisBus implements Bus on top of redis pub/sub, one channel per room.
type RedisBus struct {
	rdb        *redis.Client
	instanceID string
}

// NewRedisBus connects to redis and verifies connectivity.
func NewRedisBus(ctx context.Context, addr string, db int) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, instanceID: uuid.NewString()}, nil
}

// Publish sends a room broadcast to the redis channel for that room.
func (b *RedisBus) Publish(ctx context.Context, roomID string, payload []byte) error {
	raw, err := json.Marshal(BusMessage{
		RoomID:  roomID,
		Origin:  b.instanceID,
		Payload: json.RawMessage(payload),
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, busChannel(roomID), raw).Err()
}

// Subscribe listens to all room channels and invokes fn for every frame
// published by another instance. Returns when ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(BusMessage)) {
	pubsub := b.rdb.PSubscribe(ctx, busChannel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var bm BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				slog.Warn("dropping malformed bus frame", "err", err)
				continue
			}
			if bm.RoomID == "" || bm.Origin == b.instanceID {
				continue
			}
			fn(bm)
		}
	}
}

// Close shuts down the redis connection.
func (b *RedisBus) Close() {
	_ = b.rdb.Close()
}

// busChannel namespaces the redis pub/sub channel for a room.
func busChannel(roomID string) string {
	return "signal:" + roomID
}
