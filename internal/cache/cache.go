// internal/cache/cache.go
//
// Redis-backed action history queue. Every game action is pushed onto a
// list a separate historian process can drain; the queue is best-effort
// and fully optional (Rdb stays nil when REDIS_ADDR is unset).
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when Redis is not configured;
// callers must check before publishing.
var Rdb *redis.Client

// actionQueueKey is the list the historian drains.
const actionQueueKey = "uno:game_actions"

// GameActionRecord is one entry in a game's action history.
type GameActionRecord struct {
	RoomID        string         `json:"roomId"`
	ActionIndex   int            `json:"actionIndex"`
	ActorID       string         `json:"actorId,omitempty"` // empty for game-driven events
	ActionType    string         `json:"actionType"`
	ActionPayload map[string]any `json:"actionPayload,omitempty"`
	Timestamp     int64          `json:"timestamp"`
}

// Init connects the shared client and verifies the connection.
func Init(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	return nil
}

// PublishGameAction pushes a record onto the history queue.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.LPush(ctx, actionQueueKey, data).Err(); err != nil {
		return fmt.Errorf("lpush action record: %w", err)
	}
	return nil
}
