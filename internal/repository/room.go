package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
)

// StateRepository mirrors the latest broadcast room state into Redis and
// publishes it for out-of-process listeners. The room never reads it back.
type StateRepository interface {
	// SaveState stores payload as the room's latest state and publishes it.
	SaveState(ctx context.Context, roomID string, payload []byte) error
	// GetState is the read side for processes that share the Redis instance,
	// such as dashboards or a late subscriber catching up before listening on
	// the updates channel. It returns ErrStateNotFound for a room that never
	// broadcast.
	GetState(ctx context.Context, roomID string) ([]byte, error)
}

type dbState struct {
	client        *redis.Client
	channelPrefix string
}

func NewStateRepository(client *redis.Client, channelPrefix string) StateRepository {
	return &dbState{
		client:        client,
		channelPrefix: channelPrefix,
	}
}

func (that *dbState) SaveState(ctx context.Context, roomID string, payload []byte) error {
	pipe := that.client.TxPipeline()
	pipe.Set(ctx, stateKey(roomID), payload, 0)
	pipe.Publish(ctx, that.updatesChannel(roomID), payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room state: %w", err)
	}

	return nil
}

func (that *dbState) GetState(ctx context.Context, roomID string) ([]byte, error) {
	response, err := that.client.Get(ctx, stateKey(roomID)).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrStateNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room state: %w", err)
	}

	return response, nil
}

// updatesChannel is the pub/sub channel every saved state is published on.
func (that *dbState) updatesChannel(roomID string) string {
	return that.channelPrefix + "room:" + roomID + ":updates"
}

func stateKey(roomID string) string {
	return "room:" + roomID + ":state"
}
