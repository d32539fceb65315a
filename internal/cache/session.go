package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flowTTL = 15 * time.Minute

var ErrNoFlow = errors.New("flow state not found or expired")

type SessionManager struct{}

func NewSessionManager() *SessionManager {
	GetRedisClient()
	return &SessionManager{}
}

func flowKey(userID int64) string {
	return fmt.Sprintf("flow:%d", userID)
}

// SetFlow stores the conversation state for a user, replacing whatever
// flow was in progress before.
func (sm *SessionManager) SetFlow(ctx context.Context, userID int64, state FlowState) error {
	client := GetRedisClient()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal flow state: %w", err)
	}

	return client.Set(ctx, flowKey(userID), data, flowTTL).Err()
}

// GetFlow returns the stored state only when it carries the expected flow
// tag; stale state from another conversation reads as ErrNoFlow.
func (sm *SessionManager) GetFlow(ctx context.Context, userID int64, flow string) (*FlowState, error) {
	client := GetRedisClient()

	data, err := client.Get(ctx, flowKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoFlow
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var state FlowState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow state: %w", err)
	}
	if state.Flow != flow {
		return nil, ErrNoFlow
	}

	return &state, nil
}

// PeekFlow returns whatever flow state the user has, regardless of tag.
func (sm *SessionManager) PeekFlow(ctx context.Context, userID int64) (*FlowState, error) {
	client := GetRedisClient()

	data, err := client.Get(ctx, flowKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoFlow
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var state FlowState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow state: %w", err)
	}

	return &state, nil
}

func (sm *SessionManager) ClearFlow(ctx context.Context, userID int64) error {
	client := GetRedisClient()
	return client.Del(ctx, flowKey(userID)).Err()
}
