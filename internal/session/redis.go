package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore implements Store using Redis. Each session is one JSON value
// under "session:<identity>" with the idle timeout as its key TTL, so expiry
// needs no sweeper.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func sessionKey(identity string) string {
	return "session:" + identity
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, identity string) (*State, error) {
	key := sessionKey(identity)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	// Refresh TTL on read: user activity alone keeps the session alive.
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &state, nil
}

// Update implements Store.
func (s *redisStore) Update(ctx context.Context, identity string, patch Patch) (*State, error) {
	state, err := s.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &State{}
	}

	state.apply(patch)
	state.LastActivity = s.clock()

	if err := s.write(ctx, identity, state); err != nil {
		return nil, err
	}
	return state, nil
}

// AppendTranscript implements Store.
func (s *redisStore) AppendTranscript(ctx context.Context, identity, role, text string) error {
	state, err := s.Get(ctx, identity)
	if err != nil {
		return err
	}
	if state == nil {
		state = &State{}
	}

	now := s.clock()
	state.appendEntry(role, text, now)
	state.LastActivity = now

	return s.write(ctx, identity, state)
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, identity string) error {
	return s.client.Del(ctx, sessionKey(identity)).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) write(ctx context.Context, identity string, state *State) error {
	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(identity), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
