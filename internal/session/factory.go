package session

import "time"

// StoreType represents the type of session store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// DefaultTTL is the idle timeout applied when none is configured.
const DefaultTTL = 60 * time.Minute

// NewStore creates a session Store of the given type. Supports "memory" and
// "redis" drivers. The Redis driver requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{
		ttl:   DefaultTTL,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.ttl <= 0 {
		config.ttl = DefaultTTL
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			sessions: make(map[string]*memoryEntry),
			ttl:      config.ttl,
			clock:    config.clock,
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    config.ttl,
			clock:  config.clock,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
