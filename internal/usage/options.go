package usage

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// RecorderOption is a functional option for configuring a usage recorder.
type RecorderOption func(*recorderConfig)

type recorderConfig struct {
	redisClient *redis.Client
	pricing     Pricing
	clock       func() time.Time
}

// WithRedisClient sets the Redis client for the Redis recorder.
func WithRedisClient(client *redis.Client) RecorderOption {
	return func(c *recorderConfig) {
		c.redisClient = client
	}
}

// WithPricing overrides the default pricing table.
func WithPricing(p Pricing) RecorderOption {
	return func(c *recorderConfig) {
		c.pricing = p
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(clock func() time.Time) RecorderOption {
	return func(c *recorderConfig) {
		c.clock = clock
	}
}
