package usage

import (
	"errors"
	"time"
)

// RecorderType represents the type of usage recorder.
type RecorderType string

const (
	RecorderTypeMemory RecorderType = "memory"
	RecorderTypeRedis  RecorderType = "redis"
)

// Construction errors.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidRecorderType = errors.New("invalid recorder type")
)

// NewRecorder creates a usage Recorder of the given type. Supports "memory"
// and "redis" drivers. The Redis driver requires WithRedisClient.
func NewRecorder(recorderType RecorderType, opts ...RecorderOption) (Recorder, error) {
	config := &recorderConfig{
		pricing: DefaultPricing,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(config)
	}

	switch recorderType {
	case RecorderTypeMemory:
		return &memoryRecorder{
			windows: make(map[string]*memoryWindow),
			pricing: config.pricing,
			clock:   config.clock,
		}, nil

	case RecorderTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisRecorder{
			client:  config.redisClient,
			pricing: config.pricing,
			clock:   config.clock,
		}, nil

	default:
		return nil, ErrInvalidRecorderType
	}
}
