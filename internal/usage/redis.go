package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRecorder implements Recorder on Redis hashes. HINCRBY/HINCRBYFLOAT
// are atomic per field, so concurrent turns can safely share the daily and
// monthly windows.
type redisRecorder struct {
	client  *redis.Client
	pricing Pricing
	clock   func() time.Time
}

// Record implements Recorder.
func (r *redisRecorder) Record(ctx context.Context, identity string, inputTokens, outputTokens int) (Charge, error) {
	now := r.clock()
	charge := r.pricing.Charge(inputTokens, outputTokens)

	dailyKey, _ := redisKey(ScopeDaily, DailyKey(now))
	monthlyKey, _ := redisKey(ScopeMonthly, MonthlyKey(now))
	identityKey, _ := redisKey(ScopeIdentity, IdentityKey(identity, now))

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, dailyKey, "input_tokens", int64(inputTokens))
		pipe.HIncrBy(ctx, dailyKey, "output_tokens", int64(outputTokens))
		pipe.HIncrByFloat(ctx, dailyKey, "cost_usd", charge.TotalCostUSD)
		pipe.HIncrByFloat(ctx, dailyKey, "cost_pkr", charge.TotalCostPKR)
		pipe.HIncrBy(ctx, dailyKey, "requests", 1)
		pipe.Expire(ctx, dailyKey, dailyRetention)

		pipe.HIncrBy(ctx, monthlyKey, "input_tokens", int64(inputTokens))
		pipe.HIncrBy(ctx, monthlyKey, "output_tokens", int64(outputTokens))
		pipe.HIncrByFloat(ctx, monthlyKey, "cost_usd", charge.TotalCostUSD)
		pipe.HIncrByFloat(ctx, monthlyKey, "cost_pkr", charge.TotalCostPKR)
		pipe.HIncrBy(ctx, monthlyKey, "requests", 1)
		pipe.Expire(ctx, monthlyKey, monthlyRetention)

		pipe.HIncrBy(ctx, identityKey, "input_tokens", int64(inputTokens))
		pipe.HIncrBy(ctx, identityKey, "output_tokens", int64(outputTokens))
		pipe.HIncrByFloat(ctx, identityKey, "cost_pkr", charge.TotalCostPKR)
		pipe.HIncrBy(ctx, identityKey, "requests", 1)
		pipe.Expire(ctx, identityKey, identityRetention)
		return nil
	})
	if err != nil {
		return Charge{}, fmt.Errorf("record usage: %w", err)
	}

	return charge, nil
}

// Window implements Recorder.
func (r *redisRecorder) Window(ctx context.Context, scope Scope, periodKey string) (Window, error) {
	key, err := redisKey(scope, periodKey)
	if err != nil {
		return Window{}, err
	}

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Window{}, fmt.Errorf("read usage window: %w", err)
	}
	if len(fields) == 0 {
		return Window{}, nil
	}

	return Window{
		InputTokens:  parseInt(fields["input_tokens"]),
		OutputTokens: parseInt(fields["output_tokens"]),
		Requests:     parseInt(fields["requests"]),
		CostUSD:      parseFloat(fields["cost_usd"]),
		CostPKR:      parseFloat(fields["cost_pkr"]),
	}, nil
}

// Close implements Recorder.
func (r *redisRecorder) Close() error {
	return r.client.Close()
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
