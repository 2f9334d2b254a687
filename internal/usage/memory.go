package usage

import (
	"context"
	"sync"
	"time"
)

// memoryRecorder implements Recorder with in-process counters. Expiry is
// enforced lazily against a per-window deadline.
type memoryRecorder struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	pricing Pricing
	clock   func() time.Time
}

type memoryWindow struct {
	window   Window
	deadline time.Time
}

// Record implements Recorder.
func (r *memoryRecorder) Record(ctx context.Context, identity string, inputTokens, outputTokens int) (Charge, error) {
	now := r.clock()
	charge := r.pricing.Charge(inputTokens, outputTokens)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bump(ScopeDaily, DailyKey(now), dailyRetention, now, charge, true)
	r.bump(ScopeMonthly, MonthlyKey(now), monthlyRetention, now, charge, true)
	r.bump(ScopeIdentity, IdentityKey(identity, now), identityRetention, now, charge, false)

	return charge, nil
}

func (r *memoryRecorder) bump(scope Scope, periodKey string, retention time.Duration, now time.Time, charge Charge, withUSD bool) {
	key, _ := redisKey(scope, periodKey)
	w, ok := r.windows[key]
	if !ok || now.After(w.deadline) {
		w = &memoryWindow{}
		r.windows[key] = w
	}
	w.window.InputTokens += int64(charge.InputTokens)
	w.window.OutputTokens += int64(charge.OutputTokens)
	w.window.Requests++
	if withUSD {
		w.window.CostUSD += charge.TotalCostUSD
	}
	w.window.CostPKR += charge.TotalCostPKR
	w.deadline = now.Add(retention)
}

// Window implements Recorder.
func (r *memoryRecorder) Window(ctx context.Context, scope Scope, periodKey string) (Window, error) {
	key, err := redisKey(scope, periodKey)
	if err != nil {
		return Window{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if !ok || r.clock().After(w.deadline) {
		return Window{}, nil
	}
	return w.window, nil
}

// Close implements Recorder.
func (r *memoryRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.windows = nil
	return nil
}
