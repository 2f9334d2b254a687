// Package usage tracks windowed token and cost counters for generative
// backend calls.
package usage

import (
	"context"
	"errors"
	"time"
)

// Scope identifies a counter window family.
type Scope string

const (
	ScopeDaily    Scope = "daily"
	ScopeMonthly  Scope = "monthly"
	ScopeIdentity Scope = "identity"
)

// Window retention. Expired windows are discarded whole.
const (
	dailyRetention    = 90 * 24 * time.Hour
	monthlyRetention  = 365 * 24 * time.Hour
	identityRetention = 30 * 24 * time.Hour
)

// Window is a counter aggregate for one period. Counters only ever grow
// until the window expires.
type Window struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Requests     int64   `json:"requests"`
	CostUSD      float64 `json:"cost_usd"`
	CostPKR      float64 `json:"cost_pkr"`
}

// TotalTokens returns input plus output tokens.
func (w Window) TotalTokens() int64 {
	return w.InputTokens + w.OutputTokens
}

// Charge is the cost breakdown of a single recorded call.
type Charge struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	InputCostUSD  float64 `json:"input_cost_usd"`
	OutputCostUSD float64 `json:"output_cost_usd"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
	TotalCostPKR  float64 `json:"total_cost_pkr"`
}

// Pricing holds per-million-token unit costs in USD and the fixed conversion
// rate into the display currency.
type Pricing struct {
	InputPer1M   float64
	OutputPer1M  float64
	ExchangeRate float64
}

// DefaultPricing matches Gemini Flash list prices with an approximate
// USD-to-PKR rate.
var DefaultPricing = Pricing{
	InputPer1M:   0.075,
	OutputPer1M:  0.30,
	ExchangeRate: 280,
}

// Charge computes the cost of one call under this pricing.
func (p Pricing) Charge(inputTokens, outputTokens int) Charge {
	in := float64(inputTokens) / 1_000_000 * p.InputPer1M
	out := float64(outputTokens) / 1_000_000 * p.OutputPer1M
	return Charge{
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		InputCostUSD:  in,
		OutputCostUSD: out,
		TotalCostUSD:  in + out,
		TotalCostPKR:  (in + out) * p.ExchangeRate,
	}
}

// Recorder accumulates usage into daily, monthly and per-identity windows.
// Increments are commutative, so concurrent recorders on the shared daily
// and monthly windows never lose updates.
type Recorder interface {
	// Record accumulates one call's tokens into all three windows,
	// creating each window with its retention if absent and extending the
	// retention if present. Returns the computed charge.
	Record(ctx context.Context, identity string, inputTokens, outputTokens int) (Charge, error)

	// Window reads one aggregate. A missing window reads as empty.
	Window(ctx context.Context, scope Scope, periodKey string) (Window, error)

	// Close releases any resources held by the recorder.
	Close() error
}

// ErrInvalidScope is returned by Window for an unknown scope.
var ErrInvalidScope = errors.New("invalid usage scope")

// DailyKey returns the period key of the daily window containing t.
func DailyKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthlyKey returns the period key of the monthly window containing t.
func MonthlyKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// IdentityKey returns the period key of an identity's daily window.
func IdentityKey(identity string, t time.Time) string {
	return identity + ":" + DailyKey(t)
}

func redisKey(scope Scope, periodKey string) (string, error) {
	switch scope {
	case ScopeDaily:
		return "cost:daily:" + periodKey, nil
	case ScopeMonthly:
		return "cost:monthly:" + periodKey, nil
	case ScopeIdentity:
		return "cost:user:" + periodKey, nil
	default:
		return "", ErrInvalidScope
	}
}
