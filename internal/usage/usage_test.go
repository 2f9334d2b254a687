package usage_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/usage"
)

func newMemoryRecorder(t *testing.T, now *time.Time) usage.Recorder {
	t.Helper()
	recorder, err := usage.NewRecorder(usage.RecorderTypeMemory,
		usage.WithClock(func() time.Time { return *now }),
	)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	return recorder
}

func TestConcurrentRecordsOnSharedWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recorder := newMemoryRecorder(t, &now)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := recorder.Record(ctx, "300100", 100, 50); err != nil {
			t.Errorf("Record failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := recorder.Record(ctx, "300200", 200, 100); err != nil {
			t.Errorf("Record failed: %v", err)
		}
	}()
	wg.Wait()

	window, err := recorder.Window(ctx, usage.ScopeDaily, usage.DailyKey(now))
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if window.InputTokens != 300 || window.OutputTokens != 150 || window.Requests != 2 {
		t.Fatalf("expected 300/150/2, got %d/%d/%d",
			window.InputTokens, window.OutputTokens, window.Requests)
	}
}

func TestChargeComputation(t *testing.T) {
	pricing := usage.Pricing{InputPer1M: 0.075, OutputPer1M: 0.30, ExchangeRate: 280}
	charge := pricing.Charge(1_000_000, 500_000)

	if !closeTo(charge.InputCostUSD, 0.075) {
		t.Errorf("input cost: got %v", charge.InputCostUSD)
	}
	if !closeTo(charge.OutputCostUSD, 0.15) {
		t.Errorf("output cost: got %v", charge.OutputCostUSD)
	}
	if !closeTo(charge.TotalCostUSD, 0.225) {
		t.Errorf("total cost: got %v", charge.TotalCostUSD)
	}
	if !closeTo(charge.TotalCostPKR, 63.0) {
		t.Errorf("display cost: got %v", charge.TotalCostPKR)
	}
}

func TestAllThreeWindowsIncremented(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recorder := newMemoryRecorder(t, &now)

	if _, err := recorder.Record(ctx, "300300", 40, 10); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	checks := []struct {
		scope usage.Scope
		key   string
	}{
		{usage.ScopeDaily, usage.DailyKey(now)},
		{usage.ScopeMonthly, usage.MonthlyKey(now)},
		{usage.ScopeIdentity, usage.IdentityKey("300300", now)},
	}
	for _, check := range checks {
		window, err := recorder.Window(ctx, check.scope, check.key)
		if err != nil {
			t.Fatalf("Window(%s) failed: %v", check.scope, err)
		}
		if window.InputTokens != 40 || window.OutputTokens != 10 || window.Requests != 1 {
			t.Errorf("%s window: got %+v", check.scope, window)
		}
	}
}

func TestWindowExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recorder := newMemoryRecorder(t, &now)

	if _, err := recorder.Record(ctx, "300400", 10, 5); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	recordedAt := now

	now = now.Add(91 * 24 * time.Hour)
	window, err := recorder.Window(ctx, usage.ScopeDaily, usage.DailyKey(recordedAt))
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if window.Requests != 0 {
		t.Error("expected daily window discarded after retention")
	}

	// The monthly window lives a year.
	window, err = recorder.Window(ctx, usage.ScopeMonthly, usage.MonthlyKey(recordedAt))
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if window.Requests != 1 {
		t.Error("expected monthly window to survive 91 days")
	}
}

func TestUnknownScope(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	recorder := newMemoryRecorder(t, &now)

	if _, err := recorder.Window(ctx, usage.Scope("weekly"), "2025-W23"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
