package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
)

func newMemoryStore(t *testing.T, now *time.Time, ttl time.Duration) session.Store {
	t.Helper()
	store, err := session.NewStore(session.StoreTypeMemory,
		session.WithTTL(ttl),
		session.WithClock(func() time.Time { return *now }),
	)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestTranscriptCap(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := newMemoryStore(t, &now, time.Hour)

	for i := 0; i < 25; i++ {
		if err := store.AppendTranscript(ctx, "300100", session.RoleUser, fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("AppendTranscript failed: %v", err)
		}
	}

	state, err := store.Get(ctx, "300100")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(state.Transcript) != session.TranscriptCap {
		t.Fatalf("expected %d entries, got %d", session.TranscriptCap, len(state.Transcript))
	}
	if state.Transcript[0].Text != "msg 5" {
		t.Errorf("expected oldest entry to be msg 5, got %q", state.Transcript[0].Text)
	}
	if state.Transcript[19].Text != "msg 24" {
		t.Errorf("expected newest entry to be msg 24, got %q", state.Transcript[19].Text)
	}
}

func TestMergeSemantics(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := newMemoryStore(t, &now, time.Hour)

	if _, err := store.Update(ctx, "300200", session.Patch{Extra: map[string]any{"a": 1}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	state, err := store.Update(ctx, "300200", session.Patch{Extra: map[string]any{"b": 2}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if state.Extra["a"] != 1 || state.Extra["b"] != 2 {
		t.Fatalf("expected merged extras {a:1 b:2}, got %v", state.Extra)
	}

	state, err = store.Update(ctx, "300200", session.Patch{Extra: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if state.Extra["a"] != 3 {
		t.Errorf("expected last write to win for key a, got %v", state.Extra["a"])
	}
	if state.Extra["b"] != 2 {
		t.Errorf("expected key b untouched, got %v", state.Extra["b"])
	}
}

func TestTypedPatchFields(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := newMemoryStore(t, &now, time.Hour)

	state, err := store.Update(ctx, "300300", session.Patch{
		CustomerName: session.String("Ali"),
		CurrentOrder: &session.OrderSnapshot{ID: 7, Total: 950},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if state.CustomerName != "Ali" || state.CurrentOrder == nil {
		t.Fatalf("unexpected state after first patch: %+v", state)
	}

	state, err = store.Update(ctx, "300300", session.Patch{
		ClearCurrentOrder: true,
		LastOrder:         &session.OrderSnapshot{ID: 7, Total: 950},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if state.CurrentOrder != nil {
		t.Error("expected current order cleared")
	}
	if state.LastOrder == nil || state.LastOrder.ID != 7 {
		t.Errorf("expected last order snapshot, got %+v", state.LastOrder)
	}
	if state.CustomerName != "Ali" {
		t.Errorf("expected untouched field to survive merge, got %q", state.CustomerName)
	}
}

func TestTTLRefreshOnRead(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore(t, &now, time.Hour)

	if _, err := store.Update(ctx, "300400", session.Patch{CustomerName: session.String("Sara")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// 50 minutes idle: still alive, and the read resets the TTL.
	now = now.Add(50 * time.Minute)
	state, err := store.Get(ctx, "300400")
	if err != nil || state == nil {
		t.Fatalf("expected session hit at 50m, got state=%v err=%v", state, err)
	}

	// Another 55 minutes: 105 past the write, but only 55 past the read.
	now = now.Add(55 * time.Minute)
	state, err = store.Get(ctx, "300400")
	if err != nil || state == nil {
		t.Fatal("expected session alive: read should have reset the TTL")
	}

	// 61 minutes with no access: expired.
	now = now.Add(61 * time.Minute)
	state, err = store.Get(ctx, "300400")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state != nil {
		t.Error("expected session expired after full idle timeout")
	}
}

func TestExpiredSessionIsMiss(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore(t, &now, time.Hour)

	if _, err := store.Update(ctx, "300500", session.Patch{CustomerName: session.String("Omar")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	now = now.Add(2 * time.Hour)

	// Update after expiry starts from an empty session.
	state, err := store.Update(ctx, "300500", session.Patch{Extra: map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if state.CustomerName != "" {
		t.Errorf("expected expired state discarded, got name %q", state.CustomerName)
	}
}

func TestDeleteAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := newMemoryStore(t, &now, time.Hour)

	if err := store.Delete(ctx, "nobody"); err != nil {
		t.Fatalf("Delete of absent session should not error, got %v", err)
	}
}
