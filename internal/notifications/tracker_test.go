package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedTrackerBlob(t *testing.T, store kvstore.Store, ids []string, lastUpdate time.Time) {
	t.Helper()
	data, err := json.Marshal(trackerBlob{SentIDs: ids, LastUpdate: lastUpdate.UnixMilli()})
	if err != nil {
		t.Fatalf("failed to marshal blob: %v", err)
	}
	if err := store.Set(context.Background(), trackerStorageKey, data); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
}

func TestTrackerMarkAndClear(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("mark then query", func(t *testing.T) {
		tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))
		key := LowStockKey("s1", 2)

		if tracker.HasBeenSent(key) {
			t.Error("fresh tracker should report unsent")
		}
		tracker.MarkSent(key)
		if !tracker.HasBeenSent(key) {
			t.Error("marked identifier should report sent")
		}
	})

	t.Run("clear for subject removes all its identifiers", func(t *testing.T) {
		tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))
		tracker.MarkSent(LowStockKey("s1", 2))
		tracker.MarkSent(LowStockKey("s1", 1))
		tracker.MarkSent(ExpirationKey("s1"))
		tracker.MarkSent(ExpirationKey("s2"))

		tracker.ClearForSubject("s1")

		if tracker.HasBeenSent(LowStockKey("s1", 2)) || tracker.HasBeenSent(LowStockKey("s1", 1)) {
			t.Error("low-stock identifiers for s1 should be cleared")
		}
		if tracker.HasBeenSent(ExpirationKey("s1")) {
			t.Error("expiration identifier for s1 should be cleared")
		}
		if !tracker.HasBeenSent(ExpirationKey("s2")) {
			t.Error("unrelated supply must keep its identifier")
		}
	})

	t.Run("clear does not touch supplies sharing an id prefix", func(t *testing.T) {
		tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))
		tracker.MarkSent(LowStockKey("12345", 3))

		tracker.ClearForSubject("123")

		if !tracker.HasBeenSent(LowStockKey("12345", 3)) {
			t.Error("identifier of a supply merely sharing a prefix must survive")
		}
	})

	t.Run("unmark re-allows a single identifier", func(t *testing.T) {
		tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))
		key := ExpirationKey("s1")
		tracker.MarkSent(key)
		tracker.Unmark(key)
		if tracker.HasBeenSent(key) {
			t.Error("unmarked identifier should report unsent")
		}
	})
}

func TestTrackerPruneLowStock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))

	tracker.MarkSent(LowStockKey("s1", 2)) // still low at 2
	tracker.MarkSent(LowStockKey("s1", 4)) // stale quantity
	tracker.MarkSent(LowStockKey("s2", 1)) // no longer low
	tracker.MarkSent(ExpirationKey("s2"))  // not low-stock, untouched

	tracker.PruneLowStock(map[string]int{"s1": 2})

	if !tracker.HasBeenSent(LowStockKey("s1", 2)) {
		t.Error("identifier matching the current low quantity must survive")
	}
	if tracker.HasBeenSent(LowStockKey("s1", 4)) {
		t.Error("stale quantity identifier should be pruned")
	}
	if tracker.HasBeenSent(LowStockKey("s2", 1)) {
		t.Error("identifier of a supply no longer low should be pruned")
	}
	if !tracker.HasBeenSent(ExpirationKey("s2")) {
		t.Error("prune must only touch low-stock identifiers")
	}
}

func TestTrackerLoad(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("restores a recent blob", func(t *testing.T) {
		store := kvstore.NewMemory()
		seedTrackerBlob(t, store, []string{"low-stock-s1-2", "expiration-s1"}, now.Add(-time.Hour))

		tracker := NewTracker(store, fixedClock(now))
		tracker.Load(context.Background())

		if !tracker.HasBeenSent(LowStockKey("s1", 2)) || !tracker.HasBeenSent(ExpirationKey("s1")) {
			t.Error("loaded tracker should contain persisted identifiers")
		}
	})

	t.Run("clears a blob older than the staleness window", func(t *testing.T) {
		store := kvstore.NewMemory()
		seedTrackerBlob(t, store, []string{"low-stock-s1-2"}, now.Add(-25*time.Hour))

		tracker := NewTracker(store, fixedClock(now))
		tracker.Load(context.Background())

		if tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Error("stale tracker content must be discarded at load")
		}
	})

	t.Run("keeps a blob just inside the window", func(t *testing.T) {
		store := kvstore.NewMemory()
		seedTrackerBlob(t, store, []string{"low-stock-s1-2"}, now.Add(-23*time.Hour))

		tracker := NewTracker(store, fixedClock(now))
		tracker.Load(context.Background())

		if !tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Error("content inside the staleness window must survive load")
		}
	})

	t.Run("discards a malformed blob", func(t *testing.T) {
		store := kvstore.NewMemory()
		if err := store.Set(context.Background(), trackerStorageKey, []byte("{not json")); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}

		tracker := NewTracker(store, fixedClock(now))
		tracker.Load(context.Background())

		if tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Error("malformed blob must reset to empty")
		}
	})

	t.Run("missing blob starts empty", func(t *testing.T) {
		tracker := NewTracker(kvstore.NewMemory(), fixedClock(now))
		tracker.Load(context.Background())
		if tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Error("missing blob must start empty")
		}
	})
}

func TestTrackerReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := kvstore.NewMemory()
	tracker := NewTracker(store, fixedClock(now))

	tracker.MarkSent(LowStockKey("s1", 2))
	tracker.Reset()

	if tracker.HasBeenSent(LowStockKey("s1", 2)) {
		t.Error("reset tracker should be empty")
	}

	data, exists, err := store.Get(context.Background(), trackerStorageKey)
	if err != nil || !exists {
		t.Fatalf("reset should persist an empty blob, got exists=%v err=%v", exists, err)
	}
	var blob trackerBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		t.Fatalf("failed to unmarshal blob: %v", err)
	}
	if len(blob.SentIDs) != 0 {
		t.Errorf("persisted blob should be empty after reset, got %v", blob.SentIDs)
	}
}

// signalingStore reports every committed write in commit order.
type signalingStore struct {
	kvstore.Store
	writes chan []byte
}

func (s *signalingStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.Store.Set(ctx, key, value)
	data := make([]byte, len(value))
	copy(data, value)
	s.writes <- data
	return err
}

func TestTrackerPersistOrdering(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	const marks = 20

	store := &signalingStore{Store: kvstore.NewMemory(), writes: make(chan []byte, marks+1)}
	tracker := NewTracker(store, fixedClock(now))

	for i := 0; i < marks; i++ {
		tracker.MarkSent(LowStockKey(fmt.Sprintf("s%d", i), 1))
	}
	tracker.Reset()

	// One write per mark plus the reset. Whatever order the writers ran in,
	// the last committed write must reflect the wiped set: a writer that gets
	// its turn after the reset snapshots the empty state, never a stale one.
	var last []byte
	for i := 0; i < marks+1; i++ {
		select {
		case last = <-store.writes:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for write %d of %d", i+1, marks+1)
		}
	}

	var blob trackerBlob
	if err := json.Unmarshal(last, &blob); err != nil {
		t.Fatalf("failed to unmarshal final blob: %v", err)
	}
	if len(blob.SentIDs) != 0 {
		t.Errorf("final durable blob should be empty after reset, got %v", blob.SentIDs)
	}
}
