package notifications

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

const trackerStorageKey = "notification-tracking"

// trackerStaleAfter bounds how long a suppressed alert stays suppressed when
// nothing clears it explicitly. Past this age the whole set is dropped at load
// so conditions that still hold get re-alerted.
const trackerStaleAfter = 24 * time.Hour

// trackerBlob is the persisted layout: sent identifiers plus the epoch
// millisecond timestamp of the last mutation.
type trackerBlob struct {
	SentIDs    []string `json:"sentIds"`
	LastUpdate int64    `json:"lastUpdate"`
}

// Tracker remembers which alert identifiers have already been delivered so an
// unchanged condition does not produce the same immediate notification twice.
// The in-memory set is mutated synchronously under the mutex; persistence is
// fire-and-forget so callers never block on the key-value store.
type Tracker struct {
	store kvstore.Store
	now   func() time.Time

	mu         sync.Mutex
	sent       map[string]struct{}
	lastUpdate time.Time

	// persistMu serializes store writes so a slow writer holding an old
	// snapshot can never commit after a newer one.
	persistMu sync.Mutex
}

// NewTracker creates an empty tracker over the given store. Call Load before
// first use. A nil now falls back to time.Now.
func NewTracker(store kvstore.Store, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store: store,
		now:   now,
		sent:  make(map[string]struct{}),
	}
}

// Load restores the sent set from the store. A missing blob starts empty, a
// malformed blob is discarded, and a blob older than the staleness window is
// cleared wholesale.
func (t *Tracker) Load(ctx context.Context) {
	data, exists, err := t.store.Get(ctx, trackerStorageKey)
	if err != nil {
		logger.Warn("Failed to load notification tracking, starting empty", "error", err)
		return
	}
	if !exists {
		return
	}

	var blob trackerBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		logger.Warn("Malformed notification tracking blob, resetting", "error", err)
		t.touch()
		t.persistAsync()
		return
	}

	now := t.now()
	lastUpdate := time.UnixMilli(blob.LastUpdate)
	if now.Sub(lastUpdate) > trackerStaleAfter {
		logger.Info("Notification tracking is stale, clearing",
			"last_update", lastUpdate, "entries", len(blob.SentIDs))
		t.touch()
		t.persistAsync()
		return
	}

	t.mu.Lock()
	for _, id := range blob.SentIDs {
		t.sent[id] = struct{}{}
	}
	t.lastUpdate = lastUpdate
	t.mu.Unlock()
}

// HasBeenSent reports whether the identifier was already delivered.
func (t *Tracker) HasBeenSent(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, sent := t.sent[key.String()]
	return sent
}

// MarkSent records the identifier as delivered. The set is updated before the
// function returns so a concurrent reconcile sees it immediately.
func (t *Tracker) MarkSent(key Key) {
	t.mu.Lock()
	t.sent[key.String()] = struct{}{}
	t.lastUpdate = t.now()
	t.mu.Unlock()
	t.persistAsync()
}

// Unmark removes a single identifier, used when a delivery attempt fails so
// the alert is retried on the next reconcile.
func (t *Tracker) Unmark(key Key) {
	t.mu.Lock()
	delete(t.sent, key.String())
	t.lastUpdate = t.now()
	t.mu.Unlock()
	t.persistAsync()
}

// ClearForSubject removes every identifier embedding the given supply or item
// id. Called on restock and on deletion so the next occurrence re-alerts.
func (t *Tracker) ClearForSubject(subjectID string) {
	t.mu.Lock()
	removed := 0
	for id := range t.sent {
		if identifierMatchesSubject(id, subjectID) {
			delete(t.sent, id)
			removed++
		}
	}
	if removed > 0 {
		t.lastUpdate = t.now()
	}
	t.mu.Unlock()

	if removed > 0 {
		logger.Debug("Cleared notification tracking", "subject_id", subjectID, "removed", removed)
		t.persistAsync()
	}
}

// PruneLowStock drops low-stock identifiers that no longer correspond to a
// currently low supply at its current quantity, so a future recurrence of the
// condition re-alerts.
func (t *Tracker) PruneLowStock(currentLow map[string]int) {
	valid := make(map[string]struct{}, len(currentLow))
	for supplyID, quantity := range currentLow {
		valid[LowStockKey(supplyID, quantity).String()] = struct{}{}
	}

	t.mu.Lock()
	removed := 0
	for id := range t.sent {
		if !strings.HasPrefix(id, string(CategoryLowStock)+"-") {
			continue
		}
		if _, ok := valid[id]; !ok {
			delete(t.sent, id)
			removed++
		}
	}
	if removed > 0 {
		t.lastUpdate = t.now()
	}
	t.mu.Unlock()

	if removed > 0 {
		t.persistAsync()
	}
}

// Reset wipes all tracking state, in memory and in the store. The store write
// is synchronous so a full wipe is durable before Reset returns.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.sent = make(map[string]struct{})
	t.lastUpdate = t.now()
	t.mu.Unlock()

	t.persist()
}

func (t *Tracker) touch() {
	t.mu.Lock()
	t.lastUpdate = t.now()
	t.mu.Unlock()
}

// persistAsync writes the set without blocking the caller. A failed write
// only costs at-most-one duplicate alert after a restart.
func (t *Tracker) persistAsync() {
	go t.persist()
}

// persist snapshots the current set at write time, so late writers always
// store the newest state and can never resurrect removed identifiers. Writes
// are serialized: the snapshot is taken only once the previous write has
// committed, so store writes happen in snapshot order.
func (t *Tracker) persist() {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	t.mu.Lock()
	blob := trackerBlob{
		SentIDs:    make([]string, 0, len(t.sent)),
		LastUpdate: t.lastUpdate.UnixMilli(),
	}
	for id := range t.sent {
		blob.SentIDs = append(blob.SentIDs, id)
	}
	t.mu.Unlock()

	data, err := json.Marshal(blob)
	if err != nil {
		logger.Error("Failed to marshal notification tracking", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.Set(ctx, trackerStorageKey, data); err != nil {
		logger.Warn("Failed to persist notification tracking", "error", err)
	}
}
