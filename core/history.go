package orchestration

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// DefaultHistoryCapacity bounds the conversation log; the oldest entry is
// evicted first once the bound is reached.
const DefaultHistoryCapacity = 50

// Role tells which side of the conversation produced an entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one conversation record. Entries are immutable after appending
// and leave the log only through FIFO eviction or an explicit clear.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	// Confidence is set on user entries produced by speech capture.
	Confidence *float64 `json:"confidence,omitempty"`
	// Action is set on assistant entries that carried a side effect.
	Action string `json:"action,omitempty"`
}

func newEntry(role Role, content string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Role:      role,
		Content:   content,
	}
}

// HistoryLog is the bounded, append-only conversation record. It is safe
// for concurrent use; the orchestrator is its only writer.
type HistoryLog struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewHistoryLog creates a log bounded at capacity entries; non-positive
// capacities fall back to DefaultHistoryCapacity.
func NewHistoryLog(capacity int) *HistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	return &HistoryLog{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append records an entry, evicting the oldest when the log is full.
func (h *HistoryLog) Append(entry Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Len reports the current number of entries.
func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Snapshot returns deep copies of all entries in insertion order, so
// callers cannot reach back into the log through the confidence pointer.
func (h *HistoryLog) Snapshot() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]Entry, 0, len(h.entries))
	if err := copier.CopyWithOption(&entries, h.entries, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched shapes, which identical
		// slice types rule out; fall back to a shallow copy.
		entries = append(entries[:0], h.entries...)
	}
	return entries
}

// Export serializes the full log for diagnostics.
func (h *HistoryLog) Export() ([]byte, error) {
	entries := h.Snapshot()

	serialized, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize history: %w", err)
	}
	return serialized, nil
}

// Clear empties the log. Session state is untouched.
func (h *HistoryLog) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}
