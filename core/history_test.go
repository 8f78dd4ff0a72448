package orchestration

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestHistoryLogEvictsOldestBeyondCapacity(t *testing.T) {
	log := NewHistoryLog(DefaultHistoryCapacity)

	for i := range 55 {
		log.Append(newEntry(RoleUser, fmt.Sprintf("utterance %d", i)))
	}

	if got := log.Len(); got != DefaultHistoryCapacity {
		t.Fatalf("expected %d entries, got %d", DefaultHistoryCapacity, got)
	}

	entries := log.Snapshot()
	if entries[0].Content != "utterance 5" {
		t.Fatalf("expected oldest surviving entry %q, got %q", "utterance 5", entries[0].Content)
	}
	if entries[len(entries)-1].Content != "utterance 54" {
		t.Fatalf("expected newest entry %q, got %q", "utterance 54", entries[len(entries)-1].Content)
	}
}

func TestHistoryLogSnapshotIsDetached(t *testing.T) {
	log := NewHistoryLog(10)

	confidence := 0.9
	entry := newEntry(RoleUser, "hello")
	entry.Confidence = &confidence
	log.Append(entry)

	snapshot := log.Snapshot()
	*snapshot[0].Confidence = 0.1
	snapshot[0].Content = "mutated"

	second := log.Snapshot()
	if second[0].Content != "hello" {
		t.Fatalf("expected stored content untouched, got %q", second[0].Content)
	}
	if *second[0].Confidence != 0.9 {
		t.Fatalf("expected stored confidence untouched, got %v", *second[0].Confidence)
	}
}

func TestHistoryLogExport(t *testing.T) {
	log := NewHistoryLog(10)
	log.Append(newEntry(RoleUser, "hello"))
	assistant := newEntry(RoleAssistant, "hi")
	assistant.Action = "navigate"
	log.Append(assistant)

	serialized, err := log.Export()
	if err != nil {
		t.Fatalf("failed to export history: %v", err)
	}

	var entries []Entry
	if err := json.Unmarshal(serialized, &entries); err != nil {
		t.Fatalf("exported history is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 exported entries, got %d", len(entries))
	}
	if entries[1].Action != "navigate" {
		t.Fatalf("expected action preserved, got %q", entries[1].Action)
	}
}

func TestHistoryLogClear(t *testing.T) {
	log := NewHistoryLog(10)
	log.Append(newEntry(RoleUser, "hello"))
	log.Clear()

	if got := log.Len(); got != 0 {
		t.Fatalf("expected empty log, got %d entries", got)
	}
}
