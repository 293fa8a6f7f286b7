package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-process ProfileStore. It backs tests and the
// offline simulator, and serves as the default store until a real
// companion backend is wired in.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]CharacterSnapshot
}

// NewMemoryStore creates an empty in-process snapshot store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]CharacterSnapshot),
	}
}

var _ ProfileStore = (*MemoryStore)(nil)

// PushSnapshot records the latest snapshot per character
func (m *MemoryStore) PushSnapshot(_ context.Context, snapshot CharacterSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.CharacterID] = snapshot
	return nil
}

// Snapshot returns the last pushed snapshot for a character
func (m *MemoryStore) Snapshot(characterID string) (CharacterSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[characterID]
	return snap, ok
}

// MemoryScheduler is an in-process Scheduler with the same role as
// MemoryStore: tests, the simulator, and local development.
type MemoryScheduler struct {
	mu        sync.Mutex
	reminders map[string]Reminder
}

// NewMemoryScheduler creates an empty in-process scheduler
func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{
		reminders: make(map[string]Reminder),
	}
}

var _ Scheduler = (*MemoryScheduler)(nil)

// Schedule books or replaces the reminder for a run
func (m *MemoryScheduler) Schedule(_ context.Context, reminder Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders[reminder.RunID] = reminder
	return nil
}

// Cancel drops any pending reminder for a run
func (m *MemoryScheduler) Cancel(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reminders, runID)
	return nil
}

// Reminder returns the pending reminder for a run
func (m *MemoryScheduler) Reminder(runID string) (Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[runID]
	return r, ok
}
