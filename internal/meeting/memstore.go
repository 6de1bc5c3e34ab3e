package meeting

import (
	"sync"

	"github.com/theirongolddev/meetcost/internal/model"
)

// MemStorage is an in-process Storage and HistoryStore.
type MemStorage struct {
	mu       sync.Mutex
	kv       map[string]string
	meetings []model.MeetingRecord
}

// NewMemStorage returns an empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{kv: make(map[string]string)}
}

// Get implements Storage.
func (m *MemStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

// Set implements Storage.
func (m *MemStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

// SaveMeeting implements HistoryStore.
func (m *MemStorage) SaveMeeting(rec model.MeetingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings = append(m.meetings, rec)
	return nil
}

// Meetings returns the recorded meetings, oldest first.
func (m *MemStorage) Meetings() []model.MeetingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.MeetingRecord, len(m.meetings))
	copy(out, m.meetings)
	return out
}
