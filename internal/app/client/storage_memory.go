package client

import (
	gosync "sync"
	"time"

	"syncpull/internal/domain/sync"
)

// MemoryStorage - запасное in-memory хранилище на случай,
// когда SQLite недоступен. Данные живут до конца процесса.
type MemoryStorage struct {
	mu      gosync.RWMutex
	records map[string]*StoredRecord
	order   []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*StoredRecord),
	}
}

func (m *MemoryStorage) SaveItems(sessionID, queue string, items []sync.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, item := range items {
		data, err := item.Record.ToJSON()
		if err != nil {
			return err
		}

		key := string(item.Meta.Sync.AckKey)
		if _, exists := m.records[key]; !exists {
			m.order = append(m.order, key)
		}
		m.records[key] = &StoredRecord{
			AckKey:    key,
			SessionID: sessionID,
			Queue:     queue,
			Type:      item.Meta.Type,
			Data:      data,
			FetchedAt: now,
		}
	}

	return nil
}

func (m *MemoryStorage) PendingAckKeys(queue string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for _, key := range m.order {
		rec := m.records[key]
		if rec.Queue == queue && !rec.Acked {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (m *MemoryStorage) MarkAcked(keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if rec, exists := m.records[key]; exists {
			rec.Acked = true
		}
	}

	return nil
}

func (m *MemoryStorage) ListRecords(filter *RecordFilter) ([]*StoredRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*StoredRecord
	// Новые записи первыми, как и в SQLite-хранилище
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.records[m.order[i]]
		if filter != nil {
			if filter.Type != "" && string(filter.Type) != rec.Type {
				continue
			}
			if filter.Queue != "" && filter.Queue != rec.Queue {
				continue
			}
			if filter.Limit > 0 && len(records) >= filter.Limit {
				break
			}
		}
		copied := *rec
		records = append(records, &copied)
	}

	return records, nil
}

func (m *MemoryStorage) Counts() (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pending := 0
	for _, rec := range m.records {
		if !rec.Acked {
			pending++
		}
	}

	return len(m.records), pending, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
