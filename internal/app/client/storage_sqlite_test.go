package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncpull/internal/domain/record"
	"syncpull/internal/domain/sync"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage
}

func testItems() []sync.Item {
	return []sync.Item{
		{
			Meta:   sync.Meta{Type: "contact", Sync: sync.CursorMeta{AckKey: "a1"}},
			Record: &record.ContactData{Name: "Bob"},
		},
		{
			Meta:   sync.Meta{Type: "note", Sync: sync.CursorMeta{AckKey: "a2"}},
			Record: &record.NoteData{Title: "todo", Text: "buy milk"},
		},
	}
}

func TestSaveAndListRecords(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveItems("s1", "main", testItems()))

	records, err := storage.ListRecords(nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byType, err := storage.ListRecords(&RecordFilter{Type: record.RecTypeContact})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "a1", byType[0].AckKey)
	assert.Equal(t, "s1", byType[0].SessionID)
	assert.Equal(t, "main", byType[0].Queue)
	assert.False(t, byType[0].Acked)
	assert.JSONEq(t, `{"name":"Bob"}`, string(byType[0].Data))
}

func TestSaveItemsIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)

	items := testItems()
	require.NoError(t, storage.SaveItems("s1", "main", items))
	// Сервер может доставить тот же пакет повторно до подтверждения
	require.NoError(t, storage.SaveItems("s1", "main", items))

	total, pending, err := storage.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, pending)
}

func TestPendingAckKeysAndMarkAcked(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveItems("s1", "main", testItems()))

	keys, err := storage.PendingAckKeys("main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keys)

	require.NoError(t, storage.MarkAcked([]string{"a1"}))

	keys, err = storage.PendingAckKeys("main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, keys)

	total, pending, err := storage.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, pending)
}

func TestMarkAckedEmptyKeys(t *testing.T) {
	storage := newTestStorage(t)
	assert.NoError(t, storage.MarkAcked(nil))
}

func TestPendingAckKeysScopedToQueue(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveItems("s1", "main", testItems()[:1]))
	require.NoError(t, storage.SaveItems("s1", "archive", []sync.Item{
		{
			Meta:   sync.Meta{Type: "note", Sync: sync.CursorMeta{AckKey: "b1"}},
			Record: &record.NoteData{Title: "old", Text: "archived"},
		},
	}))

	keys, err := storage.PendingAckKeys("archive")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, keys)
}
