package client

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"syncpull/internal/domain/record"
	"syncpull/internal/domain/sync"
	"syncpull/internal/infrastructure/migration"
)

// StoredRecord - запись очереди, сохраненная локально.
// Ключ подтверждения служит первичным ключом, поэтому повторная
// доставка одной и той же записи безвредна.
type StoredRecord struct {
	AckKey    string    `json:"ack_key"`
	SessionID string    `json:"session_id"`
	Queue     string    `json:"queue"`
	Type      string    `json:"type"`
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Acked     bool      `json:"acked"`
}

// RecordFilter - фильтр выборки локальных записей
type RecordFilter struct {
	Type  record.RecType
	Queue string
	Limit int
}

// Storage - локальное хранилище потребленных записей
type Storage interface {
	SaveItems(sessionID, queue string, items []sync.Item) error
	PendingAckKeys(queue string) ([]string, error)
	MarkAcked(keys []string) error
	ListRecords(filter *RecordFilter) ([]*StoredRecord, error)
	Counts() (total int, pending int, err error)
	Close() error
}

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Схема управляется миграциями до открытия рабочего соединения
	mg := migration.New("sqlite3://"+path, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции локального хранилища: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveItems сохраняет пакет записей одной транзакцией.
// Повторное сохранение по тому же ключу подтверждения обновляет
// запись, не плодя дубликатов.
func (s *SQLiteStorage) SaveItems(sessionID, queue string, items []sync.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (ack_key, session_id, queue, type, data, fetched_at, acked)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(ack_key) DO UPDATE SET
			session_id = excluded.session_id,
			queue      = excluded.queue,
			type       = excluded.type,
			data       = excluded.data,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		data, err := item.Record.ToJSON()
		if err != nil {
			return fmt.Errorf("ошибка сериализации записи %s: %w", item.Meta.Sync.AckKey, err)
		}

		if _, err := stmt.Exec(string(item.Meta.Sync.AckKey), sessionID, queue,
			item.Meta.Type, data, now); err != nil {
			return fmt.Errorf("ошибка сохранения записи %s: %w", item.Meta.Sync.AckKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

// PendingAckKeys возвращает ключи сохраненных, но еще не
// подтвержденных записей очереди в порядке получения.
func (s *SQLiteStorage) PendingAckKeys(queue string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT ack_key FROM records
		WHERE queue = ? AND acked = 0
		ORDER BY fetched_at, ack_key
	`, queue)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки ключей: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("ошибка чтения ключа: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// MarkAcked помечает записи подтвержденными.
func (s *SQLiteStorage) MarkAcked(keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	_, err := s.db.Exec(
		fmt.Sprintf("UPDATE records SET acked = 1 WHERE ack_key IN (%s)", placeholders),
		args...,
	)
	if err != nil {
		return fmt.Errorf("ошибка отметки подтверждения: %w", err)
	}

	return nil
}

// ListRecords возвращает локальные записи по фильтру,
// новые записи первыми.
func (s *SQLiteStorage) ListRecords(filter *RecordFilter) ([]*StoredRecord, error) {
	query := `
		SELECT ack_key, session_id, queue, type, data, fetched_at, acked
		FROM records
	`
	var conds []string
	var args []any

	if filter != nil {
		if filter.Type != "" {
			conds = append(conds, "type = ?")
			args = append(args, string(filter.Type))
		}
		if filter.Queue != "" {
			conds = append(conds, "queue = ?")
			args = append(args, filter.Queue)
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY fetched_at DESC, ack_key"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки записей: %w", err)
	}
	defer rows.Close()

	var records []*StoredRecord
	for rows.Next() {
		var rec StoredRecord
		if err := rows.Scan(&rec.AckKey, &rec.SessionID, &rec.Queue, &rec.Type,
			&rec.Data, &rec.FetchedAt, &rec.Acked); err != nil {
			return nil, fmt.Errorf("ошибка чтения записи: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Counts возвращает общее число записей и число неподтвержденных.
func (s *SQLiteStorage) Counts() (int, int, error) {
	var total, pending int
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN acked = 0 THEN 1 ELSE 0 END), 0)
		FROM records
	`).Scan(&total, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return total, pending, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
