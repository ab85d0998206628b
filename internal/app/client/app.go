package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"syncpull/internal/app/client/config"
	"syncpull/internal/domain/sync"
)

type App struct {
	config    *config.Config
	log       *slog.Logger
	transport *httpTransport
	engine    *Engine
	storage   Storage
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	// Инициализируем HTTP транспорт
	transport, err := NewHTTPTransport(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации транспорта: %w", err)
	}

	// Инициализируем локальное хранилище (используем SQLite)
	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	return &App{
		config:    cfg,
		log:       log,
		transport: transport,
		engine:    NewEngine(transport, log, cfg.DeviceKind),
		storage:   storage,
	}, nil
}

// DeviceUUID возвращает идентификатор устройства, сохраненный
// командой init. Идентификатор непрозрачен и передается серверу
// в заголовке каждого запроса.
func (a *App) DeviceUUID() (string, error) {
	data, err := os.ReadFile(a.config.DeviceUUIDPath)
	if err != nil {
		return "", fmt.Errorf("устройство не инициализировано, выполните: syncpull init: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("файл идентификатора устройства пуст: %s", a.config.DeviceUUIDPath)
	}

	return id, nil
}

// InitDevice создает идентификатор устройства, если его еще нет,
// и возвращает его. Повторный вызов возвращает существующий.
func (a *App) InitDevice() (string, error) {
	if id, err := a.DeviceUUID(); err == nil {
		return id, nil
	}

	id := uuid.NewString()
	if err := os.WriteFile(a.config.DeviceUUIDPath, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("ошибка сохранения идентификатора устройства: %w", err)
	}

	a.log.Info("идентификатор устройства создан", "device_uuid", id)
	return id, nil
}

// IsInitialized проверяет, создан ли идентификатор устройства.
func (a *App) IsInitialized() bool {
	_, err := a.DeviceUUID()
	return err == nil
}

// CheckConnection проверяет доступность сервера.
func (a *App) CheckConnection(ctx context.Context) error {
	return a.transport.HealthCheck(ctx)
}

// ListRecords возвращает локально сохраненные записи.
func (a *App) ListRecords(filter *RecordFilter) ([]*StoredRecord, error) {
	return a.storage.ListRecords(filter)
}

// Counts возвращает счетчики локального хранилища.
func (a *App) Counts() (total int, pending int, err error) {
	return a.storage.Counts()
}

// PendingAckKeys возвращает неподтвержденные ключи очереди.
func (a *App) PendingAckKeys(queue string) ([]string, error) {
	return a.storage.PendingAckKeys(queue)
}

// Close закрывает локальное хранилище.
func (a *App) Close() error {
	return a.storage.Close()
}

// SyncStats - итог одного цикла синхронизации
type SyncStats struct {
	SessionID   string        `json:"session_id,omitempty"`
	NothingToDo bool          `json:"nothing_to_do,omitempty"`
	Queues      int           `json:"queues"`
	Fetched     int           `json:"fetched"`
	Stored      int           `json:"stored"`
	Acked       int           `json:"acked"`
	Skipped     int64         `json:"skipped"`
	Duration    time.Duration `json:"duration"`
}

// SyncRun выполняет один полный цикл синхронизации: открывает
// сессию и выкачивает все объявленные в ней очереди, подтверждая
// сохраненные пакеты. Подтверждение пакета идет параллельно
// с выборкой следующего - ключи пакетов независимы.
func (a *App) SyncRun(ctx context.Context) (*SyncStats, error) {
	start := time.Now()
	stats := &SyncStats{}

	device, err := a.DeviceUUID()
	if err != nil {
		return nil, err
	}

	session, err := a.engine.Start(ctx, device)
	if errors.Is(err, sync.ErrNothingToSync) {
		stats.NothingToDo = true
		stats.Duration = time.Since(start)
		a.log.Info("синхронизация не требуется")
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	stats.SessionID = session.ID
	stats.Queues = len(session.Queues)

	for _, queue := range session.Queues {
		if err := a.drainQueue(ctx, device, session.ID, queue.Name, stats); err != nil {
			return stats, fmt.Errorf("очередь %s: %w", queue.Name, err)
		}
	}

	stats.Skipped = a.engine.Skipped()
	stats.Duration = time.Since(start)

	a.log.Info("цикл синхронизации завершен",
		"session_id", stats.SessionID,
		"fetched", stats.Fetched,
		"acked", stats.Acked,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)

	return stats, nil
}

type ackResult struct {
	keys []string
	ok   bool
	err  error
}

func (a *App) drainQueue(ctx context.Context, device, sessionID, queue string, stats *SyncStats) error {
	// Сначала досылаем подтверждения, оставшиеся с прошлых запусков:
	// повторный ack тех же ключей безвреден
	if err := a.retryPendingAcks(ctx, device, queue, stats); err != nil {
		return err
	}

	ackAsync := func(keys []string) chan ackResult {
		ch := make(chan ackResult, 1)
		go func() {
			ok, err := a.engine.Ack(ctx, device, keys)
			ch <- ackResult{keys: keys, ok: ok, err: err}
		}()
		return ch
	}

	collect := func(ch chan ackResult) error {
		if ch == nil {
			return nil
		}
		res := <-ch
		if res.err != nil {
			return res.err
		}
		if !res.ok {
			// Ключи останутся неподтвержденными до следующего запуска
			a.log.Warn("пакет не подтвержден, повторим в следующем цикле", "keys", len(res.keys))
			return nil
		}
		if err := a.storage.MarkAcked(res.keys); err != nil {
			return err
		}
		stats.Acked += len(res.keys)
		return nil
	}

	var inflight chan ackResult

	for {
		items, err := a.engine.Fetch(ctx, device, sessionID, queue)
		if errors.Is(err, sync.ErrQueueEmpty) {
			break
		}
		if err != nil {
			if aerr := collect(inflight); aerr != nil {
				a.log.Warn("ошибка подтверждения на фоне сбоя выборки", "error", aerr)
			}
			return err
		}

		if len(items) == 0 {
			// Пакет целиком состоял из записей неизвестных типов.
			// Без подтверждения сервер будет присылать его снова,
			// поэтому прерываем дренаж очереди.
			a.log.Warn("пакет целиком пропущен, дренаж очереди остановлен", "queue", queue)
			break
		}

		if err := a.storage.SaveItems(sessionID, queue, items); err != nil {
			return err
		}
		stats.Fetched += len(items)
		stats.Stored += len(items)

		if err := collect(inflight); err != nil {
			return err
		}
		inflight = ackAsync(sync.AckKeys(items))
	}

	return collect(inflight)
}

func (a *App) retryPendingAcks(ctx context.Context, device, queue string, stats *SyncStats) error {
	keys, err := a.storage.PendingAckKeys(queue)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	ok, err := a.engine.Ack(ctx, device, keys)
	if err != nil {
		return err
	}
	if !ok {
		a.log.Warn("досылка подтверждений отклонена", "keys", len(keys))
		return nil
	}

	if err := a.storage.MarkAcked(keys); err != nil {
		return err
	}
	stats.Acked += len(keys)

	return nil
}
