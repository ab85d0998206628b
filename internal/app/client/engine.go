package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/exp/slog"

	"syncpull/internal/app/client/config"
	"syncpull/internal/domain/record"
	"syncpull/internal/domain/sync"
)

// Заголовки протокола синхронизации, обязательные на каждом запросе.
const (
	headerDeviceUUID    = "X-Device-UUID"
	headerClientType    = "X-Client-Type"
	headerClientVersion = "X-Client-Version"
	headerDeviceKind    = "X-Device-Kind"
)

// Engine реализует клиентскую сторону протокола синхронизации:
// старт сессии, выборку пакетов из очередей и подтверждение
// потребленных записей. Движок не хранит состояния между вызовами,
// все три операции безопасны для конкурентного использования.
type Engine struct {
	transport  Transport
	log        *slog.Logger
	deviceKind string
	skipped    atomic.Int64
}

func NewEngine(transport Transport, log *slog.Logger, deviceKind string) *Engine {
	return &Engine{
		transport:  transport,
		log:        log,
		deviceKind: deviceKind,
	}
}

// protocolHeaders собирает заголовки протокола для одного запроса.
func protocolHeaders(deviceUUID, deviceKind string) map[string]string {
	return map[string]string{
		headerDeviceUUID:    deviceUUID,
		headerClientType:    config.ClientType,
		headerClientVersion: config.ClientVersion,
		headerDeviceKind:    deviceKind,
	}
}

// Start запрашивает у сервера сессию синхронизации для устройства.
// Если серверу нечего синхронизировать (ответ 204), возвращается
// sync.ErrNothingToSync - это нормальный исход, а не сбой.
func (e *Engine) Start(ctx context.Context, deviceUUID string) (*sync.Session, error) {
	deviceUUID = strings.TrimSpace(deviceUUID)
	if deviceUUID == "" {
		return nil, sync.ErrEmptyDeviceUUID
	}

	resp, err := e.transport.Call(ctx, http.MethodPost, "/sync/start",
		struct{}{}, protocolHeaders(deviceUUID, e.deviceKind))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, sync.ErrNothingToSync
	}

	var parsed sync.StartResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа сессии: %w", err)
	}

	session := parsed.Data.ToSession()
	e.log.Debug("сессия открыта", "session_id", session.ID, "queues", len(session.Queues))

	return session, nil
}

// Fetch запрашивает очередной пакет из именованной очереди сессии.
// Исчерпанная очередь (ответ 204) дает sync.ErrQueueEmpty.
// Записи неизвестных типов пропускаются без ошибки, порядок
// остальных записей соответствует порядку доставки сервера.
func (e *Engine) Fetch(ctx context.Context, deviceUUID, sessionID, queue string) ([]sync.Item, error) {
	deviceUUID = strings.TrimSpace(deviceUUID)
	sessionID = strings.TrimSpace(sessionID)
	queue = strings.TrimSpace(queue)

	switch {
	case deviceUUID == "":
		return nil, sync.ErrEmptyDeviceUUID
	case sessionID == "":
		return nil, sync.ErrEmptySessionID
	case queue == "":
		return nil, sync.ErrEmptyQueueName
	}

	path := fmt.Sprintf("/sync/%s/queues/%s", url.PathEscape(sessionID), url.PathEscape(queue))
	resp, err := e.transport.Call(ctx, http.MethodGet, path,
		nil, protocolHeaders(deviceUUID, e.deviceKind))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, sync.ErrQueueEmpty
	}

	var parsed sync.FetchResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("ошибка разбора пакета очереди %s: %w", queue, err)
	}

	items := make([]sync.Item, 0, len(parsed.Items))
	for _, p := range parsed.Items {
		constructor, ok := record.Resolve(p.Meta.Type)
		if !ok {
			// Сервер может начать присылать типы, которых клиент
			// еще не знает; такие записи пропускаются целиком.
			e.skipped.Add(1)
			e.log.Warn("запись пропущена: неизвестный тип",
				"type", p.Meta.Type,
				"ack_key", string(p.Meta.Sync.AckKey),
			)
			continue
		}

		rec, err := constructor(p.Data)
		if err != nil {
			return nil, fmt.Errorf("очередь %s: %w", queue, err)
		}

		items = append(items, sync.Item{
			Meta:   p.Meta.ToMeta(),
			Record: rec,
		})
	}

	return items, nil
}

// Ack подтверждает серверу потребление записей по их ключам.
// Пустой набор ключей - тривиальный успех без запроса. Любой статус,
// кроме 202, означает отказ и возвращается как false: подтверждение
// можно безопасно повторить с теми же ключами.
func (e *Engine) Ack(ctx context.Context, deviceUUID string, ackKeys []string) (bool, error) {
	deviceUUID = strings.TrimSpace(deviceUUID)
	if deviceUUID == "" {
		return false, sync.ErrEmptyDeviceUUID
	}

	if len(ackKeys) == 0 {
		return true, nil
	}

	resp, err := e.transport.Call(ctx, http.MethodPost, "/sync/ack",
		sync.AckRequest{AckKeys: ackKeys}, protocolHeaders(deviceUUID, e.deviceKind))
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusAccepted {
		e.log.Warn("подтверждение отклонено", "status", resp.StatusCode, "keys", len(ackKeys))
		return false, nil
	}

	return true, nil
}

// Skipped возвращает число записей, пропущенных из-за неизвестного
// типа, с момента создания движка. Диагностический счетчик,
// на результаты Fetch не влияет.
func (e *Engine) Skipped() int64 {
	return e.skipped.Load()
}
