package sync

import (
	"encoding/json"
	"fmt"
)

// DTO для тел ответов протокола синхронизации.
// Формы повторяют проводной формат сервера: сессия приходит
// завернутой в "data", дескрипторы очередей - каждый в своем "data".

// AckKey - непрозрачный токен позиции записи в очереди.
// На проводе может быть и строкой, и числом; храним строкой.
type AckKey string

func (k *AckKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = AckKey(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*k = AckKey(n.String())
		return nil
	}

	return fmt.Errorf("ack_key: неподдерживаемое значение %s", string(b))
}

// StartResponse - тело ответа на запрос старта сессии
type StartResponse struct {
	Data SessionPayload `json:"data"`
}

// SessionPayload - сессия в проводном формате
type SessionPayload struct {
	ID     string       `json:"id"`
	Queues []QueueEntry `json:"queues"`
}

// QueueEntry - элемент массива очередей; дескриптор вложен в "data"
type QueueEntry struct {
	Data QueuePayload `json:"data"`
}

type QueuePayload struct {
	Name string `json:"name"`
}

// ToSession отображает проводную форму в доменную модель.
// Сессия без очередей допустима.
func (p SessionPayload) ToSession() *Session {
	queues := make([]Queue, 0, len(p.Queues))
	for _, entry := range p.Queues {
		queues = append(queues, Queue{Name: entry.Data.Name})
	}
	return &Session{
		ID:     p.ID,
		Queues: queues,
	}
}

// FetchResponse - тело ответа на запрос пакета из очереди
type FetchResponse struct {
	Items []ItemPayload `json:"items"`
}

// ItemPayload - один элемент очереди в проводном формате;
// полезная нагрузка остается сырым JSON до разрешения типа
type ItemPayload struct {
	Meta MetaPayload     `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type MetaPayload struct {
	Type string     `json:"type"`
	Sync CursorMeta `json:"sync"`
}

// ToMeta отображает проводные метаданные в доменную модель.
func (p MetaPayload) ToMeta() Meta {
	return Meta{
		Type: p.Type,
		Sync: p.Sync,
	}
}

// AckRequest - тело запроса подтверждения потребленных записей
type AckRequest struct {
	AckKeys []string `json:"ack_keys"`
}
