package sync

import (
	"syncpull/internal/domain/record"
)

// Session представляет один активный цикл синхронизации,
// выданный сервером для конкретного устройства
type Session struct {
	ID     string  `json:"id"`
	Queues []Queue `json:"queues"`
}

// Queue ищет очередь по имени среди объявленных в сессии.
func (s *Session) Queue(name string) (Queue, bool) {
	for _, q := range s.Queues {
		if q.Name == name {
			return q, true
		}
	}
	return Queue{}, false
}

// Queue - именованный раздел потока изменений внутри сессии
type Queue struct {
	Name string `json:"name"`
}

// CursorMeta - курсорные метаданные записи; ключ подтверждения
// идентифицирует позицию записи в очереди для ack
type CursorMeta struct {
	AckKey AckKey `json:"ack_key"`
}

// Meta - конверт метаданных одного элемента очереди
type Meta struct {
	Type string     `json:"type"`
	Sync CursorMeta `json:"sync"`
}

// Item - пара (метаданные, полезная нагрузка), полученная из очереди
type Item struct {
	Meta   Meta
	Record record.Data
}

// AckKeys собирает ключи подтверждения элементов, сохраняя порядок доставки.
func AckKeys(items []Item) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, string(it.Meta.Sync.AckKey))
	}
	return keys
}
