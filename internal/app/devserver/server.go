// Package devserver - локальный сервер синхронизации для разработки
// и сквозных тестов. Хранит очереди в памяти и реализует три операции
// протокола: старт сессии, выборку пакетов и подтверждение.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	gosync "sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

const defaultBatchSize = 100

// Item - один элемент очереди на стороне сервера
type Item struct {
	Type   string
	AckKey string
	Data   any

	delivered bool
}

type Server struct {
	log       *slog.Logger
	batchSize int

	mu      gosync.Mutex
	queues  map[string][]*Item
	session string
	seq     int
}

func New(log *slog.Logger, batchSize int) *Server {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Server{
		log:       log,
		batchSize: batchSize,
		queues:    make(map[string][]*Item),
	}
}

// Seed добавляет записи в очередь.
func (s *Server) Seed(queue string, items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		it := item
		s.queues[queue] = append(s.queues[queue], &it)
	}
}

// Pending возвращает число неподтвержденных записей очереди.
func (s *Server) Pending(queue string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[queue])
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Post("/sync/start", s.handleStart)
	r.Get("/sync/{sessionID}/queues/{queue}", s.handleFetch)
	r.Post("/sync/ack", s.handleAck)

	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	device := r.Header.Get("X-Device-UUID")
	if device == "" {
		http.Error(w, "X-Device-UUID header is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var queues []map[string]any
	for name, items := range s.queues {
		if len(items) == 0 {
			continue
		}
		queues = append(queues, map[string]any{
			"data": map[string]any{"name": name},
		})
	}

	// Нечего синхронизировать - сессия не нужна
	if len(queues) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Новая сессия сбрасывает курсоры доставки и отзывает старую
	s.seq++
	s.session = fmt.Sprintf("s%d", s.seq)
	for _, items := range s.queues {
		for _, item := range items {
			item.delivered = false
		}
	}

	s.log.Info("сессия открыта", "session_id", s.session, "device", device, "queues", len(queues))

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":     s.session,
			"queues": queues,
		},
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	queue := chi.URLParam(r, "queue")

	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != s.session {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var batch []map[string]any
	for _, item := range s.queues[queue] {
		if item.delivered {
			continue
		}
		item.delivered = true
		batch = append(batch, map[string]any{
			"meta": map[string]any{
				"type": item.Type,
				"sync": map[string]any{"ack_key": item.AckKey},
			},
			"data": item.Data,
		})
		if len(batch) >= s.batchSize {
			break
		}
	}

	// Все доставлено - очередь исчерпана
	if len(batch) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": batch})
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	device := r.Header.Get("X-Device-UUID")
	if device == "" {
		http.Error(w, "X-Device-UUID header is required", http.StatusBadRequest)
		return
	}

	var req struct {
		AckKeys []string `json:"ack_keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	acked := make(map[string]bool, len(req.AckKeys))
	for _, key := range req.AckKeys {
		acked[key] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Подтвержденные записи освобождаются; повторное подтверждение
	// уже отсутствующих ключей безвредно
	for name, items := range s.queues {
		kept := items[:0]
		for _, item := range items {
			if !acked[item.AckKey] {
				kept = append(kept, item)
			}
		}
		s.queues[name] = kept
	}

	s.log.Debug("подтверждение принято", "device", device, "keys", len(req.AckKeys))

	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
