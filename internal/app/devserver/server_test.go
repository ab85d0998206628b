package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"syncpull/internal/app/client"
	"syncpull/internal/app/client/config"
	"syncpull/internal/domain/sync"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedDefault(srv *Server) {
	srv.Seed("main",
		Item{Type: "contact", AckKey: "a1", Data: map[string]any{"name": "Bob"}},
		Item{Type: "note", AckKey: "a2", Data: map[string]any{"title": "todo", "text": "buy milk"}},
	)
}

func TestStartRequiresDeviceHeader(t *testing.T) {
	srv := New(testLogger(), 0)
	seedDefault(srv)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync/start", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartNoContentWhenEmpty(t *testing.T) {
	srv := New(testLogger(), 0)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/sync/start", strings.NewReader("{}"))
	req.Header.Set("X-Device-UUID", "dev-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestFetchUnknownSession(t *testing.T) {
	srv := New(testLogger(), 0)
	seedDefault(srv)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/sync/nope/queues/main")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Сквозной сценарий: движок клиента против dev-сервера
// через настоящий HTTP транспорт.
func TestEndToEndDrain(t *testing.T) {
	srv := New(testLogger(), 1) // маленький пакет, чтобы было несколько выборок
	seedDefault(srv)
	srv.Seed("main", Item{Type: "hologram", AckKey: "a3", Data: map[string]any{}})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(ts.URL, "http://"),
		DeviceKind:    "desktop",
	}
	transport, err := client.NewHTTPTransport(cfg, testLogger())
	require.NoError(t, err)

	engine := client.NewEngine(transport, testLogger(), cfg.DeviceKind)
	ctx := context.Background()

	session, err := engine.Start(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, session.Queues, 1)
	assert.Equal(t, "main", session.Queues[0].Name)

	var items []sync.Item
	for {
		batch, err := engine.Fetch(ctx, "dev-1", session.ID, "main")
		if errors.Is(err, sync.ErrQueueEmpty) {
			break
		}
		require.NoError(t, err)
		items = append(items, batch...)
	}

	// Запись неизвестного типа выпала, известные пришли по порядку
	require.Len(t, items, 2)
	assert.Equal(t, "contact", items[0].Meta.Type)
	assert.Equal(t, "note", items[1].Meta.Type)
	assert.Equal(t, int64(1), engine.Skipped())

	ok, err := engine.Ack(ctx, "dev-1", sync.AckKeys(items))
	require.NoError(t, err)
	assert.True(t, ok)

	// Подтвержденные записи освобождены, непонятая - осталась
	assert.Equal(t, 1, srv.Pending("main"))

	// Повторное подтверждение тех же ключей безвредно
	ok, err = engine.Ack(ctx, "dev-1", sync.AckKeys(items))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, srv.Pending("main"))
}

func TestNewSessionResetsDelivery(t *testing.T) {
	srv := New(testLogger(), 0)
	seedDefault(srv)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(ts.URL, "http://"),
		DeviceKind:    "desktop",
	}
	transport, err := client.NewHTTPTransport(cfg, testLogger())
	require.NoError(t, err)

	engine := client.NewEngine(transport, testLogger(), cfg.DeviceKind)
	ctx := context.Background()

	first, err := engine.Start(ctx, "dev-1")
	require.NoError(t, err)

	items, err := engine.Fetch(ctx, "dev-1", first.ID, "main")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Клиент не подтвердил пакет; новая сессия доставит его снова
	second, err := engine.Start(ctx, "dev-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Старая сессия отозвана
	_, err = engine.Fetch(ctx, "dev-1", first.ID, "main")
	require.Error(t, err)
	require.NotErrorIs(t, err, sync.ErrQueueEmpty)

	items, err = engine.Fetch(ctx, "dev-1", second.ID, "main")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
