package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncpull/internal/app/client/config"
)

func newTransportForServer(t *testing.T, srv *httptest.Server) *httpTransport {
	t.Helper()

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
		EnableTLS:     false,
	}

	transport, err := NewHTTPTransport(cfg, testLogger())
	require.NoError(t, err)

	return transport
}

func TestTransportCall(t *testing.T) {
	var gotMethod, gotPath, gotDevice, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotDevice = r.Header.Get("X-Device-UUID")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"id":"s1"}}`))
	}))
	defer srv.Close()

	transport := newTransportForServer(t, srv)

	resp, err := transport.Call(context.Background(), http.MethodPost, "/sync/start",
		struct{}{}, map[string]string{"X-Device-UUID": "dev-1"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/sync/start", gotPath)
	assert.Equal(t, "dev-1", gotDevice)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{}`, string(gotBody))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":{"id":"s1"}}`, string(resp.Body))
}

func TestTransportNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GET без полезной нагрузки не несет тела запроса
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	transport := newTransportForServer(t, srv)

	resp, err := transport.Call(context.Background(), http.MethodGet, "/sync/s1/queues/main", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestTransportUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	transport := newTransportForServer(t, srv)

	_, err := transport.Call(context.Background(), http.MethodGet, "/", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, gotUA, config.ClientType)
}

func TestTransportServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	transport := newTransportForServer(t, srv)

	_, err := transport.Call(context.Background(), http.MethodGet, "/", nil, nil)
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		transport := newTransportForServer(t, srv)
		assert.NoError(t, transport.HealthCheck(context.Background()))
	})

	t.Run("unhealthy status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		transport := newTransportForServer(t, srv)
		assert.Error(t, transport.HealthCheck(context.Background()))
	})
}
