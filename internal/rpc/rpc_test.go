package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/System-rat/mcsmp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockServer(t *testing.T) (*httptest.Server, *[]string) {
	var commands []string
	mux := http.NewServeMux()
	mux.HandleFunc("/mcsmp/api/v1/servers", func(w http.ResponseWriter, r *http.Request) {
		servers := []models.ServerDetail{{Name: "alpha", Version: "1.20"}, {Name: "beta", Version: "1.19"}}
		if f := r.URL.Query().Get("name"); f != "" {
			servers = servers[:1]
		}
		_ = json.NewEncoder(w).Encode(servers)
	})
	mux.HandleFunc("/mcsmp/api/v1/servers/alpha/command", func(w http.ResponseWriter, r *http.Request) {
		var req models.CommandRequest
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		commands = append(commands, req.Command)
		_, _ = w.Write([]byte(`{"status":"sent"}`))
	})
	mux.HandleFunc("/mcsmp/api/v1/servers/alpha/log", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(models.LogResponse{Name: "alpha", Lines: []string{"a", "b"}, Log: "a\nb"})
	})
	mux.HandleFunc("/mcsmp/api/v1/servers/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Code: models.CodeNotFound, Error: "server missing: not found"})
	})
	mux.HandleFunc("/mcsmp/api/v1/servers/beta/command", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Code: models.CodeServerStopped, Error: "server beta: server is not running"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.HealthResponse{Status: "UP", Metrics: models.Metrics{TotalServers: 2}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &commands
}

func TestBuildURL(t *testing.T) {
	u, err := buildURL("http://localhost:1337/", "/healthz", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1337/healthz", u)

	u, err = buildURL("http://localhost:1337/base", "servers", map[string]interface{}{"limit": 5, "name": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1337/base/servers?limit=5&name=a+b", u)

	_, err = buildURL("://bad", "x", nil)
	assert.Error(t, err)
}

func TestDefaultHTTPConfig(t *testing.T) {
	cfg := DefaultHTTPConfig("")
	assert.Equal(t, "http://localhost:1337", cfg.baseURL())
	cfg = DefaultHTTPConfig("https://mc.example.com")
	assert.Equal(t, "https://mc.example.com", cfg.baseURL())
}

func TestClientRoutes(t *testing.T) {
	server, commands := newMockServer(t)
	client := NewClient(DefaultHTTPConfig(server.URL))
	defer client.Close()
	ctx := context.Background()

	servers, err := client.Servers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, servers, 2)
	servers, err = client.Servers(ctx, "al")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "alpha", servers[0].Name)

	require.NoError(t, client.Command(ctx, "alpha", "say hi"))
	assert.Equal(t, []string{"say hi"}, *commands)

	log, err := client.Log(ctx, "alpha", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, log.Lines)

	health, err := client.Healthz(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, health.Metrics.TotalServers)
}

func TestClientErrors(t *testing.T) {
	server, _ := newMockServer(t)
	client := NewClient(DefaultHTTPConfig(server.URL))
	ctx := context.Background()

	_, err := client.Server(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "server missing: not found (notexist)", apiErr.Error())

	err = client.Command(ctx, "beta", "list")
	assert.ErrorIs(t, err, models.ErrServerStopped)

	// 未注册的路由返回纯文本404
	_, err = client.Start(ctx, "gamma")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.NoError(t, apiErr.Unwrap())
}
