package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsehq/clientpulse/internal/clients"
	"github.com/pulsehq/clientpulse/internal/dashboard"
	"github.com/pulsehq/clientpulse/internal/simulation"
)

// --- Test helpers ---

// newAPIServer runs the real HTTP API the MCP server fronts: simulation,
// directory, and dashboard routes backed by in-memory stores.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	simStore := simulation.NewMemoryStore()
	clientStore := clients.NewSeededStore()

	r := gin.New()
	v1 := r.Group("/v1")
	simulation.NewHandler(simulation.NewService(simStore, logger)).RegisterRoutes(v1)
	clients.NewHandler(clientStore).RegisterRoutes(v1)
	dashboard.NewHandler(clientStore, simStore).RegisterRoutes(v1)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	ts := newAPIServer(t)
	return NewHandlers(NewPulseClient(Config{APIURL: ts.URL}))
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

// ============================================================
// Client tests
// ============================================================

func TestClient_DoRequest_HTTPError_WithAPIMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "not_found",
			"message": "Client not found",
		})
	}))
	defer ts.Close()

	client := NewPulseClient(Config{APIURL: ts.URL})
	_, err := client.GetClient(context.Background(), "cl_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Client not found")
}

func TestClient_DoRequest_HTTPError_NonJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	}))
	defer ts.Close()

	client := NewPulseClient(Config{APIURL: ts.URL})
	_, err := client.GetBenchmarks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestClient_DoRequest_ConnectionRefused(t *testing.T) {
	client := NewPulseClient(Config{APIURL: "http://127.0.0.1:1"})
	_, err := client.GetBenchmarks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_ListClients_QueryParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"clients": [], "count": 0}`))
	}))
	defer ts.Close()

	client := NewPulseClient(Config{APIURL: ts.URL})
	_, err := client.ListClients(context.Background(), "enterprise", "low", 5)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "segment=enterprise")
	assert.Contains(t, gotQuery, "risk=low")
	assert.Contains(t, gotQuery, "limit=5")
}

// ============================================================
// run_simulation
// ============================================================

func TestHandleRunSimulation_Defaults(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleRunSimulation(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Churn risk: 5.0%")
	assert.Contains(t, text, "Retention rate: 98.0%")
	assert.Contains(t, text, "LOW")
}

func TestHandleRunSimulation_WithParams(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleRunSimulation(context.Background(), makeRequest(map[string]any{
		"response_time":      72.0,
		"support_score":      40.0,
		"escalation_rate":    50.0,
		"communication_freq": 0.5,
		"issue_resolution":   50.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Churn risk: 32.7%")
	assert.Contains(t, text, "MEDIUM")
	assert.Contains(t, text, "Response time: 72.0 h")
}

func TestHandleRunSimulation_PartialParams(t *testing.T) {
	h := newTestHandlers(t)

	// Unspecified parameters keep their defaults.
	result, err := h.HandleRunSimulation(context.Background(), makeRequest(map[string]any{
		"response_time": 60.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Response time: 60.0 h")
	assert.Contains(t, text, "Support score: 75")
}

func TestHandleRunSimulation_APIDown(t *testing.T) {
	h := NewHandlers(NewPulseClient(Config{APIURL: "http://127.0.0.1:1"}))

	result, err := h.HandleRunSimulation(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// ============================================================
// get_client_health
// ============================================================

func TestHandleGetClientHealth(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleGetClientHealth(context.Background(), makeRequest(map[string]any{
		"client_id": "cl_meridian",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Meridian Analytics")
	assert.Contains(t, text, "Risk level:")
	assert.Contains(t, text, "Churn risk:")
}

func TestHandleGetClientHealth_MissingID(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleGetClientHealth(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "client_id is required")
}

func TestHandleGetClientHealth_NotFound(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleGetClientHealth(context.Background(), makeRequest(map[string]any{
		"client_id": "cl_missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// ============================================================
// list_clients
// ============================================================

func TestHandleListClients(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleListClients(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "client(s)")
	assert.Contains(t, text, "cl_")
}

func TestHandleListClients_SegmentFilter(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleListClients(context.Background(), makeRequest(map[string]any{
		"segment": "enterprise",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "enterprise")
	assert.NotContains(t, text, "smb")
}

func TestHandleListClients_NoMatches(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleListClients(context.Background(), makeRequest(map[string]any{
		"risk": "critical",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No clients found")
}

// ============================================================
// get_benchmarks
// ============================================================

func TestHandleGetBenchmarks(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleGetBenchmarks(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Industry benchmarks")
	assert.Contains(t, text, "fintech")
	assert.Contains(t, text, "median churn")
}
