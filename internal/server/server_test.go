package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/clientpulse/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:         "0",
		Env:          "development",
		LogLevel:     "error",
		LogFormat:    "text",
		CORSOrigins:  []string{"*"},
		RateLimitRPM: 10000,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}

	checks, ok := resp["checks"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected checks map, got %T", resp["checks"])
	}
	if checks["simulation_store"] != "healthy" {
		t.Errorf("simulation_store check = %v", checks["simulation_store"])
	}
	if checks["client_directory"] != "healthy" {
		t.Errorf("client_directory check = %v", checks["client_directory"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/live", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint_NotReadyBeforeRun(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	s.router.ServeHTTP(w, req)

	// Run() hasn't been called, so the server is not yet ready.
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before Run, got %d", w.Code)
	}

	s.ready.Store(true)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 after ready, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "clientpulse_") {
		t.Error("Expected clientpulse metrics in output")
	}
}

// ---------------------------------------------------------------------------
// Routing tests
// ---------------------------------------------------------------------------

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ClientPulse") {
		t.Errorf("Expected product name in response: %s", w.Body.String())
	}
}

func TestSimulationLifecycleThroughRouter(t *testing.T) {
	s := newTestServer(t)

	// Create
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("POST", "/v1/simulations", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Session struct {
			ID     string `json:"id"`
			Result struct {
				ChurnRisk float64 `json:"churnRisk"`
				RiskLevel string  `json:"riskLevel"`
			} `json:"result"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse create response: %v", err)
	}
	if created.Session.ID == "" {
		t.Fatal("create: missing session ID")
	}

	// Patch params
	body := bytes.NewReader([]byte(`{"responseTime": 72, "supportScore": 40, "escalationRate": 50, "communicationFreq": 0.5, "issueResolution": 50}`))
	req := httptest.NewRequest("PATCH", "/v1/simulations/"+created.Session.ID+"/params", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated struct {
		Session struct {
			Result struct {
				ChurnRisk float64 `json:"churnRisk"`
			} `json:"result"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to parse patch response: %v", err)
	}
	if updated.Session.Result.ChurnRisk <= created.Session.Result.ChurnRisk {
		t.Errorf("worse params should raise churn: %v -> %v",
			created.Session.Result.ChurnRisk, updated.Session.Result.ChurnRisk)
	}

	// Delete
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/v1/simulations/"+created.Session.ID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", w.Code)
	}
}

func TestClientDirectoryThroughRouter(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/v1/clients", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count == 0 {
		t.Error("Expected seeded clients")
	}
}

func TestDashboardOverviewThroughRouter(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/v1/dashboard/overview", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "portfolio") {
		t.Errorf("Expected portfolio aggregates: %s", w.Body.String())
	}
}

func TestIDParamValidation(t *testing.T) {
	s := newTestServer(t)

	// Malformed IDs are rejected before reaching handlers.
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/v1/simulations/not%20an%20id!", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed ID, got %d", w.Code)
	}
}

func TestRealtimeStatsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/v1/realtime/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "connectedClients") {
		t.Errorf("Expected hub stats: %s", w.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}

	// Incoming IDs pass through.
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-from-lb")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-from-lb" {
		t.Errorf("Expected propagated request ID, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
