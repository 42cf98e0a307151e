package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buddyboard/buddyboard/internal/config"
	"github.com/buddyboard/buddyboard/internal/server"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               8000,
		Environment:        "test",
		APIPrefix:          "/api/v1",
		APIKeyHeader:       "X-API-Key",
		APIKeys:            []string{"k1"},
		EnableAuth:         true,
		RateLimitPerMinute: 100,
		CORSOrigins:        []string{"http://localhost:3000"},
	}
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	srv, err := server.New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return srv.Handler()
}

func TestHealthIsPublic(t *testing.T) {
	h := newServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d, body %s", rr.Code, rr.Body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestAPIRequiresKey(t *testing.T) {
	h := newServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestCreateAndFetchJobEndToEnd(t *testing.T) {
	h := newServer(t)

	body := `{"title":"Trip to Chiang Mai","description":"Looking for a travel buddy","categoryId":"travel"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req.Header.Set("X-API-Key", "k1")
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+created.ID, nil)
	req.Header.Set("X-API-Key", "k1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("get status = %d", rr.Code)
	}
}

func TestContactInTitleRejected(t *testing.T) {
	h := newServer(t)

	body := `{"title":"add my line","description":"fun trip","categoryId":"travel"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req.Header.Set("X-API-Key", "k1")
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "social media handles") {
		t.Errorf("body missing rejection message: %s", rr.Body)
	}
}

func TestModerationNotMountedWithoutIndex(t *testing.T) {
	h := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/moderation", nil)
	req.Header.Set("X-API-Key", "k1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func serve(h http.Handler, method, path, key, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthWithoutKeysRejectsEverything(t *testing.T) {
	cfg := testConfig()
	cfg.APIKeys = nil
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	if rr := serve(h, http.MethodGet, "/api/v1/jobs", "", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rr.Code)
	}
	if rr := serve(h, http.MethodGet, "/api/v1/jobs", "k1", ""); rr.Code != http.StatusForbidden {
		t.Errorf("any key: status = %d, want 403", rr.Code)
	}
	if rr := serve(h, http.MethodGet, "/health", "", ""); rr.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rr.Code)
	}
}

func TestRateLimitPerAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKeys = []string{"k1", "k2"}
	cfg.RateLimitPerMinute = 2
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	for i := 0; i < 2; i++ {
		if rr := serve(h, http.MethodGet, "/api/v1/jobs", "k1", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rr.Code)
		}
	}
	// unknown keys are refused by Auth without touching any window
	for i := 0; i < 5; i++ {
		if rr := serve(h, http.MethodGet, "/api/v1/jobs", "bogus", ""); rr.Code != http.StatusForbidden {
			t.Fatalf("bogus key: status = %d, want 403", rr.Code)
		}
	}
	if rr := serve(h, http.MethodGet, "/api/v1/jobs", "k1", "someone-else"); rr.Code != http.StatusTooManyRequests {
		t.Errorf("k1 over limit: status = %d, want 429", rr.Code)
	}
	if rr := serve(h, http.MethodGet, "/api/v1/jobs", "k2", ""); rr.Code != http.StatusOK {
		t.Errorf("k2: status = %d, want 200", rr.Code)
	}
}

func TestHealthReportsBrokenIndexClient(t *testing.T) {
	cfg := testConfig()
	cfg.ElasticsearchEnabled = true
	cfg.ElasticsearchScheme = "http"
	cfg.ElasticsearchHost = "bad host"
	cfg.ElasticsearchPort = 9200
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	rr := serve(srv.Handler(), http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (body %s)", rr.Code, rr.Body)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(body.Checks["elasticsearch"], "unavailable: client init") {
		t.Errorf("elasticsearch check = %q", body.Checks["elasticsearch"])
	}
}

func TestApplicationDecisionNeedsAdminKey(t *testing.T) {
	cfg := testConfig()
	cfg.AdminAPIKeys = []string{"admin"}
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	body := `{"title":"Concert buddy","description":"Two tickets for Saturday","categoryId":"events"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req.Header.Set("X-API-Key", "k1")
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var job struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}

	rr = serve(h, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", "k1", "u2")
	if rr.Code != http.StatusCreated {
		t.Fatalf("apply status = %d, body %s", rr.Code, rr.Body)
	}
	var app struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&app); err != nil {
		t.Fatal(err)
	}

	path := "/api/v1/admin/applications/" + app.ID + "/approve"
	if rr := serve(h, http.MethodPut, path, "k1", ""); rr.Code != http.StatusForbidden {
		t.Errorf("user key: status = %d, want 403", rr.Code)
	}
	if rr := serve(h, http.MethodPut, path, "admin", ""); rr.Code != http.StatusOK {
		t.Errorf("admin key: status = %d, want 200", rr.Code)
	}

	rr = serve(h, http.MethodGet, "/api/v1/users/my-applications", "k1", "u2")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ACCEPTED"`) {
		t.Errorf("my-applications: %d %s", rr.Code, rr.Body)
	}
}
