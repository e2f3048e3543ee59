package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/api/controllers"
	pkgAuth "github.com/modomarket/modomarket-backend/pkg/auth"
	"github.com/modomarket/modomarket-backend/pkg/config"
	"github.com/modomarket/modomarket-backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "modomarket", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(testConfig(), nil, nil, map[string]controllers.Pinger{}, nil, nil, nil, nil, nil)
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "live" {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	routesUnderTest := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/payments/confirm"},
		{http.MethodGet, "/api/v1/refunds"},
	}

	for _, rt := range routesUnderTest {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", rt.method, rt.path, rec.Code)
		}
	}
}

func TestAuthenticatedRouteReachesHandler(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	router := NewRouter(cfg, logger.New(logger.Options{Output: nopWriter{}}), nil, map[string]controllers.Pinger{}, nil, nil, nil, nil, nil)

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// No services are wired in this test, so the handler reports an
	// internal error rather than 401.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
