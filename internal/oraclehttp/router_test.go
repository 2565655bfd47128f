package oraclehttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRouterHealthzIsUnauthenticated(t *testing.T) {
	r := NewRouter(RouterConfig{JWTSecretKey: "secret"})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = (%d, %q), want (200, \"ok\")", rec.Code, rec.Body.String())
	}
}

func TestNewRouterPredictRequiresBearerToken(t *testing.T) {
	r := NewRouter(RouterConfig{JWTSecretKey: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /v1/predict without a token = %d, want 401", rec.Code)
	}
}

func TestNewRouterPredictRejectsWrongSecret(t *testing.T) {
	r := NewRouter(RouterConfig{JWTSecretKey: "secret"})
	token := signToken("other-secret", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /v1/predict with a wrongly-signed token = %d, want 401", rec.Code)
	}
}
