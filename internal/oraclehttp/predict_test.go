package oraclehttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newPredictEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPredictHandler(nil)
	r.POST("/v1/predict", h.Predict)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPredictRejectsMalformedJSON(t *testing.T) {
	rec := postJSON(t, newPredictEngine(), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if env.Error.Code != "invalid_request" {
		t.Errorf("error code = %q, want invalid_request", env.Error.Code)
	}
}

func TestPredictRejectsEmptyPairs(t *testing.T) {
	rec := postJSON(t, newPredictEngine(), `{"pairs": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a request with zero pairs", rec.Code)
	}
}

func TestPredictRejectsMissingRHS(t *testing.T) {
	rec := postJSON(t, newPredictEngine(), `{"pairs": [{"lhs": "11111111111111111111111111111111"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when rhs is missing", rec.Code)
	}
}

func TestPredictRejectsUnparsableLayoutID(t *testing.T) {
	rec := postJSON(t, newPredictEngine(), `{"pairs": [{"lhs": "not-a-valid-id", "rhs": "11111111111111111111111111111111"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an unparsable layout id", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if env.Error.Code != "invalid_layout_id" {
		t.Errorf("error code = %q, want invalid_layout_id", env.Error.Code)
	}
}
