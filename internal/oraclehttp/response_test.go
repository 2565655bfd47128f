package oraclehttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestRespondErrorWithCause(t *testing.T) {
	c, rec := newTestContext()
	RespondError(c, http.StatusBadRequest, "bad_input", errors.New("missing field"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if env.Error.Code != "bad_input" || env.Error.Message != "missing field" {
		t.Errorf("error envelope = %+v, want code=bad_input message=\"missing field\"", env.Error)
	}
}

func TestRespondErrorWithNilCause(t *testing.T) {
	c, rec := newTestContext()
	RespondError(c, http.StatusInternalServerError, "oops", nil)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if env.Error.Message != "unknown error" {
		t.Errorf("Message = %q, want %q for a nil cause", env.Error.Message, "unknown error")
	}
}

func TestRespondOK(t *testing.T) {
	c, rec := newTestContext()
	RespondOK(c, map[string]string{"status": "fine"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if payload["status"] != "fine" {
		t.Errorf("payload = %v, want status=fine", payload)
	}
}
