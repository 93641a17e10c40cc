package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDKeepsWellFormedHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	reqID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", reqID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != reqID {
		t.Fatalf("expected caller request id %q, got %q", reqID, got)
	}
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "nao-e-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-Id")
	if got == "nao-e-uuid" {
		t.Fatal("malformed request id must not be echoed")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("replacement id %q is not a uuid: %v", got, err)
	}
}
