package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewboard/pkg/utils"

	"go.uber.org/zap/zaptest"
)

func TestOwnershipToken_CopiesHeaderIntoContext(t *testing.T) {
	var got string
	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, present = utils.GetOwnershipTokenFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/reviews/1", nil)
	req.Header.Set(OwnershipTokenHeader, "  secret-token ")
	OwnershipToken(zaptest.NewLogger(t))(next).ServeHTTP(httptest.NewRecorder(), req)

	if !present || got != "secret-token" {
		t.Errorf("context token = %q, %v; want trimmed header value", got, present)
	}
}

func TestOwnershipToken_AbsentHeader(t *testing.T) {
	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = utils.GetOwnershipTokenFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/reviews/1", nil)
	OwnershipToken(zaptest.NewLogger(t))(next).ServeHTTP(httptest.NewRecorder(), req)

	if present {
		t.Error("token present without header")
	}
}

func TestOwnershipToken_RejectsQueryString(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/reviews/1?ownership_token=abc", nil)
	OwnershipToken(zaptest.NewLogger(t))(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if called {
		t.Error("handler ran with token in query string")
	}
}

func TestRecover_ReturnsJSON500(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	Recover(zaptest.NewLogger(t))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("short and stout"))

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d", rw.statusCode)
	}
	if rw.bytesWritten != len("short and stout") {
		t.Errorf("bytesWritten = %d", rw.bytesWritten)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); got != "unmatched" {
		t.Errorf("routePattern() = %q, want unmatched", got)
	}
}
