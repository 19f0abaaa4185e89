package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		status  int
		wantMsg string
	}{
		{name: "rate limited", method: "POST", status: http.StatusTooManyRequests, wantMsg: "rate_limit_violation"},
		{name: "oversized", method: "POST", status: http.StatusRequestEntityTooLarge, wantMsg: "oversized_request"},
		{name: "mutation", method: "POST", status: http.StatusOK, wantMsg: "poll_mutation"},
		{name: "read", method: "GET", status: http.StatusOK, wantMsg: ""},
		{name: "rejected vote", method: "POST", status: http.StatusBadRequest, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			Audit(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, "/vote", nil))

			entries := logs.All()
			if tt.wantMsg == "" {
				if len(entries) != 0 {
					t.Errorf("Expected no audit log, got %q", entries[0].Message)
				}
				return
			}
			if len(entries) != 1 || entries[0].Message != tt.wantMsg {
				t.Fatalf("Expected one %q entry, got %v", tt.wantMsg, entries)
			}
		})
	}
}
