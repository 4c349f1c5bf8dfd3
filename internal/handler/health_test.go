package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	cases := []struct {
		name     string
		db       pinger
		wantCode int
		want     string
	}{
		{"ok", stubPinger{}, http.StatusOK, "ok"},
		{"degraded", stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable, "degraded"},
		{"not configured", nil, http.StatusOK, "not_configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Health(tc.db).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"`+tc.want+`"}` {
				t.Errorf("unexpected body %s", got)
			}
		})
	}
}
