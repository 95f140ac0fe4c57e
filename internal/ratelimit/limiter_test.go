package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"induction-torque/internal/testutil"
)

func TestMiddlewareRejectsBurst(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest(http.MethodPost, "/torque/update", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		codes = append(codes, testutil.ExecuteRequest(r, h).Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		testutil.CheckResponseCode(t, want[i], codes[i])
	}
}

func TestLimiterIsPerClient(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)

	if !l.Allow("10.0.0.1") {
		t.Fatal("expected first request from 10.0.0.1 to pass")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("expected second request from 10.0.0.1 to be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("expected 10.0.0.2 to have its own bucket")
	}
}

func TestClientIPStripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.4:1234"
	if got := clientIP(r); got != "192.168.1.4" {
		t.Fatalf("expected %q, got %q", "192.168.1.4", got)
	}

	r.RemoteAddr = "unix"
	if got := clientIP(r); got != "unix" {
		t.Fatalf("expected %q, got %q", "unix", got)
	}
}
