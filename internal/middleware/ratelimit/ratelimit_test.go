package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perMinute int, methods ...string) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour, Methods: methods})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own window")
	}
	if got := rl.GetMetrics().TotalHits; got != 1 {
		t.Errorf("TotalHits = %d, want 1", got)
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("new window should allow requests again")
	}
}

func TestLimiter_WindowDoesNotSlide(t *testing.T) {
	rl, now := newTestLimiter(2)
	defer rl.Stop()

	rl.Allow("ip")
	*now = now.Add(50 * time.Second)
	rl.Allow("ip")
	*now = now.Add(5 * time.Second)
	if rl.Allow("ip") {
		t.Error("third request inside the first minute should be rejected")
	}
	if d := rl.RetryAfter("ip"); d != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", d)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(5)
	defer rl.Stop()

	rl.Allow("a")
	*now = now.Add(11 * time.Minute)
	rl.Allow("b")

	if n := rl.cleanupStaleEntries(); n != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", n)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_MiddlewareOnlyCountsConfiguredMethods(t *testing.T) {
	rl, _ := newTestLimiter(1, http.MethodPost)
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("GET %d status = %d", i, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}
