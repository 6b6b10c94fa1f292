package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/ratelimit"
)

func TestRedisThrottle(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	mgr, err := ratelimit.NewManager("redis://"+s.Addr(), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	h := RedisThrottle(mgr)(okHandler())

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/initiateUser", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding rpm, got %d", last)
	}

	// Other clients keep their own allowance
	req := httptest.NewRequest(http.MethodPost, "/initiateUser", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for fresh client, got %d", rec.Code)
	}
}

func TestRedisThrottle_NilManagerNoOps(t *testing.T) {
	h := RedisThrottle(nil)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/initiateUser", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through with nil manager, got %d", rec.Code)
	}
}

func TestRedisThrottle_FailsOpenWhenRedisDown(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := ratelimit.NewManager("redis://"+s.Addr(), 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	h := RedisThrottle(mgr)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/initiateUser", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected fail-open when redis is unreachable, got %d", rec.Code)
	}
}
