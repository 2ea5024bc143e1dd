package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grubapp/grub/internal/config"
)

func TestRateLimitDisabledByDefault(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 0}
	handler := RateLimitMiddleware(cfg, okHandler())

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
		}
	}
}

func TestRateLimitRejectsAboveBurst(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 1, RateLimitBurst: 2}
	handler := RateLimitMiddleware(cfg, okHandler())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("expected first two requests allowed, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request limited, got %v", statuses)
	}
}

func TestRateLimitErrorShape(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 1, RateLimitBurst: 1}
	handler := RateLimitMiddleware(cfg, okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 1 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
			}
			var resp map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] != "Too many requests" {
				t.Errorf("unexpected error message %q", resp["error"])
			}
			if rec.Header().Get("Retry-After") != "1" {
				t.Error("expected Retry-After header")
			}
		}
	}
}

func TestRateLimitPerIP(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 1, RateLimitBurst: 1}
	handler := RateLimitMiddleware(cfg, okHandler())

	// Exhaust the first IP.
	req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// A different IP still gets through.
	req2 := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	req2.RemoteAddr = "10.0.0.4:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req2)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for second IP, got %d", http.StatusOK, rec.Code)
	}
}

func TestExtractIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	if ip := extractIP(req); ip != "203.0.113.5" {
		t.Errorf("expected first forwarded IP, got %q", ip)
	}

	req.Header.Del("X-Forwarded-For")
	if ip := extractIP(req); ip != "127.0.0.1" {
		t.Errorf("expected remote addr host, got %q", ip)
	}
}
