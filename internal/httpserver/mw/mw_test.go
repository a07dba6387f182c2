package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/userbrowser/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", nil, false, "10.0.0.1"},
		{"proxy headers ignored", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.2.3.4"}, false, "10.0.0.1"},
		{"cloudflare first", "10.0.0.1:5555", map[string]string{"CF-Connecting-IP": "5.6.7.8", "X-Forwarded-For": "1.2.3.4"}, true, "5.6.7.8"},
		{"left-most xff", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.2.3.4, 9.9.9.9"}, true, "1.2.3.4"},
		{"real ip", "10.0.0.1:5555", map[string]string{"X-Real-IP": "4.4.4.4"}, true, "4.4.4.4"},
		{"ipv6 remote", "[::1]:80", nil, false, "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrefixSet(t *testing.T) {
	set, invalid := NewPrefixSet([]string{"10.0.0.0/8", "192.168.1.4", " ", "not-an-ip"})
	if len(invalid) != 1 || invalid[0] != "not-an-ip" {
		t.Errorf("invalid = %v", invalid)
	}
	for ip, want := range map[string]bool{
		"10.20.30.40":     true,
		"192.168.1.4":     true,
		"192.168.1.5":     false,
		"::ffff:10.1.1.1": true,
		"garbage":         false,
		"2001:db8::1":     false,
	} {
		if got := set.Contains(ip); got != want {
			t.Errorf("Contains(%q) = %v, want %v", ip, got, want)
		}
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"127.0.0.1"}, false, logger.Nop())(ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Errorf("allowed IP got %d", w.Code)
	}

	r.RemoteAddr = "8.8.8.8:1234"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("rejected IP got %d, want 403", w.Code)
	}

	// empty list is passthrough
	w = httptest.NewRecorder()
	AllowOnlyCIDRS(nil, false, logger.Nop())(ok).ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Errorf("passthrough got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:        2,
		RefillPerMin: 60,
		Now:          func() time.Time { return now },
	})(ok)

	call := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := call("1.1.1.1:1"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d got %d", i, w.Code)
		}
	}
	w := call("1.1.1.1:1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", w.Header().Get("Retry-After"))
	}

	if w := call("2.2.2.2:1"); w.Code != http.StatusNoContent {
		t.Errorf("other client got %d", w.Code)
	}

	now = now.Add(time.Second)
	if w := call("1.1.1.1:1"); w.Code != http.StatusNoContent {
		t.Errorf("after refill got %d", w.Code)
	}
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(Log(logger.NewFromZap(zap.New(core))))
	r.Get("/api/sessions/{sid}/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/abc/users", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	first := entries[0].ContextMap()
	if first["status"] != int64(200) || first["bytes"] != int64(5) || first["session_id"] != "abc" {
		t.Errorf("unexpected fields %v", first)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("5xx logged at %v, want error", entries[1].Level)
	}
}
