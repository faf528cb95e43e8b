package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func limitedHandler(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func limitedRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestGetIP_HeaderPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "192.168.1.1", "", "", "192.168.1.1"},
		// Only the first entry is the client; the rest is
		// proxy-appendable and spoofable.
		{"forwarded chain", "192.168.1.1, 10.0.0.1, 172.16.0.1", "", "", "192.168.1.1"},
		{"forwarded padded", "  192.168.1.1  ,  10.0.0.1  ", "", "", "192.168.1.1"},
		{"real ip", "", "192.168.1.1", "", "192.168.1.1"},
		{"real ip padded", "", "  192.168.1.1  ", "", "192.168.1.1"},
		{"remote addr fallback", "", "", "127.0.0.1:12345", "127.0.0.1:12345"},
		{"forwarded beats real ip", "192.168.1.1", "10.0.0.1", "127.0.0.1:12345", "192.168.1.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if tc.remoteAddr != "" {
				req.RemoteAddr = tc.remoteAddr
			}
			if got := getIP(req); got != tc.want {
				t.Errorf("getIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimiter_Limit_WithinBurst_Allowed(t *testing.T) {
	handler := limitedHandler(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		recorder := limitedRequest(handler, "192.168.1.1:12345")
		if recorder.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200 inside burst", i+1, recorder.Code)
		}
	}
}

func TestRateLimiter_Limit_BurstExhausted_JSON429(t *testing.T) {
	handler := limitedHandler(NewRateLimiter(0.1, 2))

	limitedRequest(handler, "192.168.1.1:12345")
	limitedRequest(handler, "192.168.1.1:12345")
	recorder := limitedRequest(handler, "192.168.1.1:12345")

	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after burst", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if body := recorder.Body.String(); body != `{"error":"too many requests"}` {
		t.Errorf("body = %s, want rate limit error object", body)
	}
}

func TestRateLimiter_Limit_SeparateVisitorsPerIP(t *testing.T) {
	handler := limitedHandler(NewRateLimiter(0.1, 1))

	if recorder := limitedRequest(handler, "192.168.1.1:12345"); recorder.Code != http.StatusOK {
		t.Errorf("first IP: status = %d, want 200", recorder.Code)
	}
	// A fresh IP gets its own bucket even with the first one drained.
	if recorder := limitedRequest(handler, "192.168.1.2:12345"); recorder.Code != http.StatusOK {
		t.Errorf("second IP: status = %d, want 200", recorder.Code)
	}
	if recorder := limitedRequest(handler, "192.168.1.1:12345"); recorder.Code != http.StatusTooManyRequests {
		t.Errorf("first IP again: status = %d, want 429", recorder.Code)
	}
}

func TestLimitAuth_PassesFirstRequest(t *testing.T) {
	handler := LimitAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recorder := limitedRequest(handler, "192.168.1.1:12345")
	if recorder.Code != http.StatusOK {
		t.Errorf("LimitAuth: status = %d, want 200", recorder.Code)
	}
}

func TestLimitAPI_PassesFirstRequest(t *testing.T) {
	handler := LimitAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recorder := limitedRequest(handler, "192.168.1.1:12345")
	if recorder.Code != http.StatusOK {
		t.Errorf("LimitAPI: status = %d, want 200", recorder.Code)
	}
}
