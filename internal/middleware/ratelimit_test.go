package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_GeneralBucketSeparateFromAuth(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedAuth(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	// burst equals the per-minute budget, so the second call is over it
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestRateLimitMiddleware_LoginFormSharesAuthBucket(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestRateLimitMiddleware_ClientsAreIndependent(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	for _, addr := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", addr+", 172.16.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
}

func TestRateLimitMiddleware_StorageObjectsSkipped(t *testing.T) {
	handler := NewRateLimitMiddleware(1, 1).Handler(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/o/recipes%2Fa.jpg", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_Configuration(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, 100, mw.generalRPM)
	assert.Equal(t, 10, mw.authRPM)
}

func TestClientAddress(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "forwarded", header: map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"}, remote: "9.9.9.9:1", want: "1.2.3.4"},
		{name: "real ip", header: map[string]string{"X-Real-IP": "4.3.2.1"}, remote: "9.9.9.9:1", want: "4.3.2.1"},
		{name: "remote host", remote: "9.9.9.9:1234", want: "9.9.9.9"},
		{name: "bare remote", remote: "socket", want: "socket"},
		{name: "empty", remote: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientAddress(req))
		})
	}
}
