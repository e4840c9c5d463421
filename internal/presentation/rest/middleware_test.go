package rest

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/pkg/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(5)

	for i := 0; i < 5; i++ {
		require.True(t, rl.Allow(), "request %d should have been allowed", i+1)
	}
	assert.False(t, rl.Allow(), "6th request should have been denied")
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(10)
	for i := 0; i < 10; i++ {
		rl.Allow()
	}
	require.False(t, rl.Allow())

	rl.mu.Lock()
	rl.lastRefill = time.Now().Add(-1 * time.Second)
	rl.mu.Unlock()

	assert.True(t, rl.Allow(), "should be allowed after refill period")
}

func TestRateLimiter_FractionalRate(t *testing.T) {
	rl := NewRateLimiter(0.5)
	assert.True(t, rl.Allow(), "burst is at least one request")
	assert.False(t, rl.Allow())
}

func TestRateLimitMiddleware_Rejects(t *testing.T) {
	handler := RateLimitMiddleware(NewRateLimiter(1))(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/health"`)
	assert.Contains(t, out, `"status":418`)
	generated := rec.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, out, generated)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
}

func TestAuthMiddleware(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret", Issuer: "strokeguard"})
	require.NoError(t, err)

	clinician, err := svc.GenerateToken("dr-who", []string{auth.RoleClinician})
	require.NoError(t, err)
	viewer, err := svc.GenerateToken("viewer", []string{"viewer"})
	require.NoError(t, err)

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			gotSubject = claims.Subject
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(svc, auth.PredictRoles...)(next)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"clinician", "Bearer " + clinician, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{}"))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
	assert.Equal(t, "dr-who", gotSubject)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mw("outer"), mw("inner")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}
