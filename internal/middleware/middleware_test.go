package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetOwnerIDFromContext(r.Context())
			assert.False(t, ok, "Context should not contain owner ID")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/cart", nil)
		w := httptest.NewRecorder()

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{
			"user_id": float64(1),
			"email":   "buyer@example.com",
			"name":    "Kim",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, ok := utils.GetOwnerIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, uint(1), ownerID)
			assert.Equal(t, "buyer@example.com", utils.GetOwnerEmailFromContext(r.Context()))
			assert.Equal(t, "Kim", utils.GetOwnerNameFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(1)})
		tokenString, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{
			"user_id": float64(1),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Missing user_id claim", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{"email": "buyer@example.com"})

		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cart", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetOwnerIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireOwner(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireOwner(ok).ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req = req.WithContext(utils.SetOwnerContext(req.Context(), 3, "", ""))
		w := httptest.NewRecorder()

		RequireOwner(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter_ResolveTier(t *testing.T) {
	l := NewRateLimiter("svc-secret")

	tests := []struct {
		name   string
		path   string
		header map[string]string
		tier   string
	}{
		{"Internal service", "/orders", map[string]string{"X-Service-Auth": "svc-secret"}, "internal"},
		{"Webhook", "/webhooks/portone", nil, "strict"},
		{"Pay start", "/orders/abc/pay", nil, "strict"},
		{"Pay check", "/orders/abc/pay/def/check", nil, "strict"},
		{"Frontend", "/cart", map[string]string{"X-Client-Type": "frontend-heavy"}, "frontend"},
		{"General", "/cart", nil, "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			_, _, tier := l.resolveRateTier(req)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter("")
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var limited int
	for i := 0; i < burstStrict+1; i++ {
		req := httptest.NewRequest("POST", "/webhooks/portone", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 1, limited)

	// General bucket for the same IP is untouched.
	req := httptest.NewRequest("GET", "/cart", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_MarksInternalRequests(t *testing.T) {
	l := NewRateLimiter("svc-secret")

	var internal bool
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internal = utils.IsInternalRequest(r.Context())
	}))

	req := httptest.NewRequest("GET", "/orders", nil)
	req.Header.Set("X-Service-Auth", "svc-secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, internal)

	req = httptest.NewRequest("GET", "/orders", nil)
	req.Header.Set("X-Service-Auth", "guess")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, internal)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	l := NewRateLimiter("")
	l.getVisitor("ip:1:general", limitGeneral, burstGeneral)
	l.visitors["ip:1:general"].lastSeen = time.Now().Add(-10 * time.Minute)
	l.getVisitor("ip:2:general", limitGeneral, burstGeneral)

	l.evict(3 * time.Minute)

	assert.Len(t, l.visitors, 1)
	_, ok := l.visitors["ip:2:general"]
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Cleanup(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop on context cancel")
	}
}
