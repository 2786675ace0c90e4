package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var envelope handlers.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := gin.New()
	router.GET("/protected", RequireAuth(nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	envelope := decodeErrorResponse(t, rec)
	if envelope.Status != http.StatusUnauthorized {
		t.Fatalf("envelope status = %d, want %d", envelope.Status, http.StatusUnauthorized)
	}
	if envelope.Path != "/protected" {
		t.Fatalf("envelope path = %q, want %q", envelope.Path, "/protected")
	}
	if envelope.Timestamp.IsZero() {
		t.Fatal("expected a timestamp in the error envelope")
	}
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	router := gin.New()
	router.GET("/protected", RequireAuth(nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(RoleKey, "user")
	}, RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/admin-ok", func(c *gin.Context) {
		c.Set(RoleKey, "admin")
	}, RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-ok", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireSelfOrRole(t *testing.T) {
	newRouter := func(accountID, role string) *gin.Engine {
		router := gin.New()
		router.PUT("/accounts/:id", func(c *gin.Context) {
			c.Set(AccountIDKey, accountID)
			c.Set(RoleKey, role)
		}, RequireSelfOrRole("id", domain.RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	cases := []struct {
		name      string
		accountID string
		role      string
		target    string
		want      int
	}{
		{"own account", "account-1", "user", "/accounts/account-1", http.StatusOK},
		{"another account", "account-1", "user", "/accounts/account-2", http.StatusForbidden},
		{"admin on another account", "admin-1", "admin", "/accounts/account-2", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tc.accountID, tc.role).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, tc.target, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireSelfOrRoleWithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.PUT("/accounts/:id", RequireSelfOrRole("id", domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/accounts/account-1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

type fakeAttemptCounter struct {
	count int
	err   error
	keys  []string
}

func (f *fakeAttemptCounter) Hit(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	f.keys = append(f.keys, identifier)
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func newRateLimitedRouter(store AttemptCounter, rule RateLimitRule) *gin.Engine {
	router := gin.New()
	limiter := NewRateLimiter(store, nil)
	router.POST("/login", limiter.RateLimit(rule), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	store := &fakeAttemptCounter{}
	router := newRateLimitedRouter(store, RateLimitRule{Name: "login", Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want %q", rec.Header().Get("Retry-After"), "60")
	}

	if len(store.keys) == 0 {
		t.Fatal("expected the store to be consulted")
	}
	for _, key := range store.keys {
		if key[:6] != "login:" {
			t.Fatalf("store key = %q, want a login: prefix", key)
		}
	}
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	store := &fakeAttemptCounter{err: errors.New("redis down")}
	router := newRateLimitedRouter(store, RateLimitRule{Name: "login", Limit: 1, Window: time.Minute})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequestIDIsIssuedAndPropagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://shop.example"}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, "https://shop.example")
	}
}
