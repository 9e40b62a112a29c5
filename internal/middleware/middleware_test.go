package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cerven-ot/internal/domain"
	"cerven-ot/internal/middleware"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     "u-1",
		"company_id":  "c-1",
		"employee_id": "e-1",
		"role":        "ADMIN",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := setupRouter()
	r.GET("/p", middleware.AuthMiddlewareWithSecret(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("user_id"),
			"employee_id": c.GetString("employee_id"),
			"company_id":  c.GetString("company_id"),
		})
	})

	t.Run("valid bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims()))
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"employee_id":"e-1"`)
	})

	t.Run("cookie token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, validClaims())})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token not found")
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), apperror.ErrTokenExpired.Message)
	})

	t.Run("missing employee claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "employee_id")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Employee ID not found")
	})
}

type fakeLoader struct {
	LoadFn func(ctx context.Context, companyID, employeeID, userID string) (contextutil.Principal, error)
}

func (f *fakeLoader) LoadPrincipal(ctx context.Context, companyID, employeeID, userID string) (contextutil.Principal, error) {
	return f.LoadFn(ctx, companyID, employeeID, userID)
}

func withIdentity(c *gin.Context) {
	c.Set("user_id", "u-1")
	c.Set("company_id", "c-1")
	c.Set("employee_id", "e-1")
	c.Next()
}

func TestLoadPrincipal(t *testing.T) {
	t.Run("stores principal", func(t *testing.T) {
		loader := &fakeLoader{LoadFn: func(ctx context.Context, cid, eid, uid string) (contextutil.Principal, error) {
			assert.Equal(t, "c-1", cid)
			assert.Equal(t, "e-1", eid)
			assert.Equal(t, "u-1", uid)
			return contextutil.Principal{EmployeeID: eid, CompanyID: cid, Role: "HR", Position: "HR Officer"}, nil
		}}

		r := setupRouter()
		r.GET("/p", withIdentity, middleware.LoadPrincipal(loader), func(c *gin.Context) {
			p, ok := contextutil.GetPrincipal(c.Request.Context())
			assert.True(t, ok)
			assert.Equal(t, "HR", p.Role)
			assert.Equal(t, "HR", c.GetString("role"))
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("unknown employee is unauthorized", func(t *testing.T) {
		loader := &fakeLoader{LoadFn: func(ctx context.Context, cid, eid, uid string) (contextutil.Principal, error) {
			return contextutil.Principal{}, apperror.ErrNotFound
		}}

		r := setupRouter()
		r.GET("/p", withIdentity, middleware.LoadPrincipal(loader), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive employee is forbidden", func(t *testing.T) {
		loader := &fakeLoader{LoadFn: func(ctx context.Context, cid, eid, uid string) (contextutil.Principal, error) {
			return contextutil.Principal{}, apperror.ErrForbidden
		}}

		r := setupRouter()
		r.GET("/p", withIdentity, middleware.LoadPrincipal(loader), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/p", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

type fakeRBAC struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestRBACAuthorize(t *testing.T) {
	cases := []struct {
		name   string
		rbac   *fakeRBAC
		status int
	}{
		{"allowed", &fakeRBAC{allowed: true}, http.StatusOK},
		{"denied", &fakeRBAC{allowed: false}, http.StatusForbidden},
		{"enforcer error", &fakeRBAC{err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter()
			r.GET("/p", withIdentity, middleware.RBACAuthorize(tc.rbac, "ticket", "read"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/p", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "ticket", tc.rbac.got.Resource)
			assert.Equal(t, "e-1", tc.rbac.got.EmployeeID)
		})
	}
}

func TestIdempotency(t *testing.T) {
	const cacheKey = "idemp:/things:u-1:key-1"

	newRouter := func(rdb *redis.Client, calls *int) *gin.Engine {
		r := setupRouter()
		r.POST("/things", func(c *gin.Context) {
			c.Set("user_id_validated", "u-1")
			c.Next()
		}, middleware.Idempotency(rdb, nil), func(c *gin.Context) {
			*calls++
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})
		return r
	}

	t.Run("first request caches response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, `{"status":201,"body":{"ok":true}}`, 24*time.Hour).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		calls := 0
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/things", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		newRouter(rdb, &calls).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays cached response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":{"ok":true}}`)

		calls := 0
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/things", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		newRouter(rdb, &calls).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, 0, calls)
	})

	t.Run("in flight duplicate conflicts", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		calls := 0
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/things", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		newRouter(rdb, &calls).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()

		calls := 0
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/things", nil)
		newRouter(rdb, &calls).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})
}

func TestRateLimitByUser(t *testing.T) {
	r := setupRouter()
	r.GET("/p", withIdentity, middleware.RateLimitByUser(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w1 := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/p", nil)
	r.ServeHTTP(w1, req)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestRequestID(t *testing.T) {
	r := setupRouter()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"reuses valid id", "req-42.a:b", true},
		{"mints when missing", "", false},
		{"replaces unsafe id", "bad id\nwith newline", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.incoming != "" {
				req.Header.Set(middleware.RequestIDHeader, tt.incoming)
			}
			r.ServeHTTP(w, req)

			got := w.Header().Get(middleware.RequestIDHeader)
			assert.Equal(t, got, w.Body.String())
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	r := setupRouter()
	r.Use(middleware.RateLimitByIP(1, 2))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.7:5000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
