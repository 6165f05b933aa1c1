package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filerelay/internal/domain/admin"
	"filerelay/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionRequest(t *testing.T, jwtService *jwt.Service, userID int64, path string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != 0 {
		token, err := jwtService.GenerateToken(userID, "alice", "Alice")
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return req
}

func TestSessionAuth_ValidCookie(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour)

	router := gin.New()
	router.Use(SessionAuth(jwtService))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetInt64("user_id"),
			"username": c.GetString("username"),
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(t, jwtService, 42, "/me"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"username":"alice"}`, w.Body.String())
}

func TestSessionAuth_InvalidCookieIsAnonymous(t *testing.T) {
	router := gin.New()
	router.Use(SessionAuth(jwt.New("secret", time.Hour)))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "invalid-jwt-here"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())
}

func TestRequireSessionPage_RedirectsHome(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	router := gin.New()
	router.Use(SessionAuth(jwtService))
	router.GET("/admin", RequireSessionPage(), func(c *gin.Context) {
		t.Fatal("should not reach handler")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest(t, jwtService, 0, "/admin"))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireSessionJSON_Unauthorized(t *testing.T) {
	router := gin.New()
	router.Use(SessionAuth(jwt.New("secret", time.Hour)))
	router.POST("/delete_file/:id", RequireSessionJSON(), func(c *gin.Context) {
		t.Fatal("should not reach handler")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete_file/1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestAdminOnly(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	admins := admin.NewSet(7)

	router := gin.New()
	router.Use(SessionAuth(jwtService))
	router.GET("/api", RequireSessionJSON(), AdminOnly(admins), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/page", RequireSessionPage(), AdminOnlyPage(admins), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		userID int64
		path   string
		want   int
	}{
		{"admin api", 7, "/api", http.StatusNoContent},
		{"non-admin api", 8, "/api", http.StatusForbidden},
		{"admin page", 7, "/page", http.StatusNoContent},
		{"non-admin page", 8, "/page", http.StatusForbidden},
		{"anonymous page", 0, "/page", http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, sessionRequest(t, jwtService, tt.userID, tt.path))
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "Access denied")
			}
		})
	}
}

func TestWebhookSecret(t *testing.T) {
	router := gin.New()
	router.POST("/webhook", WebhookSecret("s3cret", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"match", "s3cret", http.StatusOK},
		{"mismatch", "nope", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			if tt.header != "" {
				req.Header.Set(WebhookSecretHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestWebhookSecret_Disabled(t *testing.T) {
	router := gin.New()
	router.POST("/webhook", WebhookSecret("", nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLogger_RequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Body.String(), "generated when absent")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}
