package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── 测试替身 ──

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

// fakeAdmins 白名单替身：名单内且邮箱已验证才是管理员
type fakeAdmins map[string]bool

func (f fakeAdmins) IsAdmin(email string, emailVerified bool) bool { return emailVerified && f[email] }

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-0123",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func mustAccessToken(t *testing.T, mgr *jwt.Manager, userID, email string, verified bool) string {
	t.Helper()
	token, err := mgr.GenerateAccessToken(userID, email, verified)
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}
	return token
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authedEngine(mgr *jwt.Manager, rev RevocationChecker, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuth(mgr, rev)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserID)})
	})
	r.GET("/p", handlers...)
	return r
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// expectStatus 校验 HTTP 状态码与业务码（code 为 0 时不校验）
func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("期望 HTTP %d，实际 %d: %s", status, w.Code, w.Body.String())
		return
	}
	if code == 0 {
		return
	}
	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if body.Code != code {
		t.Errorf("期望业务码 %d，实际 %d", code, body.Code)
	}
}

// ── JWTAuth ──

func TestJWTAuth_Valid(t *testing.T) {
	mgr := newTestJWT()
	token := mustAccessToken(t, mgr, "u1", "a@example.com", false)

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":        c.GetString(CtxUserID),
			"email":          c.GetString(CtxEmail),
			"email_verified": c.GetBool(CtxEmailVerified),
		})
	})

	w := serve(r, bearer(token))
	expectStatus(t, w, http.StatusOK, 0)
	for _, want := range []string{`"user_id":"u1"`, `"email":"a@example.com"`, `"email_verified":false`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("上下文缺少 %s: %s", want, w.Body.String())
		}
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := newTestJWT()
	refresh, _ := mgr.GenerateRefreshToken("u1", "a@example.com")

	cases := map[string]*http.Request{
		"missing header": httptest.NewRequest(http.MethodGet, "/p", nil),
		"wrong scheme": func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/p", nil)
			r.Header.Set("Authorization", "Basic abc")
			return r
		}(),
		"garbage token": bearer("not-a-jwt"),
		"refresh token": bearer(refresh),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			expectStatus(t, serve(authedEngine(mgr, nil), req), http.StatusUnauthorized, 10002)
		})
	}
}

func TestJWTAuth_Revoked(t *testing.T) {
	mgr := newTestJWT()
	token := mustAccessToken(t, mgr, "u1", "a@example.com", false)
	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	rev := &fakeRevocations{revoked: map[string]bool{claims.ID: true}}
	expectStatus(t, serve(authedEngine(mgr, rev), bearer(token)), http.StatusUnauthorized, 10002)
}

func TestJWTAuth_RevocationErrorPassesThrough(t *testing.T) {
	mgr := newTestJWT()
	token := mustAccessToken(t, mgr, "u1", "a@example.com", false)

	rev := &fakeRevocations{err: errors.New("redis down")}
	expectStatus(t, serve(authedEngine(mgr, rev), bearer(token)), http.StatusOK, 0)
}

// ── AdminOnly ──

func TestAdminOnly(t *testing.T) {
	mgr := newTestJWT()
	admins := fakeAdmins{"admin@example.com": true}

	tests := []struct {
		name     string
		admins   AdminChecker
		email    string
		verified bool
		status   int
		code     int
	}{
		{"verified allow-listed", admins, "admin@example.com", true, http.StatusOK, 0},
		{"unverified allow-listed", admins, "admin@example.com", false, http.StatusForbidden, 10003},
		{"verified not listed", admins, "user@example.com", true, http.StatusForbidden, 10003},
		{"empty allow-list", fakeAdmins{}, "admin@example.com", true, http.StatusForbidden, 10003},
		{"nil checker", nil, "admin@example.com", true, http.StatusForbidden, 10003},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token := mustAccessToken(t, mgr, "u1", tc.email, tc.verified)
			w := serve(authedEngine(mgr, nil, AdminOnly(tc.admins)), bearer(token))
			expectStatus(t, w, tc.status, tc.code)
		})
	}
}

func TestAdminOnly_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/p", AdminOnly(fakeAdmins{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	expectStatus(t, serve(r, httptest.NewRequest(http.MethodGet, "/p", nil)), http.StatusUnauthorized, 10002)
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute), ok)
	expectStatus(t, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)), http.StatusOK, 0)

	denied := &fakeLimiter{allowed: false}
	r = gin.New()
	r.POST("/login", RateLimit(denied, 5, time.Minute), ok)
	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	expectStatus(t, w, http.StatusTooManyRequests, 10004)
	if len(denied.keys) != 1 || !strings.HasSuffix(denied.keys[0], ":/login") {
		t.Errorf("限流键应以路由结尾: %v", denied.keys)
	}

	broken := &fakeLimiter{err: errors.New("redis down")}
	r = gin.New()
	r.POST("/login", RateLimit(broken, 5, time.Minute), ok)
	expectStatus(t, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)), http.StatusOK, 0)
}

// ── 其他 ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/p", nil))
	id := w.Header().Get("X-Request-ID")
	if len(id) != 36 {
		t.Errorf("应生成 UUID 格式的请求 ID，实际=%q", id)
	}
	if id != w.Body.String() {
		t.Errorf("上下文中的请求 ID 应与响应头一致: %q vs %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "abc")
	if got := serve(r, req).Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("应沿用客户端请求 ID，实际=%q", got)
	}

	long := strings.Repeat("x", 65)
	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", long)
	if got := serve(r, req).Header().Get("X-Request-ID"); got == long {
		t.Error("过长的请求 ID 应被替换")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/p", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	expectStatus(t, w, http.StatusNoContent, 0)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("期望允许 http://localhost:3000，实际=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Origin", "http://evil.example")
	if got := serve(r, req).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("未允许的来源不应返回 CORS 头，实际=%q", got)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	expectStatus(t, serve(r, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("0123456789"))), http.StatusRequestEntityTooLarge, 0)
	expectStatus(t, serve(r, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("0123"))), http.StatusOK, 0)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/p", nil))
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("期望 X-Frame-Options=DENY，实际=%q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("期望 X-Content-Type-Options=nosniff，实际=%q", got)
	}
}
