package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/auth"
	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/reqctx"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tokenResolver validates real session tokens and knows a single user.
type tokenResolver struct {
	tokens *auth.TokenService
	users  map[int64]*domain.User
	err    error
}

func (r *tokenResolver) Resolve(_ context.Context, raw string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := r.tokens.Validate(raw)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	u, ok := r.users[claims.UserID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newResolver() *tokenResolver {
	return &tokenResolver{
		tokens: auth.NewTokenService([]byte(testKey)),
		users:  map[int64]*domain.User{7: {ID: 7, Name: "Ann"}},
	}
}

// newEngine protects GET /protected. The handler echoes the user id from
// both the gin context and the request context.
func newEngine(res middleware.SessionResolver) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(res, testLogger()), func(c *gin.Context) {
		uid, _ := reqctx.UserID(c.Request.Context())
		c.String(http.StatusOK, "%d:%d:%s", middleware.CurrentUser(c).ID, uid, middleware.SessionToken(c))
	})
	return r
}

func get(r http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withCookie(v string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: v}) }
}

func TestAuth_MissingCookie_Returns401(t *testing.T) {
	if w := get(newEngine(newResolver()), nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidToken_Returns401(t *testing.T) {
	if w := get(newEngine(newResolver()), withCookie("not.a.jwt")); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ExpiredToken_Returns401(t *testing.T) {
	res := newResolver()
	past := auth.NewTokenService([]byte(testKey), auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	tok, err := past.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if w := get(newEngine(res), withCookie(tok)); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_WrongSigningKey_Returns401(t *testing.T) {
	tok, err := auth.NewTokenService([]byte("a-completely-different-secret-key")).Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := get(newEngine(newResolver()), withCookie(tok)); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_DeletedUser_Returns404(t *testing.T) {
	res := newResolver()
	tok, _ := res.tokens.Issue(99)

	w := get(newEngine(res), withCookie(tok))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAuth_ResolverFailure_Returns500(t *testing.T) {
	res := newResolver()
	res.err = errors.New("db down")

	if w := get(newEngine(res), withCookie("x")); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuth_ValidCookie_SetsUser(t *testing.T) {
	res := newResolver()
	tok, _ := res.tokens.Issue(7)

	w := get(newEngine(res), withCookie(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if want := "7:7:" + tok; w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestAuth_BearerHeaderFallback(t *testing.T) {
	res := newResolver()
	tok, _ := res.tokens.Issue(7)

	w := get(newEngine(res), func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
