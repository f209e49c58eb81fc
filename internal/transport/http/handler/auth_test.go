package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/handler"
	"github.com/ErlanBelekov/writing-assistant/internal/usecase"
	"github.com/gin-gonic/gin"
)

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register      func(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	login         func(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	externalLogin func(ctx context.Context, idToken string) (*usecase.AuthResult, error)
	logout        func(ctx context.Context, rawToken string) error
}

func (f *fakeAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) ExternalLogin(ctx context.Context, idToken string) (*usecase.AuthResult, error) {
	return f.externalLogin(ctx, idToken)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, rawToken string) error {
	return f.logout(ctx, rawToken)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, true, testLogger())

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/google_auth", h.GoogleAuth)
	r.GET("/me", authed(), h.Me)
	r.GET("/logout", authed(), h.Logout)
	return r
}

func okResult(created bool) *usecase.AuthResult {
	return &usecase.AuthResult{User: testUser, Token: "signed.jwt.value", Created: created}
}

// ---- Register ----

func TestRegister_SetsCookieAndReturnsToken(t *testing.T) {
	var got usecase.RegisterInput
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error) {
			got = in
			return okResult(true), nil
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/register", `{"name":"Ann","email":"ann@x.com","password":"pw1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Name != "Ann" || got.Email != "ann@x.com" || got.Password != "pw1" {
		t.Errorf("usecase input = %+v", got)
	}
	body := decode(t, w)
	if body["token"] != "signed.jwt.value" || body["user"] != "Ann" || body["message"] != "User registered successfully" {
		t.Errorf("body = %v", body)
	}

	c := sessionCookie(w)
	if c == nil {
		t.Fatal("no session cookie set")
	}
	if c.Value != "signed.jwt.value" || !c.HttpOnly || !c.Secure || c.MaxAge != 3600 || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
}

func TestRegister_BadBody_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}
	for _, body := range []string{
		`{bad json}`,
		`{"email":"ann@x.com","password":"pw1"}`,
		`{"name":"Ann","email":"not-an-email","password":"pw1"}`,
	} {
		if w := do(newAuthEngine(uc), http.MethodPost, "/register", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestRegister_Duplicate_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/register", `{"name":"Ann","email":"ann@x.com","password":"pw1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body["error"] != "User already exists" {
		t.Errorf("body = %v", body)
	}
	if sessionCookie(w) != nil {
		t.Error("cookie set on failure")
	}
}

func TestRegister_PasswordTooLong_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.AuthResult, error) {
			return nil, fmt.Errorf("hash password: %w", domain.ErrPasswordTooLong)
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/register",
		`{"name":"Ann","email":"ann@x.com","password":"`+strings.Repeat("é", 40)+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body["error"] != "Password must be at most 72 bytes" {
		t.Errorf("body = %v", body)
	}
	if sessionCookie(w) != nil {
		t.Error("cookie set on rejected registration")
	}
}

func TestRegister_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.AuthResult, error) {
			return nil, errors.New("db down")
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/register", `{"name":"Ann","email":"ann@x.com","password":"pw1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decode(t, w); body["error"] != "Internal server error" {
		t.Errorf("internal error leaked: %v", body)
	}
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, password string) (*usecase.AuthResult, error) {
			if email != "ann@x.com" || password != "pw1" {
				t.Errorf("login(%q, %q)", email, password)
			}
			return okResult(false), nil
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/login", `{"email":"ann@x.com","password":"pw1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decode(t, w); body["message"] != "Login successful" {
		t.Errorf("body = %v", body)
	}
	if sessionCookie(w) == nil {
		t.Error("no session cookie set")
	}
}

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(context.Context, string, string) (*usecase.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	w := do(newAuthEngine(uc), http.MethodPost, "/login", `{"email":"ann@x.com","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decode(t, w); body["error"] != "Invalid credentials" {
		t.Errorf("body = %v", body)
	}
}

// ---- GoogleAuth ----

func TestGoogleAuth_StatusDependsOnCreation(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		want    int
		msg     string
	}{
		{"new account", true, http.StatusCreated, "User registered and authenticated via Google"},
		{"existing account", false, http.StatusOK, "User logged in successfully via Google"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				externalLogin: func(context.Context, string) (*usecase.AuthResult, error) {
					return okResult(tc.created), nil
				},
			}
			w := do(newAuthEngine(uc), http.MethodPost, "/google_auth", `{"id_token":"abc"}`)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if body := decode(t, w); body["message"] != tc.msg {
				t.Errorf("body = %v", body)
			}
			if sessionCookie(w) == nil {
				t.Error("no session cookie set")
			}
		})
	}
}

func TestGoogleAuth_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"invalid token", domain.ErrInvalidExternalToken, http.StatusInternalServerError, "Invalid Google token"},
		{"timeout", domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, "Upstream service timed out"},
		{"other", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				externalLogin: func(context.Context, string) (*usecase.AuthResult, error) {
					return nil, tc.err
				},
			}
			w := do(newAuthEngine(uc), http.MethodPost, "/google_auth", `{"id_token":"abc"}`)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if body := decode(t, w); body["error"] != tc.msg {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestGoogleAuth_MissingToken_Returns400(t *testing.T) {
	w := do(newAuthEngine(&fakeAuthUsecase{}), http.MethodPost, "/google_auth", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Me / Logout ----

func TestMe_ReturnsProfile(t *testing.T) {
	w := do(newAuthEngine(&fakeAuthUsecase{}), http.MethodGet, "/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode(t, w)
	if body["id"] != float64(1) || body["name"] != "Ann" || body["email"] != "ann@x.com" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["password"]; ok {
		t.Error("password leaked")
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	var revoked string
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, raw string) error {
			revoked = raw
			return errors.New("redis down")
		},
	}

	w := do(newAuthEngine(uc), http.MethodGet, "/logout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if revoked != "good-token" {
		t.Errorf("logout got token %q", revoked)
	}
	c := sessionCookie(w)
	if c == nil || c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
}
