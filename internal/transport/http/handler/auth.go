package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/middleware"
	"github.com/ErlanBelekov/writing-assistant/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	ExternalLogin(ctx context.Context, idToken string) (*usecase.AuthResult, error)
	Logout(ctx context.Context, rawToken string) error
}

type AuthHandler struct {
	authUsecase  authUsecaser
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		secureCookie: secureCookie,
		logger:       logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"     binding:"required,max=200"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleAuthRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    string `json:"user"`
}

type meResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// POST /register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.authUsecase.Register(ctx.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateEmail})
			return
		case errors.Is(err, domain.ErrPasswordTooLong):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errPasswordTooLong})
			return
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		h.logger.ErrorContext(ctx.Request.Context(), "register", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	h.setSessionCookie(ctx, res.Token)
	ctx.JSON(http.StatusOK, authResponse{
		Message: "User registered successfully",
		Token:   res.Token,
		User:    res.User.Name,
	})
}

// POST /login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.authUsecase.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues("password", "rejected").Inc()
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		metrics.AuthAttemptsTotal.WithLabelValues("password", "error").Inc()
		h.logger.ErrorContext(ctx.Request.Context(), "login", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("password", "ok").Inc()
	h.setSessionCookie(ctx, res.Token)
	ctx.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User.Name,
	})
}

// POST /google_auth
// 201 when the account was created by this call, 200 otherwise.
func (h *AuthHandler) GoogleAuth(ctx *gin.Context) {
	var req googleAuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.authUsecase.ExternalLogin(ctx.Request.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUpstreamTimeout):
			metrics.AuthAttemptsTotal.WithLabelValues("google", "timeout").Inc()
			ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": errUpstreamTimeout})
		case errors.Is(err, domain.ErrInvalidExternalToken):
			metrics.AuthAttemptsTotal.WithLabelValues("google", "rejected").Inc()
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInvalidGoogleToken})
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("google", "error").Inc()
			h.logger.ErrorContext(ctx.Request.Context(), "google auth", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("google", "ok").Inc()
	h.setSessionCookie(ctx, res.Token)

	status, msg := http.StatusOK, "User logged in successfully via Google"
	if res.Created {
		status, msg = http.StatusCreated, "User registered and authenticated via Google"
	}
	ctx.JSON(status, authResponse{Message: msg, Token: res.Token, User: res.User.Name})
}

// GET /me
func (h *AuthHandler) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	ctx.JSON(http.StatusOK, meResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// GET /logout
// The cookie is cleared even when revocation fails.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if err := h.authUsecase.Logout(ctx.Request.Context(), middleware.SessionToken(ctx)); err != nil {
		h.logger.WarnContext(ctx.Request.Context(), "logout revoke", "error", err)
	}
	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, token, int(middleware.SessionMaxAge.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
}
