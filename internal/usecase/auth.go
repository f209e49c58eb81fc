package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/auth"
	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/email"
	"github.com/ErlanBelekov/writing-assistant/internal/repository"
)

const welcomeEmailTimeout = 10 * time.Second

type passwordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

type sessionTokens interface {
	Issue(userID int64) (string, error)
	Validate(raw string) (domain.SessionClaims, error)
}

type externalVerifier interface {
	Verify(ctx context.Context, idToken string) (domain.ExternalIdentity, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a signed session for a user. Created is true when the
// request produced a new account.
type AuthResult struct {
	User    *domain.User
	Token   string
	Created bool
}

type AuthUsecase struct {
	users   repository.UserRepository
	hasher  passwordHasher
	tokens  sessionTokens
	google  externalVerifier
	revoker auth.Revoker
	email   email.Sender
	logger  *slog.Logger

	wg        sync.WaitGroup
	dummyOnce sync.Once
	dummyPwd  string
}

type AuthOption func(*AuthUsecase)

// WithRevoker enables server-side logout. Without it logout only clears the
// client cookie and tokens stay valid until they expire.
func WithRevoker(r auth.Revoker) AuthOption {
	return func(u *AuthUsecase) { u.revoker = r }
}

// WithWelcomeEmail sends a best-effort greeting to every new account.
func WithWelcomeEmail(s email.Sender) AuthOption {
	return func(u *AuthUsecase) { u.email = s }
}

func NewAuthUsecase(
	users repository.UserRepository,
	hasher passwordHasher,
	tokens sessionTokens,
	google externalVerifier,
	logger *slog.Logger,
	opts ...AuthOption,
) *AuthUsecase {
	u := &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		google: google,
		logger: logger.With("component", "auth_usecase"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register creates a local account and signs a session for it. The password
// is hashed before anything is written, so a hashing failure leaves no row.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	addr := normalizeEmail(in.Email)

	_, err := u.users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    addr,
		Password: &hashed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	u.sendWelcome(ctx, user)
	return &AuthResult{User: user, Token: token, Created: true}, nil
}

// Login checks a local password. Unknown emails, Google-only accounts and
// wrong passwords are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.hasher.Verify(password, u.dummyHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.HasPassword() {
		u.hasher.Verify(password, u.dummyHash())
		return nil, domain.ErrInvalidCredentials
	}
	if !u.hasher.Verify(password, *user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ExternalLogin verifies a Google ID token and signs a session for the
// matching account, creating a password-less one on first sight. An
// existing account with the same email is reused as is.
func (u *AuthUsecase) ExternalLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	ident, err := u.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamTimeout) {
			return nil, domain.ErrUpstreamTimeout
		}
		u.logger.WarnContext(ctx, "google token rejected", "error", err)
		return nil, domain.ErrInvalidExternalToken
	}

	user, created, err := u.users.FindOrCreate(ctx, normalizeEmail(ident.Email), strings.TrimSpace(ident.Name))
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if created {
		u.sendWelcome(ctx, user)
	}
	return &AuthResult{User: user, Token: token, Created: created}, nil
}

// Resolve maps a raw session token to its user. Every token failure is
// domain.ErrUnauthenticated; a valid token for a deleted user is
// domain.ErrUserNotFound.
func (u *AuthUsecase) Resolve(ctx context.Context, rawToken string) (*domain.User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := u.tokens.Validate(rawToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	if u.revoker != nil {
		revoked, err := u.revoker.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, domain.ErrUnauthenticated
		}
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Logout revokes the token for its remaining lifetime when a revoker is
// configured. It is a no-op otherwise.
func (u *AuthUsecase) Logout(ctx context.Context, rawToken string) error {
	if u.revoker == nil {
		return nil
	}
	claims, err := u.tokens.Validate(rawToken)
	if err != nil {
		return nil
	}
	if err := u.revoker.Revoke(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Wait blocks until in-flight welcome emails finish.
func (u *AuthUsecase) Wait() {
	u.wg.Wait()
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	if u.email == nil {
		return
	}
	msg := email.Welcome(user.Email, user.Name)
	ctx = context.WithoutCancel(ctx)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, welcomeEmailTimeout)
		defer cancel()
		if err := u.email.Send(ctx, msg); err != nil {
			u.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "error", err)
		}
	}()
}

// dummyHash gives Login a hash to compare against when there is no real
// one, so response time does not reveal whether an account exists.
func (u *AuthUsecase) dummyHash() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("not-a-real-password")
		if err == nil {
			u.dummyPwd = h
		}
	})
	return u.dummyPwd
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
