package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const DefaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// KeySource yields the provider's current signing keys.
type KeySource interface {
	Keys(ctx context.Context) (jwk.Set, error)
}

type cachedKeys struct {
	cache *jwk.Cache
	url   string
}

// NewCachedKeys registers url in an auto-refreshing JWKS cache. The set is
// refreshed at most every 15 minutes and on unknown key ids.
func NewCachedKeys(ctx context.Context, url string) (KeySource, error) {
	c := jwk.NewCache(ctx)
	if err := c.Register(url, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("jwk cache register: %w", err)
	}
	return &cachedKeys{cache: c, url: url}, nil
}

func (k *cachedKeys) Keys(ctx context.Context) (jwk.Set, error) {
	return k.cache.Get(ctx, k.url)
}

// StaticKeys serves a fixed key set.
type StaticKeys struct {
	Set jwk.Set
}

func (s StaticKeys) Keys(context.Context) (jwk.Set, error) {
	return s.Set, nil
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id. It fails closed: anything short of a fully verified token with
// an email claim is domain.ErrInvalidExternalToken.
type GoogleVerifier struct {
	clientID string
	keys     KeySource
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*GoogleVerifier)

func WithTimeout(d time.Duration) Option {
	return func(v *GoogleVerifier) { v.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(v *GoogleVerifier) { v.now = now }
}

func NewGoogleVerifier(clientID string, keys KeySource, opts ...Option) *GoogleVerifier {
	v := &GoogleVerifier{
		clientID: clientID,
		keys:     keys,
		timeout:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (domain.ExternalIdentity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" || v.clientID == "" {
		return domain.ExternalIdentity{}, domain.ErrInvalidExternalToken
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	keySet, err := v.keys.Keys(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ExternalIdentity{}, domain.ErrUpstreamTimeout
		}
		return domain.ExternalIdentity{}, fmt.Errorf("%w: fetch keys: %v", domain.ErrInvalidExternalToken, err)
	}

	tok, err := jwt.Parse([]byte(rawToken),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAudience(v.clientID),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil || tok == nil {
		return domain.ExternalIdentity{}, domain.ErrInvalidExternalToken
	}

	if _, ok := googleIssuers[tok.Issuer()]; !ok {
		return domain.ExternalIdentity{}, domain.ErrInvalidExternalToken
	}

	email := stringClaim(tok, "email")
	if email == "" || !emailVerified(tok) {
		return domain.ExternalIdentity{}, domain.ErrInvalidExternalToken
	}

	return domain.ExternalIdentity{
		Email: email,
		Name:  stringClaim(tok, "name"),
	}, nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Google sends email_verified as a bool, older tokens as the string "true".
// A missing claim counts as unverified.
func emailVerified(tok jwt.Token) bool {
	v, ok := tok.Get("email_verified")
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	default:
		return false
	}
}
