// Package auth validates sessions minted by the external identity
// provider.
//
// This service is not a user system: it only maps opaque bearer tokens
// to user IDs. The provider mints sessions through a secret-guarded
// endpoint; tokens are stored hashed so a leaked database does not
// leak usable credentials.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/idgen"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL is how long a minted session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

const ctxUserKey = "authUserID"

// Session maps a hashed bearer token to a user.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its TTL.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists session data.
type Store interface {
	Create(ctx context.Context, session *Session) error
	GetByHash(ctx context.Context, hash string) (*Session, error)
	Delete(ctx context.Context, hash string) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// Service implements session issuance and validation. Constructed once
// per process and injected into handlers; there is no package-level
// session state.
type Service struct {
	store          Store
	providerSecret string
	ttl            time.Duration
}

// NewService creates a new session service.
func NewService(store Store, providerSecret string) *Service {
	return &Service{
		store:          store,
		providerSecret: providerSecret,
		ttl:            DefaultSessionTTL,
	}
}

// WithTTL overrides the session lifetime.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// CheckProviderSecret compares the caller's secret in constant time.
func (s *Service) CheckProviderSecret(secret string) bool {
	if s.providerSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.providerSecret)) == 1
}

// Mint creates a session for a provider-identified user and returns
// the bearer token. The token itself is never persisted.
func (s *Service) Mint(ctx context.Context, userID string) (string, error) {
	token := idgen.WithPrefix("sess_")
	now := time.Now()
	session := &Session{
		TokenHash: hashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a bearer token to its user ID.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	session, err := s.store.GetByHash(ctx, hashToken(token))
	if err != nil {
		return "", err
	}
	if session.Expired(time.Now()) {
		return "", ErrSessionExpired
	}
	return session.UserID, nil
}

// Revoke deletes the session behind a bearer token.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.store.Delete(ctx, hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// bearerToken extracts the token from the Authorization header,
// accepting both "Bearer <token>" and a bare token.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return h
}

// Middleware resolves the session if one is presented and stores the
// user ID in the request context. It never aborts; RequireAuth does.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userID, err := s.Resolve(c.Request.Context(), token); err == nil {
				c.Set(ctxUserKey, userID)
			}
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 when no authenticated user is present.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "authentication_required",
				"message": "Sign in to continue",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin guards admin routes with a shared secret header.
func RequireAdmin(adminSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Secret")
		if adminSecret == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(adminSecret)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID, or "" when anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserKey)
}
