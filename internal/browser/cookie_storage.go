package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookiePrefix namespaces portal-owned cookies so they are never mistaken for
// backend session cookies.
const CookiePrefix = "portal_"

type storageClaims struct {
	Value string `json:"v"`
	jwt.RegisteredClaims
}

// CookieStorage keeps values in signed, HttpOnly cookies. Writes made during the
// request are visible to later reads in the same request.
type CookieStorage struct {
	c      *gin.Context
	secret []byte
	ttl    time.Duration
	secure bool

	mu      sync.Mutex
	pending map[string]*string
}

// NewCookieStorage builds cookie-backed storage for one request.
func NewCookieStorage(c *gin.Context, secret string, ttl time.Duration, secure bool) *CookieStorage {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CookieStorage{c: c, secret: []byte(secret), ttl: ttl, secure: secure, pending: map[string]*string{}}
}

func (s *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	s.mu.Unlock()

	raw, err := s.c.Cookie(cookieName(key))
	if err != nil || raw == "" {
		return "", false, nil
	}
	value, err := s.verify(key, raw)
	if err != nil {
		// Tampered or expired entries read as missing.
		return "", false, nil
	}
	return value, true, nil
}

func (s *CookieStorage) Set(_ context.Context, key, value string) error {
	if len(s.secret) == 0 {
		return errors.New("cookie storage secret missing")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, storageClaims{
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign %s: %w", key, err)
	}

	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(cookieName(key), signed, int(s.ttl.Seconds()), "/", "", s.secure, true)

	s.mu.Lock()
	s.pending[key] = &value
	s.mu.Unlock()
	return nil
}

func (s *CookieStorage) Remove(_ context.Context, key string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(cookieName(key), "", -1, "/", "", s.secure, true)

	s.mu.Lock()
	s.pending[key] = nil
	s.mu.Unlock()
	return nil
}

// cookieName maps key onto the cookie token alphabet. The signed subject still
// carries the exact key, so colliding names read as missing.
func cookieName(key string) string {
	var b strings.Builder
	b.WriteString(CookiePrefix)
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (s *CookieStorage) verify(key, raw string) (string, error) {
	claims := &storageClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(key))
	if err != nil {
		return "", err
	}
	return claims.Value, nil
}
