package server

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTokenMissing = errors.New("CSRF token missing")
	ErrTokenInvalid = errors.New("CSRF token invalid")
)

// CSRFConfig holds configuration for CSRF protection
type CSRFConfig struct {
	Cookie    string
	Secure    bool
	Expiry    time.Duration
	FieldName string
}

// DefaultCSRFConfig returns the default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		Cookie:    "csrf_token",
		Secure:    true, // overridden by server config
		Expiry:    24 * time.Hour,
		FieldName: "csrf_token",
	}
}

// CSRF implements double-submit cookie protection for the login and logout
// forms. Issued tokens are tracked server-side with an expiry.
type CSRF struct {
	config CSRFConfig
	tokens sync.Map // token -> expiry time.Time
}

func NewCSRF(config CSRFConfig) *CSRF {
	return &CSRF{config: config}
}

func (c *CSRF) generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Token returns the request's existing CSRF token or issues a new one,
// setting the cookie as a side effect.
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(c.config.Cookie); err == nil && cookie.Value != "" {
		if _, ok := c.tokens.Load(cookie.Value); ok {
			return cookie.Value
		}
	}

	token, err := c.generateToken()
	if err != nil {
		return ""
	}
	c.tokens.Store(token, time.Now().Add(c.config.Expiry))
	c.pruneExpired()

	http.SetCookie(w, &http.Cookie{
		Name:     c.config.Cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(c.config.Expiry.Seconds()),
	})
	return token
}

// Validate checks the form token against the cookie and the server-side
// store, writing a 403 on failure.
func (c *CSRF) Validate(w http.ResponseWriter, r *http.Request) bool {
	if err := c.validateRequest(r); err != nil {
		http.Error(w, "CSRF validation failed", http.StatusForbidden)
		return false
	}
	return true
}

func (c *CSRF) validateRequest(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return ErrTokenMissing
	}
	token := r.FormValue(c.config.FieldName)
	if token == "" {
		return ErrTokenMissing
	}

	cookie, err := r.Cookie(c.config.Cookie)
	if err != nil || cookie.Value != token {
		return ErrTokenInvalid
	}

	expiry, ok := c.tokens.Load(token)
	if !ok {
		return ErrTokenInvalid
	}
	if expiry.(time.Time).Before(time.Now()) {
		c.tokens.Delete(token)
		return ErrTokenInvalid
	}
	return nil
}

// pruneExpired drops stale tokens. Called on issuance rather than from a
// background goroutine so the store cannot grow unbounded on an idle server.
func (c *CSRF) pruneExpired() {
	now := time.Now()
	c.tokens.Range(func(key, value any) bool {
		if value.(time.Time).Before(now) {
			c.tokens.Delete(key)
		}
		return true
	})
}
