package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"simlab-dashboard/internal/session"
	"simlab-dashboard/pkg/utils"
)

const carrierKey = "simlab.carrier"

// Sessions ties the signed cookie to the server-side session store.
type Sessions struct {
	store      session.Store
	tokens     *session.Tokens
	cookieName string
	secure     bool
}

func NewSessions(store session.Store, tokens *session.Tokens, cookieName string, secure bool) *Sessions {
	return &Sessions{
		store:      store,
		tokens:     tokens,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Issue stores carrier under a new id and sets the session cookie.
func (s *Sessions) Issue(c *gin.Context, carrier *session.Carrier) error {
	id, expiresAt := s.store.Create(carrier)
	token, err := s.tokens.Sign(id, expiresAt)
	if err != nil {
		s.store.Delete(id)
		return err
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.cookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", s.secure, true)
	return nil
}

// SessionID returns the id named by a valid cookie, whether or not the
// store still holds it.
func (s *Sessions) SessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(s.cookieName)
	if err != nil || raw == "" {
		return "", false
	}
	id, err := s.tokens.Verify(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

// Lookup returns the carrier stored under id.
func (s *Sessions) Lookup(id string) (*session.Carrier, bool) {
	if id == "" {
		return nil, false
	}
	return s.store.Get(id)
}

// Resolve returns the carrier for the request's cookie.
func (s *Sessions) Resolve(c *gin.Context) (*session.Carrier, bool) {
	id, ok := s.SessionID(c)
	if !ok {
		return nil, false
	}
	return s.Lookup(id)
}

// Forget deletes the session stored under id.
func (s *Sessions) Forget(id string) {
	s.store.Delete(id)
}

// Drop deletes the request's session and expires the cookie.
func (s *Sessions) Drop(c *gin.Context) {
	if id, ok := s.SessionID(c); ok {
		s.store.Delete(id)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}

// Require aborts with NoSession unless the request carries a live session.
func (s *Sessions) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		carrier, ok := s.Resolve(c)
		if !ok {
			respondError(c, utils.NewNoSessionError())
			return
		}
		c.Set(carrierKey, carrier)
		c.Next()
	}
}

func carrierFrom(c *gin.Context) *session.Carrier {
	v, ok := c.Get(carrierKey)
	if !ok {
		return nil
	}
	carrier, _ := v.(*session.Carrier)
	return carrier
}
