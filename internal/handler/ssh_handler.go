package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/session"
	"simlab-dashboard/pkg/utils"
)

// Authenticator checks credentials against the cluster host.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

type AuthHandler struct {
	auth     Authenticator
	sessions *Sessions
}

func NewAuthHandler(auth Authenticator, sessions *Sessions) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("request", err))
		return
	}

	_, loggedIn := h.sessions.Resolve(c)
	router := session.NewRouter(loggedIn)

	ok, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil || !ok {
		if err == nil {
			err = utils.NewAuthError(nil)
		}
		// A failed attempt keeps whatever session the browser already had.
		if router.State() == session.LoggedOut {
			_ = router.Fire(session.EventLoginFailed)
		}
		respondError(c, err)
		return
	}

	// A new login replaces the previous session.
	if router.State() == session.LoggedIn {
		h.sessions.Drop(c)
		_ = router.Fire(session.EventLogout)
	}
	if err := h.sessions.Issue(c, session.NewCarrier(req.Username, req.Password)); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "Failed to create session",
		})
		return
	}
	_ = router.Fire(session.EventLogin)

	c.JSON(http.StatusOK, model.LoginResponse{
		Success: true,
		Message: "Login successful",
		Route:   router.Route(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	_, loggedIn := h.sessions.Resolve(c)
	router := session.NewRouter(loggedIn)

	h.sessions.Drop(c)
	if router.State() == session.LoggedIn {
		_ = router.Fire(session.EventLogout)
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Success: true,
		Route:   router.Route(),
	})
}

func (h *AuthHandler) Session(c *gin.Context) {
	_, loggedIn := h.sessions.Resolve(c)
	router := session.NewRouter(loggedIn)

	c.JSON(http.StatusOK, model.SessionResponse{
		Authenticated: loggedIn,
		Route:         router.Route(),
	})
}
