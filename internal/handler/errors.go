package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/session"
	"simlab-dashboard/pkg/utils"
)

func statusFor(kind string) int {
	switch kind {
	case utils.KindNoSession, utils.KindAuthenticationFailed:
		return http.StatusUnauthorized
	case utils.KindUnknownNode, utils.KindValidation:
		return http.StatusBadRequest
	case utils.KindConnectionFailed, utils.KindExecutionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody converts err into the JSON shape shared by HTTP and WebSocket
// replies. Kinds that end the session carry a redirect to the login page.
func errorBody(err error) (int, model.ErrorResponse) {
	var apiErr *utils.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "Internal server error",
		}
	}

	resp := model.ErrorResponse{
		Success: false,
		Kind:    apiErr.Kind,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
	if endsSession(apiErr.Kind) {
		resp.Redirect = session.RouteLogin
	}
	return statusFor(apiErr.Kind), resp
}

func endsSession(kind string) bool {
	return kind == utils.KindNoSession || kind == utils.KindAuthenticationFailed
}

func respondError(c *gin.Context, err error) {
	status, body := errorBody(err)
	c.AbortWithStatusJSON(status, body)
}
