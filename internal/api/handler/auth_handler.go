package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/internal/service"
	"uiet-connect/backend/pkg/response"
)

// AuthHandler session HTTP handlers
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Logout revokes the bearer token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenInfo(c)

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenIDMissing):
			response.BadRequest(c, 11001, "token cannot be revoked")
		case errors.Is(err, service.ErrBlacklistUnavailable):
			response.Error(c, http.StatusServiceUnavailable, 11002, "token revocation is unavailable")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// Me identity of the caller
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), scope)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
