package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/internal/api/middleware"
	"uiet-connect/backend/internal/service"
	"uiet-connect/backend/pkg/response"
)

// MustGetUserID reads user_id injected by JWTAuth. On false a 401 has been
// written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextUserID)
}

// MustGetRole reads role injected by JWTAuth
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextRole)
}

// MustGetDepartmentID reads department_id injected by JWTAuth. Every
// attendance operation is department scoped, so an empty value is rejected.
func MustGetDepartmentID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextDepartmentID)
}

// MustGetScope collects the caller identity into a service.Scope
func MustGetScope(c *gin.Context) (service.Scope, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Scope{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Scope{}, false
	}
	deptID, ok := MustGetDepartmentID(c)
	if !ok {
		return service.Scope{}, false
	}
	return service.Scope{UserID: userID, DepartmentID: deptID, Role: role}, true
}

// tokenInfo JWT ID and expiry of the current token; both may be zero
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenID)
	exp, _ := c.Get(middleware.ContextTokenExpiry)
	t, _ := exp.(time.Time)
	return jti, t
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}
