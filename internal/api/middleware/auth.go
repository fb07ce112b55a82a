package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"uiet-connect/backend/pkg/jwt"
	"uiet-connect/backend/pkg/redis"
	"uiet-connect/backend/pkg/response"
)

// Context keys injected by JWTAuth
const (
	ContextUserID       = "user_id"
	ContextRole         = "role"
	ContextDepartmentID = "department_id"
	ContextTokenID      = "token_id"
	ContextTokenExpiry  = "token_expiry"
)

// JWTAuth validates the access token from "Authorization: Bearer <token>".
// A nil rdb skips the blacklist lookup; a Redis error also lets the request
// through, matching RateLimit.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		if !claims.IsAccess() {
			response.Unauthorized(c, 10002, "invalid token type")
			c.Abort()
			return
		}

		// identities are written to uuid columns (created_by, department_id)
		if !isUUID(claims.UserID) || !isUUID(claims.DepartmentID) {
			response.Unauthorized(c, 10002, "token identity is malformed")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextDepartmentID, claims.DepartmentID)
		c.Set(ContextTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
		} else {
			c.Set(ContextTokenExpiry, time.Time{})
		}

		c.Next()
	}
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// RoleAuth lets the request through only when the caller has one of allowedRoles
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.Unauthorized(c, 10002, "unauthenticated")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "permission denied")
		c.Abort()
	}
}
