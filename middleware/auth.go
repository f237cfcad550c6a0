package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aishare/models"
	"aishare/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextRoleKey stores the user role inside Gin context.
	ContextRoleKey = "role"
)

// AuthRequired ensures the request carries a valid, non-revoked JWT.
func AuthRequired(tm *utils.TokenManager, bl *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, code, msg := authenticate(ctx, tm, bl)
		if claims == nil {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// AuthOptional populates the identity keys when a valid token is present
// and lets the request through anonymously otherwise. Listing endpoints
// use it to decide whether hidden content may be included.
func AuthOptional(tm *utils.TokenManager, bl *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, _, _ := authenticate(ctx, tm, bl); claims != nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
			ctx.Set(ContextRoleKey, claims.Role)
		}
		ctx.Next()
	}
}

// StaffRequired gates moderation endpoints. Must run after AuthRequired.
func StaffRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString(ContextRoleKey)
		if role != models.RoleModerator && role != models.RoleAdmin {
			utils.Error(ctx, http.StatusForbidden, 40310, "staff access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// AdminRequired gates admin-only endpoints. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString(ContextRoleKey) != models.RoleAdmin {
			utils.Error(ctx, http.StatusForbidden, 40311, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, tm *utils.TokenManager, bl *utils.TokenBlacklist) (*utils.Claims, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, 40103, "empty bearer token"
	}

	if bl.IsRevoked(ctx.Request.Context(), tokenString) {
		return nil, 40104, "token revoked"
	}

	claims, err := tm.Parse(tokenString)
	if err != nil {
		return nil, 40105, "invalid token"
	}
	return claims, 0, ""
}

// IsStaffRequest reports whether the current request is authenticated as
// a moderator or admin. Works with both required and optional auth.
func IsStaffRequest(ctx *gin.Context) bool {
	role := ctx.GetString(ContextRoleKey)
	return role == models.RoleModerator || role == models.RoleAdmin
}
