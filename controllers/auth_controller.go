package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"aishare/models"
	"aishare/utils"
)

const tokenTTL = 7 * 24 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,32}$`)

// AuthController handles registration, login, logout and the current-user
// endpoint.
type AuthController struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	bl     *utils.TokenBlacklist
	admins map[string]bool
}

// NewAuthController creates an AuthController. adminUsernames are promoted
// to the admin role on registration.
func NewAuthController(db *gorm.DB, tokens *utils.TokenManager, bl *utils.TokenBlacklist, adminUsernames []string) *AuthController {
	admins := make(map[string]bool, len(adminUsernames))
	for _, name := range adminUsernames {
		admins[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return &AuthController{db: db, tokens: tokens, bl: bl, admins: admins}
}

// Register creates a local account and returns a fresh token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 3-32 characters of letters, digits, underscore or dash")
		return
	}
	if len(req.Password) < 8 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be at least 8 characters")
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check username")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40004, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	role := models.RoleUser
	if a.admins[strings.ToLower(username)] {
		role = models.RoleAdmin
	}
	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserActive,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	token, err := a.tokens.Generate(user.ID, user.Username, user.Role, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userPayload(user)})
}

// Login verifies the password and account status and returns a token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}
	switch user.Status {
	case models.UserBanned:
		utils.Error(ctx, http.StatusForbidden, 40320, "account is banned")
		return
	case models.UserSuspended:
		utils.Error(ctx, http.StatusForbidden, 40321, "account is suspended")
		return
	}

	token, err := a.tokens.Generate(user.ID, user.Username, user.Role, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userPayload(user)})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40006, "missing bearer token")
		return
	}
	tokenString := strings.TrimSpace(parts[1])

	claims, err := a.tokens.Parse(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}
	expiresAt := time.Now().Add(tokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := a.bl.Revoke(ctx.Request.Context(), tokenString, expiresAt); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to revoke token")
		return
	}
	utils.Success(ctx, gin.H{"logged_out": true})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": userPayload(user)})
}

func userPayload(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"role":       u.Role,
		"status":     u.Status,
		"created_at": u.CreatedAt,
	}
}
