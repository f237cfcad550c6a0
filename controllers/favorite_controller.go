package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/middleware"
	"aishare/models"
	"aishare/utils"
)

// FavoriteController toggles per-user favorites. No counter columns exist;
// counts are always derived from the favorites table.
type FavoriteController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFavoriteController(db *gorm.DB, logger *zap.Logger) *FavoriteController {
	return &FavoriteController{db: db, logger: logger}
}

// Toggle flips the viewer's favorite on a post. Toggling is idempotent by
// construction: the pair either exists or it does not.
func (f *FavoriteController) Toggle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var post models.Post
	err := f.db.First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}
	if post.Status != models.StatusPublic && !middleware.IsStaffRequest(ctx) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}

	favorited := false
	err = f.db.Transaction(func(tx *gorm.DB) error {
		var fav models.Favorite
		err := tx.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&fav).Error
		switch {
		case err == nil:
			return tx.Delete(&fav).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			favorited = true
			return tx.Create(&models.Favorite{UserID: userID, PostID: post.ID}).Error
		default:
			return err
		}
	})
	if err != nil {
		f.logger.Error("toggle favorite", zap.Uint("post_id", post.ID), zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to toggle favorite")
		return
	}

	var count int64
	if err := f.db.Model(&models.Favorite{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count favorites")
		return
	}
	utils.Success(ctx, gin.H{"favorited": favorited, "favorite_count": count})
}

// Mine lists the posts the viewer has favorited, newest favorite first.
func (f *FavoriteController) Mine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var rows []models.PostRow
	err := f.db.Raw(`SELECT `+postColumns+`
		FROM posts p
		`+favoriteJoin+`
		JOIN favorites mine ON mine.post_id = p.id AND mine.user_id = ?
		WHERE p.status = 'public'
		ORDER BY mine.created_at DESC`, userID).Scan(&rows).Error
	if err != nil {
		f.logger.Error("list favorites", zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list favorites")
		return
	}
	utils.Success(ctx, gin.H{"items": postCards(rows)})
}
