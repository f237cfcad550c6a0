package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aishare/models"
	"aishare/utils"
)

// NotifyController computes the three unread counters and maintains the
// per-user read watermarks.
type NotifyController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewNotifyController(db *gorm.DB, logger *zap.Logger) *NotifyController {
	return &NotifyController{db: db, logger: logger}
}

// Counts returns the three unread aggregates. Each counter only includes
// events newer than its watermark, and never the viewer's own actions.
func (n *NotifyController) Counts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	me := currentUsername(ctx)

	var read models.UserRead
	err := n.db.First(&read, "user_id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load read state")
		return
	}

	comments, err := n.countSince(`SELECT COUNT(*)
		FROM comments c
		JOIN posts p ON p.id = c.post_id
		WHERE p.author = ? AND c.author <> ? AND c.status = 'public'`,
		[]interface{}{me, me}, "c.created_at", read.CommentsOnMyPosts)
	if err != nil {
		n.logger.Error("count comment notifications", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count notifications")
		return
	}

	replies, err := n.countSince(`SELECT COUNT(*)
		FROM comments c
		JOIN comments parent ON parent.id = c.parent_id
		WHERE parent.author = ? AND c.author <> ? AND c.status = 'public'`,
		[]interface{}{me, me}, "c.created_at", read.RepliesToMe)
	if err != nil {
		n.logger.Error("count reply notifications", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count notifications")
		return
	}

	favorites, err := n.countSince(`SELECT COUNT(*)
		FROM favorites fv
		JOIN posts p ON p.id = fv.post_id
		WHERE p.author = ? AND fv.user_id <> ?`,
		[]interface{}{me, userID}, "fv.created_at", read.FavoritesOnMyPosts)
	if err != nil {
		n.logger.Error("count favorite notifications", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count notifications")
		return
	}

	utils.Success(ctx, gin.H{
		models.NotifyCommentsOnMyPosts:  comments,
		models.NotifyRepliesToMe:        replies,
		models.NotifyFavoritesOnMyPosts: favorites,
		"total":                         comments + replies + favorites,
	})
}

func (n *NotifyController) countSince(baseSQL string, params []interface{}, tsColumn string, watermark *time.Time) (int64, error) {
	sql := baseSQL
	if watermark != nil {
		sql += " AND " + tsColumn + " > ?"
		params = append(params, *watermark)
	}
	var count int64
	err := n.db.Raw(sql, params...).Scan(&count).Error
	return count, err
}

// MarkRead advances one watermark, or all three for category "all".
func (n *NotifyController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	now := time.Now()
	read := models.UserRead{UserID: userID}
	var columns []string
	switch req.Category {
	case models.NotifyCommentsOnMyPosts:
		read.CommentsOnMyPosts = &now
		columns = []string{"comments_on_my_posts"}
	case models.NotifyRepliesToMe:
		read.RepliesToMe = &now
		columns = []string{"replies_to_me"}
	case models.NotifyFavoritesOnMyPosts:
		read.FavoritesOnMyPosts = &now
		columns = []string{"favorites_on_my_posts"}
	case "all":
		read.CommentsOnMyPosts = &now
		read.RepliesToMe = &now
		read.FavoritesOnMyPosts = &now
		columns = []string{"comments_on_my_posts", "replies_to_me", "favorites_on_my_posts"}
	default:
		utils.Error(ctx, http.StatusBadRequest, 40061, "unknown notification category")
		return
	}

	err := n.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&read).Error
	if err != nil {
		n.logger.Error("mark notifications read", zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to mark notifications read")
		return
	}
	utils.Success(ctx, gin.H{"marked": req.Category})
}
