package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/middleware"
	"aishare/models"
	"aishare/utils"
)

// CommentController manages the threaded comment tree under posts.
type CommentController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCommentController(db *gorm.DB, logger *zap.Logger) *CommentController {
	return &CommentController{db: db, logger: logger}
}

// Create inserts a comment and assigns its materialized path. The insert
// and the path assignment happen in one transaction: the path needs the
// generated id, so the row is written first and then updated in place.
//
// A parent_id that does not resolve to a comment on the same post falls
// back to creating a root comment rather than failing.
func (c *CommentController) Create(ctx *gin.Context) {
	var req struct {
		Comment  string `json:"comment" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	body := utils.Sanitize(strings.TrimSpace(req.Comment))
	if body == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "comment cannot be empty")
		return
	}
	author := currentUsername(ctx)
	if author == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var post models.Post
	err := c.db.First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}
	// Non-public posts stay commentable for the people who can still see
	// them: staff and the post's author.
	if post.Status != models.StatusPublic && !middleware.IsStaffRequest(ctx) && post.Author != author {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		Comment: body,
		Author:  author,
		Status:  models.StatusPublic,
	}
	err = c.db.Transaction(func(tx *gorm.DB) error {
		var parent *models.Comment
		if req.ParentID != nil {
			var p models.Comment
			err := tx.Where("id = ? AND post_id = ?", *req.ParentID, post.ID).First(&p).Error
			if err == nil {
				parent = &p
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if parent != nil {
			comment.ParentID = &parent.ID
			comment.Depth = parent.Depth + 1
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		path := models.RootPath(comment.ID)
		if parent != nil {
			path = models.ChildPath(parent.Path, comment.ID)
		}
		comment.Path = path
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			Update("path", path).Error
	})
	if err != nil {
		c.logger.Error("create comment", zap.Uint("post_id", post.ID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// Delete removes a comment and its descendants. Allowed for the comment
// author, the post author, and admins.
func (c *CommentController) Delete(ctx *gin.Context) {
	var comment models.Comment
	err := c.db.First(&comment, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load comment")
		return
	}

	var post models.Post
	if err := c.db.First(&post, comment.PostID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	me := currentUsername(ctx)
	if comment.Author != me && post.Author != me && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40340, "not allowed to delete this comment")
		return
	}

	// Descendants share the path prefix; delete the whole subtree.
	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND path LIKE ?", comment.PostID, comment.Path+"/%").
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		c.logger.Error("delete comment", zap.Uint("comment_id", comment.ID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}
