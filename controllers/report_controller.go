package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aishare/models"
	"aishare/utils"
)

// ReportController handles user reports and the staff moderation surface.
type ReportController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewReportController(db *gorm.DB, logger *zap.Logger) *ReportController {
	return &ReportController{db: db, logger: logger}
}

// Create files a report against a post or comment. A reporter gets at most
// one open report per target; repeats return the existing one.
func (r *ReportController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	var req struct {
		TargetType string `json:"target_type" binding:"required"`
		TargetID   uint   `json:"target_id" binding:"required"`
		Reason     string `json:"reason" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	if req.TargetType != models.TargetPost && req.TargetType != models.TargetComment {
		utils.Error(ctx, http.StatusBadRequest, 40071, "target_type must be post or comment")
		return
	}
	reason := utils.Sanitize(strings.TrimSpace(req.Reason))
	if reason == "" {
		utils.Error(ctx, http.StatusBadRequest, 40072, "reason cannot be empty")
		return
	}

	if !r.targetExists(req.TargetType, req.TargetID) {
		utils.Error(ctx, http.StatusNotFound, 40422, "report target not found")
		return
	}

	// The unique index spans (target_type, target_id, reporter_id) with no
	// status qualifier, so a closed report blocks inserts the same way an
	// open one does. Return whichever exists instead of re-filing.
	var existing models.Report
	err := r.db.Where("target_type = ? AND target_id = ? AND reporter_id = ?",
		req.TargetType, req.TargetID, userID).First(&existing).Error
	if err == nil {
		utils.Success(ctx, gin.H{"report": existing, "duplicate": true})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to check existing reports")
		return
	}

	report := models.Report{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ReporterID: userID,
		Reason:     reason,
		Status:     models.ReportOpen,
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&report).Error; err != nil {
		r.logger.Error("create report", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create report")
		return
	}
	utils.Success(ctx, gin.H{"report": report})
}

func (r *ReportController) targetExists(targetType string, targetID uint) bool {
	var count int64
	switch targetType {
	case models.TargetPost:
		r.db.Model(&models.Post{}).Where("id = ? AND status <> ?", targetID, models.StatusDeleted).Count(&count)
	case models.TargetComment:
		r.db.Model(&models.Comment{}).Where("id = ?", targetID).Count(&count)
	}
	return count > 0
}

// List returns reports for staff, optionally filtered by status.
func (r *ReportController) List(ctx *gin.Context) {
	query := r.db.Model(&models.Report{}).Order("created_at DESC")
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	var reports []models.Report
	if err := query.Limit(200).Find(&reports).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to list reports")
		return
	}
	utils.Success(ctx, gin.H{"items": reports})
}

// Close marks a report closed.
func (r *ReportController) Close(ctx *gin.Context) {
	var report models.Report
	err := r.db.First(&report, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40423, "report not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to load report")
		return
	}
	if err := r.db.Model(&report).Update("status", models.ReportClosed).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to close report")
		return
	}
	report.Status = models.ReportClosed
	utils.Success(ctx, gin.H{"report": report})
}

var postModerationStatus = map[string]string{
	"hide":   models.StatusHidden,
	"unhide": models.StatusPublic,
	"delete": models.StatusDeleted,
}

// ModeratePost applies hide, unhide, or delete to a post. Moderation
// deletes are status flips so the record stays auditable; only the author
// path performs hard deletes.
func (r *ReportController) ModeratePost(ctx *gin.Context) {
	moderatorID, _ := getUserID(ctx)
	var req struct {
		Action string `json:"action" binding:"required"`
		Note   string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid request payload")
		return
	}
	status, ok := postModerationStatus[req.Action]
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40074, "action must be hide, unhide or delete")
		return
	}

	var post models.Post
	err := r.db.First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.Create(&models.ModerationAction{
			ModeratorID: moderatorID,
			Action:      req.Action,
			TargetType:  models.TargetPost,
			TargetID:    post.ID,
			Note:        utils.Sanitize(strings.TrimSpace(req.Note)),
		}).Error
	})
	if err != nil {
		r.logger.Error("moderate post", zap.Uint("post_id", post.ID), zap.String("action", req.Action), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to moderate post")
		return
	}
	utils.Success(ctx, gin.H{"post_id": post.ID, "status": status})
}

// ModerateComment applies hide, unhide, or delete to a comment. Delete
// here is a hard delete of the subtree, matching the author delete path.
func (r *ReportController) ModerateComment(ctx *gin.Context) {
	moderatorID, _ := getUserID(ctx)
	var req struct {
		Action string `json:"action" binding:"required"`
		Note   string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid request payload")
		return
	}

	var comment models.Comment
	err := r.db.First(&comment, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load comment")
		return
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		switch req.Action {
		case "hide":
			if err := tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				Update("status", models.StatusHidden).Error; err != nil {
				return err
			}
		case "unhide":
			if err := tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				Update("status", models.StatusPublic).Error; err != nil {
				return err
			}
		case "delete":
			if err := tx.Where("post_id = ? AND path LIKE ?", comment.PostID, comment.Path+"/%").
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&comment).Error; err != nil {
				return err
			}
		default:
			return models.NewValidationError("action must be hide, unhide or delete")
		}
		return tx.Create(&models.ModerationAction{
			ModeratorID: moderatorID,
			Action:      req.Action,
			TargetType:  models.TargetComment,
			TargetID:    comment.ID,
			Note:        utils.Sanitize(strings.TrimSpace(req.Note)),
		}).Error
	})
	if err != nil {
		if models.IsKind(err, models.KindValidation) {
			utils.AppError(ctx, err)
			return
		}
		r.logger.Error("moderate comment", zap.Uint("comment_id", comment.ID), zap.String("action", req.Action), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to moderate comment")
		return
	}
	utils.Success(ctx, gin.H{"comment_id": comment.ID, "action": req.Action})
}

// Dashboard returns the totals staff see on the moderation landing page.
func (r *ReportController) Dashboard(ctx *gin.Context) {
	counts := gin.H{}
	type item struct {
		key   string
		model interface{}
		where []interface{}
	}
	items := []item{
		{"posts", &models.Post{}, nil},
		{"hidden_posts", &models.Post{}, []interface{}{"status = ?", models.StatusHidden}},
		{"comments", &models.Comment{}, nil},
		{"users", &models.User{}, nil},
		{"favorites", &models.Favorite{}, nil},
		{"open_reports", &models.Report{}, []interface{}{"status = ?", models.ReportOpen}},
	}
	for _, it := range items {
		q := r.db.Model(it.model)
		if it.where != nil {
			q = q.Where(it.where[0], it.where[1:]...)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to build dashboard")
			return
		}
		counts[it.key] = n
	}
	utils.Success(ctx, counts)
}

// ActionsForTarget lists the moderation history of one target.
func (r *ReportController) ActionsForTarget(ctx *gin.Context) {
	targetType := ctx.Query("target_type")
	targetID, err := strconv.Atoi(ctx.Query("target_id"))
	if err != nil || (targetType != models.TargetPost && targetType != models.TargetComment) {
		utils.Error(ctx, http.StatusBadRequest, 40075, "target_type and numeric target_id are required")
		return
	}
	var actions []models.ModerationAction
	if err := r.db.Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").Find(&actions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50078, "failed to list moderation actions")
		return
	}
	utils.Success(ctx, gin.H{"items": actions})
}
