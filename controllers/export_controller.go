package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/middleware"
	"aishare/models"
	"aishare/search"
	"aishare/utils"
)

// csvHeader is the fixed column order of the CSV export.
var csvHeader = []string{
	"id", "genre", "title", "content", "tools", "chatlog", "ai_name",
	"author", "card_image_url", "favorite_count", "created_at", "updated_at",
}

// ExportController serves CSV, JSON and per-post PDF exports. All listing
// exports run through the same filter builder and sort mapping as the
// interactive listing, so the result sets are always identical.
type ExportController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewExportController(db *gorm.DB, logger *zap.Logger) *ExportController {
	return &ExportController{db: db, logger: logger}
}

// exportRows fetches every row matching the request's filter, in the
// requested order, without pagination.
func (e *ExportController) exportRows(ctx *gin.Context) ([]models.PostRow, error) {
	f := filterFromQuery(ctx)
	built := f.Build()

	columns := postColumns
	params := built.Params
	if built.HasRank() {
		columns += ", " + built.RankExpr
		params = append([]interface{}{f.Keyword}, params...)
	}
	sql := fmt.Sprintf("SELECT %s FROM posts p %s %s ORDER BY %s",
		columns, favoriteJoin, built.Where,
		search.OrderBy(search.ParseSort(ctx.Query("sort")), built.HasRank()))

	var rows []models.PostRow
	err := e.db.Raw(sql, params...).Scan(&rows).Error
	return rows, err
}

// csvRecord flattens one row into the csvHeader column order.
func csvRecord(r models.PostRow) []string {
	updated := ""
	if r.UpdatedAt != nil {
		updated = r.UpdatedAt.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Genre,
		r.Title,
		r.Content,
		r.Tools,
		r.Chatlog,
		r.AIName,
		r.Author,
		r.CardImageURL(),
		strconv.FormatInt(r.FavoriteCount, 10),
		r.CreatedAt.Format(time.RFC3339),
		updated,
	}
}

// CSV streams the filtered posts as a CSV attachment.
func (e *ExportController) CSV(ctx *gin.Context) {
	rows, err := e.exportRows(ctx)
	if err != nil {
		e.logger.Error("export csv", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export posts")
		return
	}

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="posts_%s.csv"`, time.Now().Format("20060102_150405")))
	ctx.Status(http.StatusOK)

	w := csv.NewWriter(ctx.Writer)
	if err := w.Write(csvHeader); err != nil {
		return
	}
	for _, r := range rows {
		if err := w.Write(csvRecord(r)); err != nil {
			return
		}
	}
	w.Flush()
}

// JSON returns the filtered posts in the standard envelope.
func (e *ExportController) JSON(ctx *gin.Context) {
	rows, err := e.exportRows(ctx)
	if err != nil {
		e.logger.Error("export json", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export posts")
		return
	}
	utils.Success(ctx, gin.H{"items": postCards(rows), "count": len(rows)})
}

// PDF renders one post as a downloadable PDF document.
func (e *ExportController) PDF(ctx *gin.Context) {
	var post models.Post
	err := e.db.Preload("Tags").First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}
	if post.Status != models.StatusPublic && !middleware.IsStaffRequest(ctx) && post.Author != currentUsername(ctx) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(post.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, post.Title, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	meta := fmt.Sprintf("by %s on %s", post.Author, post.CreatedAt.Format("2006-01-02"))
	if post.Genre != "" {
		meta += "  |  genre: " + post.Genre
	}
	if post.AIName != "" {
		meta += "  |  ai: " + post.AIName
	}
	if post.Tools != "" {
		meta += "  |  tools: " + post.Tools
	}
	pdf.MultiCell(0, 5, meta, "", "L", false)
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, post.Content, "", "L", false)

	if post.Chatlog != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Chat log", "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", 9)
		pdf.MultiCell(0, 5, post.Chatlog, "", "L", false)
	}

	ctx.Header("Content-Type", "application/pdf")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="post_%d.pdf"`, post.ID))
	ctx.Status(http.StatusOK)
	if err := pdf.Output(ctx.Writer); err != nil {
		e.logger.Error("export pdf", zap.Uint("post_id", post.ID), zap.Error(err))
	}
}
