package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/middleware"
	"aishare/models"
	"aishare/search"
	"aishare/storage"
	"aishare/thumbnail"
	"aishare/utils"
)

const postColumns = `p.id, p.genre, p.title, p.content, p.tools, p.chatlog, p.ai_name, p.author,
	p.image_url, p.image_orig_url, p.image_thumb_url, p.status, p.created_at, p.updated_at,
	COALESCE(f.favorite_count, 0) AS favorite_count`

const favoriteJoin = `LEFT JOIN (
	SELECT post_id, COUNT(*) AS favorite_count FROM favorites GROUP BY post_id
) f ON f.post_id = p.id`

// PostController manages post CRUD, the ranked listing, and image uploads.
type PostController struct {
	db      *gorm.DB
	store   *storage.Store
	thumbs  *thumbnail.Worker
	logger  *zap.Logger
	perPage int
	maxMB   int
}

func NewPostController(db *gorm.DB, store *storage.Store, thumbs *thumbnail.Worker, logger *zap.Logger, perPage, maxUploadMB int) *PostController {
	return &PostController{db: db, store: store, thumbs: thumbs, logger: logger, perPage: perPage, maxMB: maxUploadMB}
}

// filterFromQuery assembles the shared search filter for the current
// request. Hidden content visibility comes from the authenticated role,
// never from request input.
func filterFromQuery(ctx *gin.Context) search.Filter {
	return search.Filter{
		Keyword:          strings.TrimSpace(ctx.Query("q")),
		Genre:            strings.TrimSpace(ctx.Query("genre")),
		TagIDs:           search.ParseTagIDs(ctx.Query("tags")),
		IncludeNonPublic: middleware.IsStaffRequest(ctx),
	}
}

// queryPosts runs the counted, ranked, paginated listing query and returns
// the page rows plus pagination metadata.
func queryPosts(db *gorm.DB, f search.Filter, sort string, page, pageSize int) ([]models.PostRow, search.Page, error) {
	built := f.Build()

	var total int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM posts p %s", built.Where)
	if err := db.Raw(countSQL, built.Params...).Scan(&total).Error; err != nil {
		return nil, search.Page{}, fmt.Errorf("count posts: %w", err)
	}

	pg := search.Paginate(page, pageSize, total)

	columns := postColumns
	params := built.Params
	if built.HasRank() {
		columns += ", " + built.RankExpr
		// The rank expression binds before the WHERE clause placeholders.
		params = append([]interface{}{f.Keyword}, params...)
	}

	pageSQL := fmt.Sprintf(`SELECT %s FROM posts p %s %s ORDER BY %s LIMIT ? OFFSET ?`,
		columns, favoriteJoin, built.Where, search.OrderBy(sort, built.HasRank()))
	params = append(params, pg.PageSize, pg.Offset)

	var rows []models.PostRow
	if err := db.Raw(pageSQL, params...).Scan(&rows).Error; err != nil {
		return nil, search.Page{}, fmt.Errorf("fetch posts page: %w", err)
	}
	return rows, pg, nil
}

// List returns the filtered, sorted post listing plus facet metadata.
func (p *PostController) List(ctx *gin.Context) {
	f := filterFromQuery(ctx)
	sort := search.ParseSort(ctx.Query("sort"))
	page := parsePage(ctx.Query("page"))

	rows, pg, err := queryPosts(p.db, f, sort, page, p.perPage)
	if err != nil {
		p.logger.Error("list posts", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	genres, err := p.listGenres(f.IncludeNonPublic)
	if err != nil {
		p.logger.Error("list genres", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list genres")
		return
	}
	tags, err := p.listTagCounts(f)
	if err != nil {
		p.logger.Error("list tag counts", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list tags")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      postCards(rows),
		"pagination": pg,
		"genres":     genres,
		"tags":       tags,
	})
}

// ListByAuthor returns one user's visible posts, newest first.
func (p *PostController) ListByAuthor(ctx *gin.Context) {
	author := strings.TrimSpace(ctx.Param("username"))
	if author == "" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "missing username")
		return
	}
	page := parsePage(ctx.Query("page"))

	staff := middleware.IsStaffRequest(ctx)
	where := "WHERE p.author = ? AND p.status = 'public'"
	params := []interface{}{author}
	if staff || author == currentUsername(ctx) {
		where = "WHERE p.author = ? AND p.status <> 'deleted'"
	}

	var total int64
	if err := p.db.Raw("SELECT COUNT(*) FROM posts p "+where, params...).Scan(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to count posts")
		return
	}
	pg := search.Paginate(page, p.perPage, total)

	var rows []models.PostRow
	sql := fmt.Sprintf("SELECT %s FROM posts p %s %s ORDER BY p.created_at DESC LIMIT ? OFFSET ?",
		postColumns, favoriteJoin, where)
	if err := p.db.Raw(sql, append(params, pg.PageSize, pg.Offset)...).Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to fetch posts")
		return
	}
	utils.Success(ctx, gin.H{"items": postCards(rows), "pagination": pg})
}

type tagCount struct {
	ID        uint   `json:"id" gorm:"column:id"`
	Name      string `json:"name" gorm:"column:name"`
	PostCount int64  `json:"post_count" gorm:"column:post_count"`
}

func (p *PostController) listGenres(includeNonPublic bool) ([]string, error) {
	sql := `SELECT DISTINCT genre FROM posts WHERE status = 'public' AND genre <> '' ORDER BY genre`
	if includeNonPublic {
		sql = `SELECT DISTINCT genre FROM posts WHERE genre <> '' ORDER BY genre`
	}
	var genres []string
	err := p.db.Raw(sql).Scan(&genres).Error
	return genres, err
}

// listTagCounts counts tags over the posts matching the base filter with the
// tag facet removed, so each count says how many results selecting that tag
// would leave.
func (p *PostController) listTagCounts(f search.Filter) ([]tagCount, error) {
	f.TagIDs = nil
	built := f.Build()

	var tags []tagCount
	err := p.db.Raw(fmt.Sprintf(`SELECT t.id, t.name, COUNT(pt.post_id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		JOIN posts p ON p.id = pt.post_id
		%s
		GROUP BY t.id, t.name
		ORDER BY t.name`, built.Where), built.Params...).Scan(&tags).Error
	return tags, err
}

// ListTags returns every tag with its public post count.
func (p *PostController) ListTags(ctx *gin.Context) {
	tags, err := p.listTagCounts(search.Filter{})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list tags")
		return
	}
	utils.Success(ctx, gin.H{"items": tags})
}

func postCards(rows []models.PostRow) []gin.H {
	cards := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, gin.H{
			"id":             r.ID,
			"genre":          r.Genre,
			"title":          r.Title,
			"content":        r.Content,
			"tools":          r.Tools,
			"ai_name":        r.AIName,
			"author":         r.Author,
			"card_image_url": r.CardImageURL(),
			"status":         r.Status,
			"favorite_count": r.FavoriteCount,
			"created_at":     r.CreatedAt,
			"updated_at":     r.UpdatedAt,
		})
	}
	return cards
}

// Detail returns a post with its ordered comment thread, tags, favorite
// count and the viewer's favorite flag. Hidden and deleted posts 404 for
// everyone except staff and the author.
func (p *PostController) Detail(ctx *gin.Context) {
	var post models.Post
	err := p.db.Preload("Tags").First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	staff := middleware.IsStaffRequest(ctx)
	if post.Status != models.StatusPublic && !staff && post.Author != currentUsername(ctx) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}

	comments := p.db.Where("post_id = ?", post.ID)
	if !staff {
		comments = comments.Where("status = ?", models.StatusPublic)
	}
	var thread []models.Comment
	if err := comments.Order("COALESCE(path, ''), created_at ASC").Find(&thread).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load comments")
		return
	}

	var favoriteCount int64
	if err := p.db.Model(&models.Favorite{}).Where("post_id = ?", post.ID).Count(&favoriteCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to count favorites")
		return
	}

	isFavorited := false
	if userID, ok := getUserID(ctx); ok {
		var n int64
		p.db.Model(&models.Favorite{}).Where("user_id = ? AND post_id = ?", userID, post.ID).Count(&n)
		isFavorited = n > 0
	}

	utils.Success(ctx, gin.H{
		"post":           post,
		"comments":       thread,
		"favorite_count": favoriteCount,
		"is_favorited":   isFavorited,
	})
}

type postForm struct {
	Genre   string
	Title   string
	Content string
	Tools   string
	Chatlog string
	AIName  string
	Tags    []string
}

func bindPostForm(ctx *gin.Context) (postForm, error) {
	form := postForm{
		Genre:   strings.TrimSpace(ctx.PostForm("genre")),
		Title:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("title"))),
		Content: utils.Sanitize(ctx.PostForm("content")),
		Tools:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("tools"))),
		Chatlog: utils.Sanitize(ctx.PostForm("chatlog")),
		AIName:  utils.Sanitize(strings.TrimSpace(ctx.PostForm("ai_name"))),
		Tags:    splitTags(ctx.PostForm("tags")),
	}
	if form.Title == "" {
		return form, models.NewValidationError("title cannot be empty")
	}
	if form.Content == "" {
		return form, models.NewValidationError("content cannot be empty")
	}
	return form, nil
}

// handleImageUpload validates and stores an attached image and queues the
// thumbnail job. A missing file returns ("", ""). Any failure comes back
// as a warning string; it never blocks the post write.
func (p *PostController) handleImageUpload(ctx *gin.Context, postID uint) (origURL, warning string) {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return "", ""
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", "image could not be read"
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, int64(p.maxMB)<<20+1))
	if err != nil {
		return "", "image could not be read"
	}

	ext, err := storage.ValidateImage(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, int64(p.maxMB)<<20)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return "", appErr.Message
		}
		return "", "image validation failed"
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("orig_%s%s", uuid.NewString(), ext)
	url, err := p.store.UploadBytes(ctx.Request.Context(), key, data, contentType)
	if err != nil {
		p.logger.Error("upload image", zap.Uint("post_id", postID), zap.Error(err))
		return "", "image upload failed, post saved without image"
	}

	p.thumbs.Enqueue(ctx.Request.Context(), thumbnail.Job{PostID: postID, OrigURL: url})
	return url, ""
}

// Create stores a new post with its tags and optional image.
func (p *PostController) Create(ctx *gin.Context) {
	form, err := bindPostForm(ctx)
	if err != nil {
		utils.AppError(ctx, err)
		return
	}
	author := currentUsername(ctx)
	if author == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	post := models.Post{
		Genre:   form.Genre,
		Title:   form.Title,
		Content: form.Content,
		Tools:   form.Tools,
		Chatlog: form.Chatlog,
		AIName:  form.AIName,
		Author:  author,
		Status:  models.StatusPublic,
	}
	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return replaceTags(tx, post.ID, form.Tags)
	})
	if err != nil {
		p.logger.Error("create post", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to create post")
		return
	}

	origURL, warning := p.handleImageUpload(ctx, post.ID)
	if origURL != "" {
		if err := p.db.Model(&post).Update("image_orig_url", origURL).Error; err != nil {
			warning = "image stored but could not be linked to the post"
		} else {
			post.ImageOrigURL = origURL
		}
	}
	if err := p.db.Preload("Tags").First(&post, post.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to reload post")
		return
	}

	payload := gin.H{"post": post}
	if warning != "" {
		payload["warning"] = warning
	}
	utils.Success(ctx, payload)
}

// Update edits a post's fields, replaces its tags, and optionally attaches
// a new image. Only the author or an admin may update.
func (p *PostController) Update(ctx *gin.Context) {
	var post models.Post
	err := p.db.First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}
	if post.Author != currentUsername(ctx) && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "only the author or an admin can edit this post")
		return
	}

	form, err := bindPostForm(ctx)
	if err != nil {
		utils.AppError(ctx, err)
		return
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"genre":      form.Genre,
			"title":      form.Title,
			"content":    form.Content,
			"tools":      form.Tools,
			"chatlog":    form.Chatlog,
			"ai_name":    form.AIName,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return err
		}
		return replaceTags(tx, post.ID, form.Tags)
	})
	if err != nil {
		p.logger.Error("update post", zap.Uint("post_id", post.ID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to update post")
		return
	}

	origURL, warning := p.handleImageUpload(ctx, post.ID)
	if origURL != "" {
		if err := p.db.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("image_orig_url", origURL).Error; err != nil {
			warning = "image stored but could not be linked to the post"
		}
	}

	if err := p.db.Preload("Tags").First(&post, post.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to reload post")
		return
	}
	payload := gin.H{"post": post}
	if warning != "" {
		payload["warning"] = warning
	}
	utils.Success(ctx, payload)
}

// Delete removes a post and its dependents. Only the author or an admin.
func (p *PostController) Delete(ctx *gin.Context) {
	var post models.Post
	err := p.db.First(&post, "id = ?", ctx.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}
	if post.Author != currentUsername(ctx) && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40331, "only the author or an admin can delete this post")
		return
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		p.logger.Error("delete post", zap.Uint("post_id", post.ID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete post")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}

// replaceTags swaps a post's tag links for the given names, creating tags
// on first use. Delete then insert keeps the unique pair constraint happy.
func replaceTags(tx *gorm.DB, postID uint, names []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.PostTag{PostID: postID, TagID: tag.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}
