package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aishare/middleware"
	"aishare/models"
)

// openTestDB builds a fresh in-memory sqlite store with the full schema.
// One connection only, so every query sees the same memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("acquire sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Tag{},
		&models.PostTag{},
		&models.Favorite{},
		&models.Report{},
		&models.ModerationAction{},
		&models.UserRead{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// identity is the authenticated principal a test request runs as.
type identity struct {
	id   uint
	name string
	role string
}

// invoke runs one handler with an optional JSON body, URL params and
// identity, and returns the recorded response.
func invoke(t *testing.T, handler gin.HandlerFunc, method string, body interface{}, params gin.Params, who *identity) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		ctx.Request = httptest.NewRequest(method, "/", bytes.NewReader(b))
		ctx.Request.Header.Set("Content-Type", "application/json")
	} else {
		ctx.Request = httptest.NewRequest(method, "/", nil)
	}
	ctx.Params = params
	if who != nil {
		ctx.Set(middleware.ContextUserIDKey, who.id)
		ctx.Set(middleware.ContextUsernameKey, who.name)
		ctx.Set(middleware.ContextRoleKey, who.role)
	}

	handler(ctx)
	return w
}

func idParam(id uint) gin.Params {
	return gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
}

// decodeData unwraps the data field of the response envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}
