package controllers

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"aishare/middleware"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", url, nil)
	return ctx
}

func TestFilterFromQuery(t *testing.T) {
	ctx := testContext(t, "/api/v1/posts?q=robot&genre=art&tags=2,5")
	f := filterFromQuery(ctx)

	if f.Keyword != "robot" || f.Genre != "art" {
		t.Fatalf("filter = %+v", f)
	}
	if !reflect.DeepEqual(f.TagIDs, []int{2, 5}) {
		t.Fatalf("tag ids = %v", f.TagIDs)
	}
	if f.IncludeNonPublic {
		t.Fatal("anonymous request must not see non-public content")
	}
}

func TestFilterFromQueryIgnoresVisibilityParams(t *testing.T) {
	// Visibility is a role capability; request input never grants it.
	ctx := testContext(t, "/api/v1/posts?include_non_public=true&status=hidden")
	if f := filterFromQuery(ctx); f.IncludeNonPublic {
		t.Fatal("query parameters granted non-public visibility")
	}
}

func TestFilterFromQueryStaffRole(t *testing.T) {
	ctx := testContext(t, "/api/v1/posts")
	ctx.Set(middleware.ContextRoleKey, "moderator")
	if f := filterFromQuery(ctx); !f.IncludeNonPublic {
		t.Fatal("moderator should see non-public content")
	}

	ctx = testContext(t, "/api/v1/posts")
	ctx.Set(middleware.ContextRoleKey, "user")
	if f := filterFromQuery(ctx); f.IncludeNonPublic {
		t.Fatal("plain users must not see non-public content")
	}
}
