package controllers

import (
	"testing"

	"go.uber.org/zap"

	"aishare/models"
)

func favoritePairCount(t *testing.T, fc *FavoriteController, userID, postID uint) int64 {
	t.Helper()
	var n int64
	if err := fc.db.Model(&models.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).Count(&n).Error; err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	return n
}

func TestToggleFavoriteIdempotentPair(t *testing.T) {
	db := openTestDB(t)
	fc := NewFavoriteController(db, zap.NewNop())

	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	bob := &identity{id: 2, name: "bob", role: "user"}

	w := invoke(t, fc.Toggle, "POST", nil, idParam(post.ID), bob)
	if w.Code != 200 {
		t.Fatalf("first toggle status = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["favorited"] != true || data["favorite_count"] != float64(1) {
		t.Fatalf("first toggle data = %v", data)
	}
	if n := favoritePairCount(t, fc, 2, post.ID); n != 1 {
		t.Fatalf("after first toggle pair count = %d", n)
	}

	// Second toggle removes the pair; the count derives back to zero.
	w = invoke(t, fc.Toggle, "POST", nil, idParam(post.ID), bob)
	data = decodeData(t, w)
	if data["favorited"] != false || data["favorite_count"] != float64(0) {
		t.Fatalf("second toggle data = %v", data)
	}
	if n := favoritePairCount(t, fc, 2, post.ID); n != 0 {
		t.Fatalf("after second toggle pair count = %d", n)
	}

	// Third toggle re-adds exactly one row, never two.
	w = invoke(t, fc.Toggle, "POST", nil, idParam(post.ID), bob)
	if data = decodeData(t, w); data["favorite_count"] != float64(1) {
		t.Fatalf("third toggle data = %v", data)
	}
	if n := favoritePairCount(t, fc, 2, post.ID); n != 1 {
		t.Fatalf("after third toggle pair count = %d", n)
	}
}

func TestToggleFavoriteHiddenPostNonStaff(t *testing.T) {
	db := openTestDB(t)
	fc := NewFavoriteController(db, zap.NewNop())

	post := models.Post{Title: "draft", Content: "wip", Author: "alice", Status: models.StatusHidden}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	w := invoke(t, fc.Toggle, "POST", nil, idParam(post.ID), &identity{id: 2, name: "bob", role: "user"})
	if w.Code != 404 {
		t.Fatalf("hidden post toggle status = %d, want 404", w.Code)
	}
	if n := favoritePairCount(t, fc, 2, post.ID); n != 0 {
		t.Fatalf("favorite row created for hidden post")
	}
}
