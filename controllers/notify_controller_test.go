package controllers

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"aishare/models"
)

func notifyCount(t *testing.T, nc *NotifyController, who *identity, category string) float64 {
	t.Helper()
	w := invoke(t, nc.Counts, "GET", nil, nil, who)
	if w.Code != 200 {
		t.Fatalf("counts status = %d, body %s", w.Code, w.Body.String())
	}
	v, ok := decodeData(t, w)[category].(float64)
	if !ok {
		t.Fatalf("category %q missing from counts", category)
	}
	return v
}

func markRead(t *testing.T, nc *NotifyController, who *identity, category string) {
	t.Helper()
	w := invoke(t, nc.MarkRead, "POST", map[string]string{"category": category}, nil, who)
	if w.Code != 200 {
		t.Fatalf("mark read status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestNotifyWatermarkRoundTrip(t *testing.T) {
	db := openTestDB(t)
	nc := NewNotifyController(db, zap.NewNop())

	alice := &identity{id: 1, name: "alice", role: "user"}
	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	// A comment by someone else counts while no watermark exists.
	base := time.Now().Add(-time.Hour)
	db.Create(&models.Comment{PostID: post.ID, Comment: "nice", Author: "bob",
		Status: models.StatusPublic, CreatedAt: base})
	if got := notifyCount(t, nc, alice, models.NotifyCommentsOnMyPosts); got != 1 {
		t.Fatalf("unread comments = %v, want 1", got)
	}

	// Marking all read advances the watermark past it.
	markRead(t, nc, alice, "all")
	if got := notifyCount(t, nc, alice, models.NotifyCommentsOnMyPosts); got != 0 {
		t.Fatalf("unread comments after mark-all = %v, want 0", got)
	}

	// A later comment counts again; marking one category clears it again.
	db.Create(&models.Comment{PostID: post.ID, Comment: "still nice", Author: "bob",
		Status: models.StatusPublic, CreatedAt: time.Now().Add(time.Hour)})
	if got := notifyCount(t, nc, alice, models.NotifyCommentsOnMyPosts); got != 1 {
		t.Fatalf("unread comments after later comment = %v, want 1", got)
	}
	markRead(t, nc, alice, models.NotifyCommentsOnMyPosts)
	if got := notifyCount(t, nc, alice, models.NotifyCommentsOnMyPosts); got != 0 {
		t.Fatalf("unread comments after second mark = %v, want 0", got)
	}
}

func TestNotifyExcludesOwnActions(t *testing.T) {
	db := openTestDB(t)
	nc := NewNotifyController(db, zap.NewNop())

	alice := &identity{id: 1, name: "alice", role: "user"}
	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	db.Create(&models.Comment{PostID: post.ID, Comment: "self reply", Author: "alice", Status: models.StatusPublic})
	db.Create(&models.Favorite{UserID: 1, PostID: post.ID})

	if got := notifyCount(t, nc, alice, models.NotifyCommentsOnMyPosts); got != 0 {
		t.Fatalf("own comment counted: %v", got)
	}
	if got := notifyCount(t, nc, alice, models.NotifyFavoritesOnMyPosts); got != 0 {
		t.Fatalf("own favorite counted: %v", got)
	}

	// Another user's favorite does count.
	db.Create(&models.Favorite{UserID: 2, PostID: post.ID})
	if got := notifyCount(t, nc, alice, models.NotifyFavoritesOnMyPosts); got != 1 {
		t.Fatalf("unread favorites = %v, want 1", got)
	}
}

func TestNotifyCountsReplies(t *testing.T) {
	db := openTestDB(t)
	nc := NewNotifyController(db, zap.NewNop())

	bob := &identity{id: 2, name: "bob", role: "user"}
	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	parent := models.Comment{PostID: post.ID, Comment: "question", Author: "bob", Status: models.StatusPublic}
	db.Create(&parent)
	db.Create(&models.Comment{PostID: post.ID, Comment: "answer", Author: "carol",
		Status: models.StatusPublic, ParentID: &parent.ID, Depth: 1})

	if got := notifyCount(t, nc, bob, models.NotifyRepliesToMe); got != 1 {
		t.Fatalf("unread replies = %v, want 1", got)
	}
}
