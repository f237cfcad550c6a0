package models

import "time"

// Notification categories. Each has its own read watermark.
const (
	NotifyCommentsOnMyPosts  = "comments_on_my_posts"
	NotifyRepliesToMe        = "replies_to_me"
	NotifyFavoritesOnMyPosts = "favorites_on_my_posts"
)

// UserRead stores per-user read watermarks. A nil watermark means the user
// never marked that category read, so every matching event counts.
type UserRead struct {
	UserID             uint       `gorm:"primaryKey" json:"user_id"`
	CommentsOnMyPosts  *time.Time `json:"comments_on_my_posts"`
	RepliesToMe        *time.Time `json:"replies_to_me"`
	FavoritesOnMyPosts *time.Time `json:"favorites_on_my_posts"`
}

func (UserRead) TableName() string { return "user_reads" }
