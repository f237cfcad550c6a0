package models

import "time"

// Favorite marks that a user liked a post. Row existence is the boolean;
// counts come from aggregation over this table only.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
