package models

import (
	"fmt"
	"strings"
	"time"
)

// Comment is one node of a post's reply tree. Path is a materialized path of
// zero-padded ids ("000042/000043"); sorting a post's comments by (path,
// created_at) yields a pre-order traversal without recursive queries. Path is
// immutable once set.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_path,priority:1" json:"post_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Author    string    `gorm:"size:64;not null" json:"author"`
	CreatedAt time.Time `json:"created_at"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Depth     int       `gorm:"not null;default:0" json:"depth"`
	Path      string    `gorm:"size:512;index:idx_comments_post_path,priority:2" json:"path"`
	Status    string    `gorm:"size:16;not null;default:'public'" json:"status"`

	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;" json:"-"`
}

// pathSegWidth is the fixed width of one path segment. Six digits keep
// lexicographic and numeric order identical for ids below 1,000,000.
const pathSegWidth = 6

// RootPath returns the materialized path for a root comment.
func RootPath(id uint) string {
	return fmt.Sprintf("%0*d", pathSegWidth, id)
}

// ChildPath appends id to a parent's path. An empty parent path (legacy rows
// that never got one) degrades to a root path.
func ChildPath(parentPath string, id uint) string {
	if parentPath == "" {
		return RootPath(id)
	}
	return parentPath + "/" + RootPath(id)
}

// PathDepth derives the depth encoded in a path: segment count minus one.
func PathDepth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, "/")
}
