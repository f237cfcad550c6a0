package models

import "time"

// Content visibility statuses shared by posts and comments.
const (
	StatusPublic  = "public"
	StatusHidden  = "hidden"
	StatusDeleted = "deleted"
)

// Post represents a shared work. Author is the creator's username kept as a
// plain string, not a foreign key; favorite counts are always derived by
// aggregation and never stored on the row.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Genre         string    `gorm:"size:64;index" json:"genre"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Tools         string    `gorm:"type:text" json:"tools"`
	Chatlog       string    `gorm:"size:1024" json:"chatlog"`
	AIName        string    `gorm:"column:ai_name;size:128" json:"ai_name"`
	Author        string    `gorm:"size:64;not null;index" json:"author"`
	ImageURL      string    `gorm:"size:1024" json:"image_url"` // legacy single-image column
	ImageOrigURL  string    `gorm:"size:1024" json:"image_orig_url"`
	ImageThumbURL string    `gorm:"size:1024" json:"image_thumb_url"`
	Status        string    `gorm:"size:16;not null;default:'public';index" json:"status"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Tags     []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;" json:"tags,omitempty"`
}
