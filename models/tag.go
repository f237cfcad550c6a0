package models

// Tag is a curated label attachable to posts.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;uniqueIndex;not null" json:"name"`
}

// PostTag is the explicit join row between posts and tags. Declaring it lets
// the schema carry the composite primary key and cascades.
type PostTag struct {
	PostID uint `gorm:"primaryKey" json:"post_id"`
	TagID  uint `gorm:"primaryKey" json:"tag_id"`
}

func (PostTag) TableName() string { return "post_tags" }
