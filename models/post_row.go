package models

import "time"

// PostRow is one listing/export row: post columns plus the aggregated
// favorite count and, when a keyword search ran, the relevance rank. Rows are
// scanned by column name into named fields; presentation code must never
// depend on column position (earlier positional decoding drifted whenever a
// column was added).
type PostRow struct {
	ID            uint       `gorm:"column:id" json:"id"`
	Genre         string     `gorm:"column:genre" json:"genre"`
	Title         string     `gorm:"column:title" json:"title"`
	Content       string     `gorm:"column:content" json:"content"`
	Tools         string     `gorm:"column:tools" json:"tools"`
	Chatlog       string     `gorm:"column:chatlog" json:"chatlog"`
	AIName        string     `gorm:"column:ai_name" json:"ai_name"`
	Author        string     `gorm:"column:author" json:"author"`
	ImageURL      string     `gorm:"column:image_url" json:"image_url"`
	ImageOrigURL  string     `gorm:"column:image_orig_url" json:"image_orig_url"`
	ImageThumbURL string     `gorm:"column:image_thumb_url" json:"image_thumb_url"`
	Status        string     `gorm:"column:status" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`
	FavoriteCount int64      `gorm:"column:favorite_count" json:"favorite_count"`
	Rank          *float64   `gorm:"column:rank" json:"rank,omitempty"`
}

// CardImageURL picks the listing-card image: thumbnail, else the uploaded
// original, else the legacy single-image column. First non-empty wins.
func (r *PostRow) CardImageURL() string {
	for _, u := range []string{r.ImageThumbURL, r.ImageOrigURL, r.ImageURL} {
		if u != "" {
			return u
		}
	}
	return ""
}
