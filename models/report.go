package models

import "time"

// Report target types and statuses.
const (
	TargetPost    = "post"
	TargetComment = "comment"

	ReportOpen   = "open"
	ReportClosed = "closed"
)

// Report is a user flag against a post or comment. The unique index keeps at
// most one report per reporter per target.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TargetType string    `gorm:"size:16;not null;uniqueIndex:idx_report_target_reporter" json:"target_type"`
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_report_target_reporter" json:"target_id"`
	ReporterID uint      `gorm:"not null;uniqueIndex:idx_report_target_reporter" json:"reporter_id"`
	Reason     string    `gorm:"size:500" json:"reason"`
	Status     string    `gorm:"size:16;not null;default:'open';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ModerationAction is an audit row written for every staff intervention.
type ModerationAction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModeratorID uint      `gorm:"not null" json:"moderator_id"`
	Action      string    `gorm:"size:32;not null" json:"action"`
	TargetType  string    `gorm:"size:16;not null;index:idx_modact_target" json:"target_type"`
	TargetID    uint      `gorm:"not null;index:idx_modact_target" json:"target_id"`
	Note        string    `gorm:"size:500" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}
