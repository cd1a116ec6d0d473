package model

import "time"

// ModerationStrike is unique per review; a strike is active while RevokedAt is nil.
type ModerationStrike struct {
	ID        string     `gorm:"column:id;type:text;primaryKey"`
	ReviewID  string     `gorm:"column:review_id;type:text;not null;uniqueIndex"`
	UserID    string     `gorm:"column:user_id;type:text;not null;index:idx_strikes_user_revoked,priority:1"`
	IssuedBy  string     `gorm:"column:issued_by;type:text;not null"`
	RevokedAt *time.Time `gorm:"column:revoked_at;index:idx_strikes_user_revoked,priority:2"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (ModerationStrike) TableName() string {
	return "moderation_strikes"
}
