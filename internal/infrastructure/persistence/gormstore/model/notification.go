package model

import "time"

// Notification has no uniqueness constraint: dedup is scoped to unread rows
// and served by idx_notifications_dedup.
type Notification struct {
	ID          string     `gorm:"column:id;type:text;primaryKey"`
	RecipientID string     `gorm:"column:recipient_id;type:text;not null;index:idx_notifications_dedup,priority:1;index:idx_notifications_recipient_created,priority:1"`
	ActorID     string     `gorm:"column:actor_id;type:text;not null;index:idx_notifications_dedup,priority:2"`
	Type        string     `gorm:"column:type;type:text;not null;index:idx_notifications_dedup,priority:3"`
	ReviewID    *string    `gorm:"column:review_id;type:text;index"`
	FollowID    *string    `gorm:"column:follow_id;type:text;index"`
	ReadAt      *time.Time `gorm:"column:read_at;index:idx_notifications_dedup,priority:4"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index:idx_notifications_recipient_created,priority:2"`
}

func (Notification) TableName() string {
	return "notifications"
}
