package model

import "time"

// Follow is a directed edge; the (follower_id, following_id) pair is unique.
type Follow struct {
	ID          string    `gorm:"column:id;type:text;primaryKey"`
	FollowerID  string    `gorm:"column:follower_id;type:text;not null;uniqueIndex:idx_follows_pair,priority:1"`
	FollowingID string    `gorm:"column:following_id;type:text;not null;uniqueIndex:idx_follows_pair,priority:2;index:idx_follows_following_status,priority:1"`
	Status      string    `gorm:"column:status;type:text;not null;index:idx_follows_following_status,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (Follow) TableName() string {
	return "follows"
}
