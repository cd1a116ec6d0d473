package model

import "time"

type SuspensionAppeal struct {
	ID         string     `gorm:"column:id;type:text;primaryKey"`
	UserID     string     `gorm:"column:user_id;type:text;not null;index"`
	Message    *string    `gorm:"column:message;type:text"`
	Status     string     `gorm:"column:status;type:text;not null;index:idx_appeals_status_created,priority:1"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;index:idx_appeals_status_created,priority:2"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	ResolvedBy *string    `gorm:"column:resolved_by;type:text"`
}

func (SuspensionAppeal) TableName() string {
	return "suspension_appeals"
}
