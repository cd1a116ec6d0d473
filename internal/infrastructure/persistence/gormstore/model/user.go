package model

import "time"

type User struct {
	ID             string     `gorm:"column:id;type:text;primaryKey"`
	Email          string     `gorm:"column:email;type:text;not null;index"`
	IsPrivate      bool       `gorm:"column:is_private;not null;default:false"`
	SuspendedUntil *time.Time `gorm:"column:suspended_until"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null"`
}

func (User) TableName() string {
	return "users"
}
