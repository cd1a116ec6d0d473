package model

import "time"

type Review struct {
	ID               string     `gorm:"column:id;type:text;primaryKey"`
	AuthorID         string     `gorm:"column:author_id;type:text;not null;index"`
	ItemID           string     `gorm:"column:item_id;type:text;not null;index"`
	Body             string     `gorm:"column:body;type:text;not null"`
	VisibilityStatus string     `gorm:"column:visibility_status;type:text;not null;index"`
	HiddenAt         *time.Time `gorm:"column:hidden_at"`
	HiddenReason     *string    `gorm:"column:hidden_reason;type:text"`
	HiddenBy         *string    `gorm:"column:hidden_by;type:text"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null"`
}

func (Review) TableName() string {
	return "reviews"
}
