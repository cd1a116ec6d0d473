package model

import "time"

type Report struct {
	ID         string     `gorm:"column:id;type:text;primaryKey"`
	ReviewID   string     `gorm:"column:review_id;type:text;not null;index"`
	ReporterID string     `gorm:"column:reporter_id;type:text;not null;index"`
	Reason     string     `gorm:"column:reason;type:text;not null"`
	Details    *string    `gorm:"column:details;type:text"`
	Status     string     `gorm:"column:status;type:text;not null;index:idx_reports_status_created,priority:1"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;index:idx_reports_status_created,priority:2"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	ResolvedBy *string    `gorm:"column:resolved_by;type:text"`
}

func (Report) TableName() string {
	return "reports"
}
