package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReportRow is the persisted form of an incident report. Collection columns
// are jsonb and may hold null, a bare string or an array of strings.
type ReportRow struct {
	ID           string         `gorm:"primaryKey;size:32" json:"id"`
	Title        string         `gorm:"not null;size:255" json:"title"`
	Type         string         `gorm:"not null;size:100" json:"type"`
	Status       string         `gorm:"not null;default:'open';size:30;index" json:"status"`
	Priority     string         `gorm:"not null;default:'medium';size:20" json:"priority"`
	Location     *string        `gorm:"size:500" json:"location"`
	LocationName *string        `gorm:"size:500" json:"location_name"`
	Date         *string        `gorm:"size:10" json:"date"`
	Time         *string        `gorm:"size:8" json:"time"`
	Officer      *string        `gorm:"size:255" json:"officer"`
	Description  *string        `gorm:"type:text" json:"description"`
	Evidence     datatypes.JSON `gorm:"type:jsonb" json:"evidence"`
	Suspects     datatypes.JSON `gorm:"type:jsonb" json:"suspects"`
	Victims      datatypes.JSON `gorm:"type:jsonb" json:"victims"`
	Damage       *string        `gorm:"type:text" json:"damage"`
	Notes        *string        `gorm:"type:text" json:"notes"`
	ReportType   string         `gorm:"size:50;default:'crime'" json:"report_type"`
	ReporterID   *string        `gorm:"size:36;index" json:"reporter_id"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (ReportRow) TableName() string {
	return "reports"
}
