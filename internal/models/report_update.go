package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportUpdateRow is one persisted history line. Report deletes do not
// cascade here; orphans are ignored on read.
type ReportUpdateRow struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID  string    `gorm:"size:32;not null;index" json:"report_id"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (ReportUpdateRow) TableName() string {
	return "report_updates"
}
