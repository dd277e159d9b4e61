package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog keeps ERROR+ records queryable next to the report data.
type SystemLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	Level        string         `gorm:"size:10;not null;index" json:"level"`
	Message      string         `gorm:"type:text" json:"message"`
	RequestID    string         `gorm:"size:64;index" json:"request_id"`
	ReportID     *string        `gorm:"size:32;index" json:"report_id"`
	SubscriberID *uint64        `json:"subscriber_id"`
	Action       string         `gorm:"size:100" json:"action"`
	Source       string         `gorm:"size:20" json:"source"`
	Error        string         `gorm:"type:text" json:"error"`
	Extra        datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt    time.Time      `json:"created_at"`
}
