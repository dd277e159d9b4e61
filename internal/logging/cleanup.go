package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retention. A non-positive retention disables cleanup.
func StartCleanup(db *gorm.DB, retention time.Duration, done chan struct{}) {
	if retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := PruneLogs(db, time.Now().Add(-retention)); err != nil {
					slog.Error("log cleanup failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}()
}

// PruneLogs deletes log rows older than cutoff and returns how many went.
func PruneLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
