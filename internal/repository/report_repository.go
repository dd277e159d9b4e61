// Package repository is the PostgreSQL-backed remote store for reports,
// their history rows and seeded accounts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ListReports returns every report row, newest first.
func (r *ReportRepository) ListReports(ctx context.Context) ([]models.ReportRow, error) {
	var rows []models.ReportRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return rows, nil
}

// ListUpdates returns the history rows of the given reports in
// chronological order.
func (r *ReportRepository) ListUpdates(ctx context.Context, reportIDs []string) ([]models.ReportUpdateRow, error) {
	if len(reportIDs) == 0 {
		return []models.ReportUpdateRow{}, nil
	}
	var rows []models.ReportUpdateRow
	err := r.db.WithContext(ctx).
		Where("report_id IN ?", reportIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list report updates: %w", err)
	}
	return rows, nil
}

// GetReport returns nil without error when the id is unknown.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (*models.ReportRow, error) {
	var row models.ReportRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &row, nil
}

func (r *ReportRepository) InsertReport(ctx context.Context, row *models.ReportRow) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) InsertUpdate(ctx context.Context, row *models.ReportUpdateRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert report update: %w", err)
	}
	return nil
}

// ReplaceUpdates swaps the whole history of a report in one transaction.
func (r *ReportRepository) ReplaceUpdates(ctx context.Context, reportID string, rows []models.ReportUpdateRow) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportUpdateRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ReportID = reportID
			if rows[i].ID == uuid.Nil {
				rows[i].ID = uuid.New()
			}
			if rows[i].CreatedAt.IsZero() {
				rows[i].CreatedAt = time.Now().UTC()
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace report updates: %w", err)
	}
	return nil
}

// UpdateReport writes only the given columns and returns the fresh row.
// An empty column set is a plain read. Unknown ids yield nil without error.
func (r *ReportRepository) UpdateReport(ctx context.Context, id string, fields map[string]interface{}) (*models.ReportRow, error) {
	if len(fields) == 0 {
		return r.GetReport(ctx, id)
	}

	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.ReportRow{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetReport(ctx, id)
}

// DeleteReport reports whether a row was removed.
func (r *ReportRepository) DeleteReport(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ReportRow{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete report: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpsertUser inserts the account or refreshes its profile columns when the
// email already exists. It reports whether a new row was created.
func (r *ReportRepository) UpsertUser(ctx context.Context, user *models.User) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing models.User
	err := db.Where("email = ?", user.Email).First(&existing).Error
	switch {
	case err == nil:
		user.ID = existing.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
	default:
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "role", "password_hash", "is_active", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}
	return existing.ID == uuid.Nil, nil
}

func (r *ReportRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
