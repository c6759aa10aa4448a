package database

import (
	"time"

	"github.com/spotbeam/spotbeam/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles all database operations for properties and error logs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SetProperty inserts or updates a persisted property value
func (r *Repository) SetProperty(key, value string) error {
	prop := models.Property{Key: key, Value: value}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&prop)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to store property %s", key)
	}
	return nil
}

// GetProperty retrieves a persisted property value.
// Returns found=false when the property has never been stored.
func (r *Repository) GetProperty(key string) (value string, found bool, err error) {
	var prop models.Property
	result := r.db.Where("key = ?", key).First(&prop)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, errors.Wrapf(result.Error, "failed to get property %s", key)
	}
	return prop.Value, true, nil
}

// ListProperties returns all persisted properties ordered by key
func (r *Repository) ListProperties() ([]models.Property, error) {
	var props []models.Property
	result := r.db.Order("key ASC").Find(&props)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list properties")
	}
	return props, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorLogsSince retrieves error logs recorded at or after a given time
func (r *Repository) GetErrorLogsSince(since time.Time) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// PruneErrorLogs deletes error logs older than a specified date (soft delete)
func (r *Repository) PruneErrorLogs(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to prune error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all persisted properties, resetting settings to defaults
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM properties")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear properties")
	}
	return nil
}
