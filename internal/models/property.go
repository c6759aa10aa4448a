package models

import (
	"time"

	"gorm.io/gorm"
)

// Property is one persisted settings value, keyed by the property name
// exposed on the command line and over IPC (e.g. "spot.size").
type Property struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"not null;uniqueIndex" json:"key"`
	Value     string         `gorm:"not null" json:"value"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
