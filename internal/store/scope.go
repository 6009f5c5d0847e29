package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForSession returns a GORM scope that filters by session_id.
func ForSession(sessionID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("session_id = ?", sessionID)
	}
}

// WithStatus filters by status; no statuses means no filter.
func WithStatus(statuses ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(statuses) == 0 {
			return db
		}
		return db.Where("status IN ?", statuses)
	}
}
