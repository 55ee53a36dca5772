// Package db provides database utilities including transaction management and query scopes.
package db

import (
	"gorm.io/gorm"
)

// NotDeleted filters out logically deleted rows (is_deleted = true).
// Lifecycle filtering is never implicit: repositories add this scope, or
// WithDeleted, explicitly on every query.
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false)
	}
}

// WithDeleted filters rows by an explicit lifecycle state.
func WithDeleted(deleted bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", deleted)
	}
}
