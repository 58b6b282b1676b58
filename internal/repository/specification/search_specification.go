package specification

import "gorm.io/gorm"

// SessionSearchQuery filters research sessions by title or question.
// ILIKE keeps it case-insensitive on Postgres.
type SessionSearchQuery struct {
	Query string
}

func (s SessionSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR question ILIKE ?", pattern, pattern)
}
