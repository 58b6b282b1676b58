package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByResearcher scopes a query to one researcher's rows.
type OwnedByResearcher struct {
	ResearcherID uuid.UUID
}

func (s OwnedByResearcher) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("researcher_id = ?", s.ResearcherID)
}
