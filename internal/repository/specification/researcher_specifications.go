package specification

import "gorm.io/gorm"

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByOrcid struct {
	OrcidID string
}

func (s ByOrcid) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("orcid_id = ?", s.OrcidID)
}
