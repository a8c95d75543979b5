package specification

import "gorm.io/gorm"

// ByNameExact matches a client name case-insensitively.
type ByNameExact struct {
	Name string
}

func (s ByNameExact) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) = LOWER(?)", s.Name)
}

// NameLike matches client names containing the fragment, case-insensitively.
type NameLike struct {
	Fragment string
}

func (s NameLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Fragment+"%")
}
