package specification

import (
	"time"

	"gorm.io/gorm"
)

// ActiveOnly keeps schedules that are still running.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

// DueBefore keeps schedules whose next run is at or before the given instant.
type DueBefore struct {
	At time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_run <= ?", s.At)
}
