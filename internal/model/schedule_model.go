package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecurringSchedule struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	ClientId     uuid.UUID      `gorm:"type:uuid;not null"`
	DocumentType string         `gorm:"type:varchar(20);not null"`
	Title        string         `gorm:"type:text;not null"`
	Items        datatypes.JSON `gorm:"type:jsonb;not null"`
	Currency     string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	TaxRate      float64        `gorm:"type:numeric(5,2);not null"`
	Frequency    string         `gorm:"type:varchar(10);not null"`
	Interval     int            `gorm:"not null;default:1"`
	AnchorDay    int            `gorm:"not null;default:1"`
	NextRun      time.Time      `gorm:"not null;index"`
	LastRun      *time.Time
	EndDate      *time.Time
	Active       bool           `gorm:"not null;default:true;index"`
	SendEmail    bool           `gorm:"not null;default:false"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (RecurringSchedule) TableName() string {
	return "recurring_schedules"
}
