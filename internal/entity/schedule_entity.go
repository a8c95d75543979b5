package entity

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type RecurringSchedule struct {
	Id           uuid.UUID
	TenantId     uuid.UUID
	ClientId     uuid.UUID
	DocumentType string
	Title        string
	Items        []ScheduleItem
	Currency     string
	TaxRate      float64
	Frequency    string // "weekly" | "monthly" | "yearly"
	Interval     int
	AnchorDay    int // day-of-month the schedule tries to land on
	NextRun      time.Time
	LastRun      *time.Time
	EndDate      *time.Time
	Active       bool
	SendEmail    bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
