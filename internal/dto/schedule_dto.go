package dto

import "time"

type ScheduleItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type CreateScheduleRequest struct {
	ClientName   string                `json:"client_name" validate:"required"`
	DocumentType string                `json:"document_type" validate:"required,oneof=quote invoice"`
	Title        string                `json:"title" validate:"required"`
	Items        []ScheduleItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency     string                `json:"currency,omitempty"`
	TaxRate      *float64              `json:"tax_rate,omitempty"`
	Frequency    string                `json:"frequency" validate:"required,oneof=weekly monthly yearly"`
	Interval     int                   `json:"interval,omitempty"`
	StartDate    time.Time             `json:"start_date" validate:"required"`
	EndDate      *time.Time            `json:"end_date,omitempty"`
	SendEmail    bool                  `json:"send_email,omitempty"`
}

type ScheduleResponse struct {
	Id           string     `json:"id"`
	ClientName   string     `json:"client_name"`
	DocumentType string     `json:"document_type"`
	Title        string     `json:"title"`
	Frequency    string     `json:"frequency"`
	Interval     int        `json:"interval"`
	NextRun      time.Time  `json:"next_run"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Active       bool       `json:"active"`
}
