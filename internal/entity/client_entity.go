package entity

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
