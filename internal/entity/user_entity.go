package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	FullName  string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
