package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
