package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Status    UserStatus
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProvider links a local user to an OAuth provider identity.
type UserProvider struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ProviderName   string
	ProviderUserId string
	AvatarURL      string
	CreatedAt      time.Time
}
