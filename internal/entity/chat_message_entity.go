package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn in a conversation. Role is an explicit sender role
// ("user" or "model") rather than a nullable user reference.
type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Role          string
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
