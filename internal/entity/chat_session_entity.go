package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is an owned conversation thread. The id is supplied by the
// client on first submission, not generated server side.
type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
