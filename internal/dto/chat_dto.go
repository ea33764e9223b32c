package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest carries one user submission. ChatSessionId is the
// client-generated session identifier; on a fresh id the session is created
// lazily. Model is passed through to the inference backend, which does its
// own validation of it.
type SendMessageRequest struct {
	ChatSessionId string `json:"chat_session_id" validate:"required"`
	Message       string `json:"message" validate:"required"`
	Model         string `json:"model"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	ChatSessionId    uuid.UUID            `json:"chat_session_id"`
	ChatSessionTitle string               `json:"title"`
	Sent             *ChatMessageResponse `json:"sent"`
	Reply            *ChatMessageResponse `json:"reply"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
