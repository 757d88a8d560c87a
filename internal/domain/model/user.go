package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
)

// User fields use the zero value for "not set".
type User struct {
	ID           uuid.UUID    `json:"id"`
	InviteCodeID uuid.UUID    `json:"invite_code_id"`
	Handle       string       `json:"anonymous_name"`
	DisplayName  string       `json:"display_name"`
	Bio          string       `json:"bio"`
	Gender       enums.Gender `json:"gender"`
	AvatarURL    string       `json:"avatar_url"`
	WhatsApp     string       `json:"whatsapp_number"`
	Room         string       `json:"room_number"`
	Hobbies      []string     `json:"hobbies"`
	CreatedAt    time.Time    `json:"created_at"`
}
