package model

import (
	"time"

	"github.com/google/uuid"
)

type InviteCode struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
