package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
)

type Request struct {
	ID         uuid.UUID           `json:"id"`
	SenderID   uuid.UUID           `json:"sender_id"`
	ReceiverID uuid.UUID           `json:"receiver_id"`
	Status     enums.RequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
