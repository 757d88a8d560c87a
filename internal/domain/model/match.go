package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
)

type RevealSide struct {
	Revealed bool                `json:"revealed"`
	Channel  enums.RevealChannel `json:"channel"`
}

func HiddenSide() RevealSide {
	return RevealSide{Channel: enums.RevealChannelNone}
}

// Match keeps UserA < UserB.
type Match struct {
	ID        uuid.UUID  `json:"id"`
	UserA     uuid.UUID  `json:"user_a"`
	UserB     uuid.UUID  `json:"user_b"`
	RevealA   RevealSide `json:"reveal_a"`
	RevealB   RevealSide `json:"reveal_b"`
	CreatedAt time.Time  `json:"created_at"`
}

func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func (m Match) HasParticipant(userID uuid.UUID) bool {
	return userID != uuid.Nil && (m.UserA == userID || m.UserB == userID)
}

// Sides returns the counterparty id, the viewer's own side and the counterparty side.
func (m Match) Sides(viewerID uuid.UUID) (other uuid.UUID, mine RevealSide, theirs RevealSide, ok bool) {
	switch viewerID {
	case m.UserA:
		return m.UserB, m.RevealA, m.RevealB, true
	case m.UserB:
		return m.UserA, m.RevealB, m.RevealA, true
	default:
		return uuid.Nil, RevealSide{}, RevealSide{}, false
	}
}
