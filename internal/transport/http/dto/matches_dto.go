package dto

import "time"

type MatchOtherUser struct {
	ID             string  `json:"id"`
	AnonymousName  string  `json:"anonymous_name"`
	DisplayName    *string `json:"display_name"`
	Bio            *string `json:"bio"`
	AvatarURL      *string `json:"avatar_url"`
	WhatsAppNumber *string `json:"whatsapp_number"`
	RoomNumber     *string `json:"room_number"`
}

type MatchItem struct {
	ID           string         `json:"id"`
	OtherUser    MatchOtherUser `json:"other_user"`
	MyReveal     bool           `json:"my_reveal"`
	MyRevealType string         `json:"my_reveal_type"`
	TheirReveal  bool           `json:"their_reveal"`
	CreatedAt    time.Time      `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchItem `json:"matches"`
}

type RevealRequest struct {
	MatchID    string `json:"match_id" validate:"required,uuid"`
	RevealType string `json:"reveal_type" validate:"omitempty,oneof=whatsapp room both"`
}

type RevealResponse struct {
	OK         bool   `json:"ok"`
	RevealType string `json:"reveal_type"`
}
