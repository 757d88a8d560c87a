package dto

import "time"

type SendRequestRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
}

type SendRequestResponse struct {
	OK          bool    `json:"ok"`
	Matched     bool    `json:"matched"`
	Reactivated bool    `json:"reactivated"`
	RequestID   string  `json:"request_id"`
	MatchID     *string `json:"match_id,omitempty"`
}

type RequestCounterpart struct {
	ID            string  `json:"id"`
	AnonymousName string  `json:"anonymous_name"`
	Bio           *string `json:"bio"`
}

type RequestItem struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	User      RequestCounterpart `json:"user"`
}

type RequestsResponse struct {
	Sent     []RequestItem `json:"sent"`
	Received []RequestItem `json:"received"`
}

type CancelRequestResponse struct {
	OK        bool `json:"ok"`
	Cancelled bool `json:"cancelled"`
}
