package dto

import "time"

type SendMessageRequest struct {
	MatchID  string `json:"match_id" validate:"required,uuid"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type MessageItem struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Messages []MessageItem `json:"messages"`
}

type MessageResponse struct {
	Message MessageItem `json:"message"`
}

type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
	FileName string `json:"file_name"`
}

type NotificationsResponse struct {
	PendingRequests int64 `json:"pending_requests"`
	UnreadMessages  int64 `json:"unread_messages"`
	NewMatches      int64 `json:"new_matches"`
}
