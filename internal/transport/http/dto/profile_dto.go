package dto

import "time"

type ProfileUpdateRequest struct {
	AnonymousName  string   `json:"anonymous_name" validate:"required"`
	DisplayName    string   `json:"display_name"`
	Bio            string   `json:"bio"`
	Gender         string   `json:"gender" validate:"required,oneof=Male Female"`
	AvatarURL      string   `json:"avatar_url" validate:"omitempty,url"`
	WhatsAppNumber string   `json:"whatsapp_number"`
	RoomNumber     string   `json:"room_number"`
	Hobbies        []string `json:"hobbies" validate:"omitempty,max=50"`
}

// UserProfile is the caller's own profile, contact channels included.
type UserProfile struct {
	ID             string    `json:"id"`
	AnonymousName  string    `json:"anonymous_name"`
	DisplayName    *string   `json:"display_name"`
	Bio            *string   `json:"bio"`
	Gender         *string   `json:"gender"`
	AvatarURL      *string   `json:"avatar_url"`
	WhatsAppNumber *string   `json:"whatsapp_number"`
	RoomNumber     *string   `json:"room_number"`
	Hobbies        []string  `json:"hobbies"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProfileResponse struct {
	User UserProfile `json:"user"`
}

type CatalogBuilding struct {
	Name  string   `json:"name"`
	Rooms []string `json:"rooms"`
}

type CatalogResponse struct {
	Buildings []CatalogBuilding `json:"buildings"`
	Hobbies   []string          `json:"hobbies"`
}

type CandidateItem struct {
	ID            string    `json:"id"`
	AnonymousName string    `json:"anonymous_name"`
	Bio           *string   `json:"bio"`
	Gender        string    `json:"gender"`
	Hobbies       []string  `json:"hobbies"`
	CreatedAt     time.Time `json:"created_at"`
}

type CandidatesResponse struct {
	Users []CandidateItem `json:"users"`
}
