package dto

import (
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
)

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func NewUserProfile(user model.User) UserProfile {
	hobbies := user.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}
	return UserProfile{
		ID:             user.ID.String(),
		AnonymousName:  user.Handle,
		DisplayName:    nullable(user.DisplayName),
		Bio:            nullable(user.Bio),
		Gender:         nullable(string(user.Gender)),
		AvatarURL:      nullable(user.AvatarURL),
		WhatsAppNumber: nullable(user.WhatsApp),
		RoomNumber:     nullable(user.Room),
		Hobbies:        hobbies,
		CreatedAt:      user.CreatedAt,
	}
}

func NewMatchOtherUser(view rules.CounterpartView) MatchOtherUser {
	return MatchOtherUser{
		ID:             view.ID.String(),
		AnonymousName:  view.Handle,
		DisplayName:    nullable(view.DisplayName),
		Bio:            nullable(view.Bio),
		AvatarURL:      nullable(view.AvatarURL),
		WhatsAppNumber: nullable(view.WhatsApp),
		RoomNumber:     nullable(view.Room),
	}
}

func NewMessageItem(msg model.Message) MessageItem {
	return MessageItem{
		ID:        msg.ID.String(),
		MatchID:   msg.MatchID.String(),
		SenderID:  msg.SenderID.String(),
		Content:   msg.Content,
		ImageURL:  nullable(msg.ImageURL),
		CreatedAt: msg.CreatedAt,
	}
}

func NewRequestCounterpart(id, handle, bio string) RequestCounterpart {
	return RequestCounterpart{ID: id, AnonymousName: handle, Bio: nullable(bio)}
}

func NewCandidateBio(bio string) *string {
	return nullable(bio)
}
