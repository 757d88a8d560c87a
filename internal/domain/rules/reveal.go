package rules

import (
	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/model"
)

type CounterpartView struct {
	ID          uuid.UUID
	Handle      string
	Bio         string
	DisplayName string
	AvatarURL   string
	WhatsApp    string
	Room        string
}

// ProjectCounterpart applies the counterparty's own reveal side to what a viewer may see.
// The viewer's side never widens this projection.
func ProjectCounterpart(other model.User, theirs model.RevealSide) CounterpartView {
	view := CounterpartView{
		ID:     other.ID,
		Handle: other.Handle,
		Bio:    other.Bio,
	}
	if !theirs.Revealed {
		return view
	}

	view.DisplayName = other.DisplayName
	view.AvatarURL = other.AvatarURL
	if theirs.Channel.IncludesWhatsApp() {
		view.WhatsApp = other.WhatsApp
	}
	if theirs.Channel.IncludesRoom() {
		view.Room = other.Room
	}
	return view
}
