package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/pkg/validate"
	matchessvc "github.com/wybmv/backend/internal/services/matches"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	views, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not fetch matches")
		return
	}

	items := make([]dto.MatchItem, 0, len(views))
	for _, view := range views {
		items = append(items, dto.MatchItem{
			ID:           view.MatchID.String(),
			OtherUser:    dto.NewMatchOtherUser(view.Other),
			MyReveal:     view.MyReveal,
			MyRevealType: string(view.MyRevealType),
			TheirReveal:  view.TheirReveal,
			CreatedAt:    view.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Matches: items})
}

func (h *MatchesHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.RevealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	channel, err := h.service.Reveal(r.Context(), identity.UserID, uuid.MustParse(req.MatchID), req.RevealType)
	if err != nil {
		httperrors.WriteError(w, err, "could not reveal")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.RevealResponse{OK: true, RevealType: string(channel)})
}
