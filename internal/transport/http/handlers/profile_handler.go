package handlers

import (
	"net/http"

	"github.com/wybmv/backend/internal/pkg/validate"
	profilesvc "github.com/wybmv/backend/internal/services/profiles"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	user, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not load profile")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{User: dto.NewUserProfile(user)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.service.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		Handle:      req.AnonymousName,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Gender:      req.Gender,
		AvatarURL:   req.AvatarURL,
		WhatsApp:    req.WhatsAppNumber,
		Room:        req.RoomNumber,
		Hobbies:     req.Hobbies,
	})
	if err != nil {
		httperrors.WriteError(w, err, "could not save profile")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{User: dto.NewUserProfile(user)})
}
