package handlers

import (
	"net/http"

	invitessvc "github.com/wybmv/backend/internal/services/invites"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type MeHandler struct {
	invites *invitessvc.Service
}

func NewMeHandler(invites *invitessvc.Service) *MeHandler {
	return &MeHandler{invites: invites}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.invites == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	me, err := h.invites.Me(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not load session user")
		return
	}

	resp := dto.AuthMeResponse{
		UserID:                 me.UserID.String(),
		HasCompletedOnboarding: me.Onboarded,
	}
	if me.User != nil {
		profile := dto.NewUserProfile(*me.User)
		resp.User = &profile
	}
	httperrors.Write(w, http.StatusOK, resp)
}
