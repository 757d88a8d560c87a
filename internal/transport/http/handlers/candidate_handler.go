package handlers

import (
	"net/http"

	candidatessvc "github.com/wybmv/backend/internal/services/candidates"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type CandidateHandler struct {
	service *candidatessvc.Service
}

func NewCandidateHandler(service *candidatessvc.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	candidates, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not load users")
		return
	}

	items := make([]dto.CandidateItem, 0, len(candidates))
	for _, c := range candidates {
		hobbies := c.Hobbies
		if hobbies == nil {
			hobbies = []string{}
		}
		items = append(items, dto.CandidateItem{
			ID:            c.ID.String(),
			AnonymousName: c.Handle,
			Bio:           dto.NewCandidateBio(c.Bio),
			Gender:        string(c.Gender),
			Hobbies:       hobbies,
			CreatedAt:     c.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{Users: items})
}
