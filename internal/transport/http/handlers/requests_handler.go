package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/pkg/validate"
	requestssvc "github.com/wybmv/backend/internal/services/requests"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type RequestsHandler struct {
	service *requestssvc.Service
}

func NewRequestsHandler(service *requestssvc.Service) *RequestsHandler {
	return &RequestsHandler{service: service}
}

func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}

	lists, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not fetch requests")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RequestsResponse{
		Sent:     requestItems(lists.Outgoing),
		Received: requestItems(lists.Incoming),
	})
}

func (h *RequestsHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}

	var req dto.SendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Send(r.Context(), identity.UserID, uuid.MustParse(req.ReceiverID))
	if err != nil {
		httperrors.WriteError(w, err, "could not send request")
		return
	}

	resp := dto.SendRequestResponse{
		OK:          true,
		Matched:     result.Matched,
		Reactivated: result.Reactivated,
		RequestID:   result.Request.ID.String(),
	}
	if result.Match != nil {
		matchID := result.Match.ID.String()
		resp.MatchID = &matchID
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}

	requestID, err := parseUUIDParam(r.URL.Query().Get("id"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "request id required")
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), identity.UserID, requestID)
	if err != nil {
		httperrors.WriteError(w, err, "could not cancel request")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CancelRequestResponse{OK: true, Cancelled: cancelled})
}

func requestItems(items []requestssvc.Item) []dto.RequestItem {
	out := make([]dto.RequestItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.RequestItem{
			ID:        item.ID.String(),
			Status:    string(item.Status),
			CreatedAt: item.CreatedAt,
			User: dto.NewRequestCounterpart(
				item.Counterpart.ID.String(),
				item.Counterpart.Handle,
				item.Counterpart.Bio,
			),
		})
	}
	return out
}
