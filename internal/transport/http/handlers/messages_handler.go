package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/pkg/validate"
	messagessvc "github.com/wybmv/backend/internal/services/messages"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	query := r.URL.Query()
	matchID, err := parseUUIDParam(query.Get("match_id"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "match id required")
		return
	}

	var since *time.Time
	if raw := strings.TrimSpace(query.Get("since")); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "since must be an RFC3339 timestamp")
			return
		}
		since = &parsed
	}

	messages, err := h.service.List(r.Context(), identity.UserID, matchID, since)
	if err != nil {
		httperrors.WriteError(w, err, "could not fetch messages")
		return
	}

	items := make([]dto.MessageItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, dto.NewMessageItem(msg))
	}
	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Messages: items})
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	msg, err := h.service.Send(r.Context(), identity.UserID, messagessvc.SendInput{
		MatchID:  uuid.MustParse(req.MatchID),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		httperrors.WriteError(w, err, "could not send message")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: dto.NewMessageItem(msg)})
}
