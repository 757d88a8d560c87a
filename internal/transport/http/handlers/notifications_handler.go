package handlers

import (
	"net/http"

	notificationssvc "github.com/wybmv/backend/internal/services/notifications"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type NotificationsHandler struct {
	service *notificationssvc.Service
}

func NewNotificationsHandler(service *notificationssvc.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	counts, err := h.service.Counts(r.Context(), identity.UserID)
	if err != nil {
		httperrors.WriteError(w, err, "could not load notifications")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{
		PendingRequests: counts.PendingRequests,
		UnreadMessages:  counts.UnreadMessages,
		NewMatches:      counts.NewMatches,
	})
}
