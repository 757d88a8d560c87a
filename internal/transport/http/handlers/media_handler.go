package handlers

import (
	"errors"
	"net/http"

	"github.com/wybmv/backend/internal/services/media"
	messagessvc "github.com/wybmv/backend/internal/services/messages"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

// multipart framing on top of the image itself
const maxUploadBody = media.MaxImageBytes + 1<<20

type MediaHandler struct {
	service *messagessvc.Service
}

func NewMediaHandler(service *messagessvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBadRequest(w, "INVALID_INPUT", "image exceeds the 5 MB limit")
			return
		}
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	matchID, err := parseUUIDParam(r.FormValue("match_id"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "match id and file required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "match id and file required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	img, err := h.service.UploadImage(r.Context(), identity.UserID, messagessvc.ImageUpload{
		MatchID:     matchID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		httperrors.WriteError(w, err, "could not upload image")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UploadImageResponse{ImageURL: img.URL, FileName: img.FileName})
}
